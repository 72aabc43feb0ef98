// Package indicators computes RSI (Wilder smoothing) at the base
// timeframe and resampled higher timeframes, plus the derived boolean
// flag series the strategy context exposes.
package indicators

import "math"

// RSIWilder computes Wilder's RSI with alpha = 1/period. The first
// `period` values are NaN (warmup); gains/losses are smoothed
// exponentially thereafter. Matches spec.md §4.2 exactly.
func RSIWilder(closes []float64, period int) []float64 {
	n := len(closes)
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	if n == 0 || period <= 0 {
		return out
	}

	alpha := 1.0 / float64(period)

	var avgGain, avgLoss float64
	var gainSum, lossSum float64
	warmupEnd := period // index of the first non-NaN value

	for i := 1; i <= period && i < n; i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gainSum += delta
		} else {
			lossSum += -delta
		}
	}
	if n <= period {
		return out
	}
	avgGain = gainSum / float64(period)
	avgLoss = lossSum / float64(period)
	out[warmupEnd] = rsiFromAverages(avgGain, avgLoss)

	for i := warmupEnd + 1; i < n; i++ {
		delta := closes[i] - closes[i-1]
		var gain, loss float64
		if delta > 0 {
			gain = delta
		} else {
			loss = -delta
		}
		avgGain = avgGain + alpha*(gain-avgGain)
		avgLoss = avgLoss + alpha*(loss-avgLoss)
		out[i] = rsiFromAverages(avgGain, avgLoss)
	}

	return out
}

func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}
