// Package metrics computes performance statistics from a closed-trade
// log: win rate, profit factor, Sharpe/Sortino/Calmar, max drawdown,
// expectancy. Supplemental to the core spec, grounded on the teacher's
// internal/backtester/metrics.go but generalized from an
// equity-curve-of-positions model to a points/currency trade-record
// model.
package metrics

import (
	"math"

	"github.com/atlas-desktop/backtester/pkg/types"
)

// Summary is the computed statistics for one closed-trade log.
type Summary struct {
	TotalTrades  int
	Wins         int
	Losses       int
	WinRate      float64
	AvgWin       float64
	AvgLoss      float64
	ProfitFactor float64
	Expectancy   float64
	NetProfit    float64
	Sharpe       float64
	Sortino      float64
	Calmar       float64
	MaxDrawdown  float64
}

// Compute derives a Summary from the closed-trade log and the
// per-bar equity curve (used for drawdown and ratio calculations).
func Compute(trades []types.TradeRecord, equity []types.EquityPoint) Summary {
	var s Summary
	s.TotalTrades = len(trades)

	var grossWin, grossLoss, sumReturns float64
	returns := make([]float64, 0, len(trades))

	for _, t := range trades {
		s.NetProfit += t.PnLCurrency
		if t.PnLCurrency > 0 {
			s.Wins++
			grossWin += t.PnLCurrency
		} else if t.PnLCurrency < 0 {
			s.Losses++
			grossLoss += -t.PnLCurrency
		}
		returns = append(returns, t.PnLCurrency)
		sumReturns += t.PnLCurrency
	}

	if s.TotalTrades > 0 {
		s.WinRate = float64(s.Wins) / float64(s.TotalTrades)
		s.Expectancy = sumReturns / float64(s.TotalTrades)
	}
	if s.Wins > 0 {
		s.AvgWin = grossWin / float64(s.Wins)
	}
	if s.Losses > 0 {
		s.AvgLoss = grossLoss / float64(s.Losses)
	}
	if grossLoss > 0 {
		s.ProfitFactor = grossWin / grossLoss
	} else if grossWin > 0 {
		s.ProfitFactor = math.Inf(1)
	}

	mean, stddev := meanStdDev(returns)
	if stddev > 0 {
		s.Sharpe = mean / stddev
	}

	_, downside := meanStdDev(negativeOnly(returns))
	if downside > 0 {
		s.Sortino = mean / downside
	}

	s.MaxDrawdown = maxDrawdown(equity)
	if s.MaxDrawdown > 0 {
		s.Calmar = s.NetProfit / s.MaxDrawdown
	}

	return s
}

func meanStdDev(xs []float64) (mean, stddev float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean = sum / float64(len(xs))

	var sqSum float64
	for _, x := range xs {
		d := x - mean
		sqSum += d * d
	}
	stddev = math.Sqrt(sqSum / float64(len(xs)))
	return mean, stddev
}

func negativeOnly(xs []float64) []float64 {
	var out []float64
	for _, x := range xs {
		if x < 0 {
			out = append(out, x)
		}
	}
	return out
}

func maxDrawdown(equity []types.EquityPoint) float64 {
	if len(equity) == 0 {
		return 0
	}
	peak := equity[0].Balance
	var maxDD float64
	for _, p := range equity {
		if p.Balance > peak {
			peak = p.Balance
		}
		dd := peak - p.Balance
		if dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}
