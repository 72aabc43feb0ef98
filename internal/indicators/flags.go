package indicators

import (
	"time"

	"github.com/atlas-desktop/backtester/internal/config"
	"github.com/atlas-desktop/backtester/pkg/types"
)

// IndicatorSet holds every indicator/flag series sharing the base bar
// index exactly, per spec.md §4.2.
type IndicatorSet struct {
	RSIBase    []float64
	RSIM15     []float64 // forward-filled to the minute grid
	RSIH1      []float64 // forward-filled to the minute grid
	Overbought []bool
	Oversold   []bool
	Reset      []bool
}

// ComputeRSIAndFlags produces base RSI, M15/H1 RSI forward-filled onto
// the minute grid, and the three boolean flag series keyed off rsi_m15.
func ComputeRSIAndFlags(bars []types.Bar, cfg *config.Config) *IndicatorSet {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}

	base := RSIWilder(closes, cfg.RSIPeriod)

	m15Bars := ResampleOHLC(bars, 15)
	h1Bars := ResampleOHLC(bars, 60)

	m15Closes := closesOf(m15Bars)
	h1Closes := closesOf(h1Bars)

	m15RSI := RSIWilder(m15Closes, cfg.RSIPeriod)
	h1RSI := RSIWilder(h1Closes, cfg.RSIPeriod)

	baseTimestamps := timestampsOf(bars)
	m15Filled := ForwardFill(baseTimestamps, m15Bars, m15RSI)
	h1Filled := ForwardFill(baseTimestamps, h1Bars, h1RSI)

	n := len(bars)
	overbought := make([]bool, n)
	oversold := make([]bool, n)
	reset := make([]bool, n)
	for i := 0; i < n; i++ {
		v := m15Filled[i]
		overbought[i] = v >= cfg.Overbought
		oversold[i] = v <= cfg.Oversold
		reset[i] = v >= cfg.ResetLevel
	}

	return &IndicatorSet{
		RSIBase:    base,
		RSIM15:     m15Filled,
		RSIH1:      h1Filled,
		Overbought: overbought,
		Oversold:   oversold,
		Reset:      reset,
	}
}

func closesOf(bars []types.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

func timestampsOf(bars []types.Bar) []time.Time {
	out := make([]time.Time, len(bars))
	for i, b := range bars {
		out[i] = b.Timestamp
	}
	return out
}
