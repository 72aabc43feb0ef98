// Package batch evaluates N independent (SL, TP, entry-side)
// parameter combinations against a shared dense minute series in
// parallel, per spec.md §4.8.
package batch

import (
	"github.com/atlas-desktop/backtester/internal/config"
)

// Request holds the dense per-(run,minute) price arrays and per-run
// parameter arrays a batch evaluates.
type Request struct {
	NRuns    int
	NMinutes int

	// Open/High/Low/Close are length NRuns*NMinutes, row-major by run.
	// Most callers repeat the same minute series across every run.
	Open, High, Low, Close []float64

	// EntrySide is length NRuns*NMinutes, in {-1, 0, +1}.
	EntrySide []float64

	// SLPoints/TPPoints are length NRuns.
	SLPoints, TPPoints []float64

	Point        float64
	OHLCOrder    config.OHLCOrder
	SpreadPoints float64
	SpreadPolicy config.SpreadPolicy
}

// Result holds the per-run output arrays, each length NRuns.
type Result struct {
	ExitReason []int // +1 TP, -1 SL, 0 unresolved/timeout
	EntryPrice []float64
	ExitPrice  []float64
	PnLPoints  []float64
}

func newResult(nRuns int) *Result {
	return &Result{
		ExitReason: make([]int, nRuns),
		EntryPrice: make([]float64, nRuns),
		ExitPrice:  make([]float64, nRuns),
		PnLPoints:  make([]float64, nRuns),
	}
}

func (r *Request) row(runIndex int) (open, high, low, close, side []float64) {
	start := runIndex * r.NMinutes
	end := start + r.NMinutes
	return r.Open[start:end], r.High[start:end], r.Low[start:end], r.Close[start:end], r.EntrySide[start:end]
}
