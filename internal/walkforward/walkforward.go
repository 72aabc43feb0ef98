// Package walkforward chunks the bar series into successive windows
// sized by cfg.ChunkYears and runs the single-run simulator
// in-sample/out-of-sample per window, reporting a robustness ratio.
// Grounded on the teacher's internal/backtester/walkforward.go,
// adapted from calendar-date windows pulled from a DataLoader to
// bar-index windows sliced directly from the in-memory series.
package walkforward

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/atlas-desktop/backtester/internal/config"
	"github.com/atlas-desktop/backtester/internal/indicators"
	"github.com/atlas-desktop/backtester/internal/metrics"
	"github.com/atlas-desktop/backtester/internal/simulator"
	"github.com/atlas-desktop/backtester/internal/strategy"
	"github.com/atlas-desktop/backtester/pkg/types"
)

const minutesPerYear = 60 * 24 * 365

// Window is one in-sample/out-of-sample pair of bar-index ranges.
type Window struct {
	InStart, InEnd   int // [InStart, InEnd)
	OutStart, OutEnd int // [OutStart, OutEnd)
}

// WindowResult pairs a window with its in-sample and out-of-sample
// performance summaries.
type WindowResult struct {
	Window     Window
	InSample   metrics.Summary
	OutSample  metrics.Summary
}

// Report is the full walk-forward analysis: per-window results plus a
// robustness ratio (mean out-of-sample net profit / mean in-sample net
// profit; 1.0 would mean no degradation out of sample).
type Report struct {
	Windows         []WindowResult
	RobustnessRatio float64
}

// Run slices bars into chunk-years-sized in-sample windows each
// followed by one chunk-years-sized out-of-sample window, runs the
// single-run simulator over each half, and aggregates the result.
func Run(ctx context.Context, cfg *config.Config, bars []types.Bar, strat strategy.Strategy, logger *zap.Logger) (*Report, error) {
	if cfg.ChunkYears <= 0 {
		return nil, fmt.Errorf("walkforward: chunk_years must be positive, got %d", cfg.ChunkYears)
	}
	chunkLen := cfg.ChunkYears * minutesPerYear
	if chunkLen <= 0 || len(bars) < 2*chunkLen {
		return nil, fmt.Errorf("walkforward: series too short for chunk_years=%d (need >= %d bars, have %d)", cfg.ChunkYears, 2*chunkLen, len(bars))
	}

	var report Report
	var sumIn, sumOut float64

	for start := 0; start+2*chunkLen <= len(bars); start += chunkLen {
		w := Window{
			InStart:  start,
			InEnd:    start + chunkLen,
			OutStart: start + chunkLen,
			OutEnd:   start + 2*chunkLen,
		}

		inSummary, err := runWindow(ctx, cfg, bars[w.InStart:w.InEnd], strat, logger)
		if err != nil {
			return nil, fmt.Errorf("walkforward: in-sample window [%d,%d): %w", w.InStart, w.InEnd, err)
		}
		outSummary, err := runWindow(ctx, cfg, bars[w.OutStart:w.OutEnd], strat, logger)
		if err != nil {
			return nil, fmt.Errorf("walkforward: out-sample window [%d,%d): %w", w.OutStart, w.OutEnd, err)
		}

		report.Windows = append(report.Windows, WindowResult{Window: w, InSample: inSummary, OutSample: outSummary})
		sumIn += inSummary.NetProfit
		sumOut += outSummary.NetProfit
	}

	if sumIn != 0 {
		report.RobustnessRatio = sumOut / sumIn
	}

	return &report, nil
}

func runWindow(ctx context.Context, cfg *config.Config, bars []types.Bar, strat strategy.Strategy, logger *zap.Logger) (metrics.Summary, error) {
	ind := indicators.ComputeRSIAndFlags(bars, cfg)
	res, err := simulator.Run(ctx, cfg, bars, ind, strat, logger, nil)
	if err != nil {
		return metrics.Summary{}, err
	}
	return metrics.Compute(res.Trades, res.EquityCurve), nil
}
