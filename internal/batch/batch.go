package batch

import (
	"context"
	"fmt"
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	runsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "backtester_batch_runs_total",
		Help: "Number of individual batch runs completed.",
	})
	inFlightWorkers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "backtester_batch_workers_in_flight",
		Help: "Number of batch worker goroutines currently executing a run.",
	})
)

// MustRegister registers the batch package's Prometheus collectors.
// Callers (typically cmd/backtester or internal/api) invoke this once
// at process startup.
func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(runsTotal, inFlightWorkers)
}

// RunBatch evaluates every run in req in parallel, writing to disjoint
// output slots, and returns once all runs complete or the context is
// cancelled. Concurrency is capped at GOMAXPROCS via errgroup.SetLimit,
// the idiomatic replacement for a hand-rolled worker pool over a fixed
// block size (spec.md §4.8's "grid of workers sized to block").
func RunBatch(ctx context.Context, req *Request, logger *zap.Logger) (*Result, error) {
	if req.NRuns <= 0 {
		return nil, fmt.Errorf("batch: NRuns must be positive, got %d", req.NRuns)
	}
	if len(req.Open) != req.NRuns*req.NMinutes {
		return nil, fmt.Errorf("batch: price array length mismatch: want %d, got %d", req.NRuns*req.NMinutes, len(req.Open))
	}

	res := newResult(req.NRuns)

	g, gctx := errgroup.WithContext(ctx)
	workers := runtime.GOMAXPROCS(0)
	g.SetLimit(workers)

	for i := 0; i < req.NRuns; i++ {
		i := i
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			inFlightWorkers.Inc()
			defer inFlightWorkers.Dec()

			reason, entry, exit, pnl := runOne(req, i)
			res.ExitReason[i] = reason
			res.EntryPrice[i] = entry
			res.ExitPrice[i] = exit
			res.PnLPoints[i] = pnl
			runsTotal.Inc()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch: run failed: %w", err)
	}

	logger.Info("batch complete", zap.Int("runs", req.NRuns), zap.Int("workers", workers))
	return res, nil
}

// RunBatchCPU is the pure sequential reference implementation: every
// run executed in run-index order on the calling goroutine. Used by
// the test suite to assert bit-level equivalence with RunBatch.
func RunBatchCPU(req *Request) *Result {
	res := newResult(req.NRuns)
	for i := 0; i < req.NRuns; i++ {
		reason, entry, exit, pnl := runOne(req, i)
		res.ExitReason[i] = reason
		res.EntryPrice[i] = entry
		res.ExitPrice[i] = exit
		res.PnLPoints[i] = pnl
	}
	return res
}
