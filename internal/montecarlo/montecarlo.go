// Package montecarlo bootstrap-resamples a closed-trade PnL sequence
// to estimate probability of ruin and drawdown percentiles. An
// optional post-processing step on a completed run's trade log, not
// part of the core bar-by-bar simulation. Grounded on the teacher's
// internal/backtester/montecarlo.go, merged with
// internal/montecarlo/simulator.go's parallel-worker shape.
package montecarlo

import (
	"context"
	"math/rand"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/atlas-desktop/backtester/pkg/types"
)

// Config tunes the bootstrap.
type Config struct {
	Iterations    int
	StartBalance  float64
	RuinThreshold float64 // balance fraction of start considered "ruined"
	Seed          int64
}

// Result summarizes the bootstrap distribution.
type Result struct {
	ProbabilityOfRuin float64
	DrawdownP50       float64
	DrawdownP95       float64
	DrawdownP99       float64
}

// Run bootstrap-resamples the trade PnL sequence cfg.Iterations times,
// shuffling trade order each iteration (order independence is the
// property being stress-tested), and reports ruin probability and
// drawdown percentiles across the simulated equity paths.
func Run(ctx context.Context, trades []types.TradeRecord, cfg Config) (*Result, error) {
	if len(trades) == 0 || cfg.Iterations <= 0 {
		return &Result{}, nil
	}

	pnls := make([]float64, len(trades))
	for i, t := range trades {
		pnls[i] = t.PnLCurrency
	}

	drawdowns := make([]float64, cfg.Iterations)
	ruinCount := make([]int, cfg.Iterations)

	g, gctx := errgroup.WithContext(ctx)
	for it := 0; it < cfg.Iterations; it++ {
		it := it
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			rng := rand.New(rand.NewSource(cfg.Seed + int64(it)))
			shuffled := append([]float64(nil), pnls...)
			rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

			balance := cfg.StartBalance
			peak := balance
			var maxDD float64
			ruined := 0
			for _, p := range shuffled {
				balance += p
				if balance > peak {
					peak = balance
				}
				if dd := peak - balance; dd > maxDD {
					maxDD = dd
				}
				if cfg.StartBalance > 0 && balance <= cfg.StartBalance*cfg.RuinThreshold {
					ruined = 1
				}
			}
			drawdowns[it] = maxDD
			ruinCount[it] = ruined
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Float64s(drawdowns)
	var ruins int
	for _, r := range ruinCount {
		ruins += r
	}

	return &Result{
		ProbabilityOfRuin: float64(ruins) / float64(cfg.Iterations),
		DrawdownP50:       percentile(drawdowns, 0.50),
		DrawdownP95:       percentile(drawdowns, 0.95),
		DrawdownP99:       percentile(drawdowns, 0.99),
	}, nil
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(p * float64(len(sorted)-1))
	return sorted[idx]
}
