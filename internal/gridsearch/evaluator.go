package gridsearch

import (
	"github.com/atlas-desktop/backtester/internal/metrics"
	"github.com/atlas-desktop/backtester/internal/viability"
)

// ViabilityEvaluator builds a Search evaluator from a runner that
// executes one combination and returns its closed-trade summary plus
// the balance the run started from. The score is viability.Score's
// 0-100 result; the strengths/issues text it also produces has no use
// inside Search's max-score loop. run-gridsearch wires this as its
// evaluator by default; a caller chasing a different objective (raw
// net profit, Sharpe alone) passes its own func to Search instead.
func ViabilityEvaluator(run func(Combination) (metrics.Summary, float64, error), thresholds viability.Thresholds) func(Combination) (float64, error) {
	return func(c Combination) (float64, error) {
		summary, startBalance, err := run(c)
		if err != nil {
			return 0, err
		}
		return viability.Score(summary, startBalance, thresholds).Score, nil
	}
}
