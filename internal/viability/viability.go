// Package viability scores a closed run 0-100, with graded
// strengths/issues. cmd/backtester's run-cpu scores a single run
// directly with it, and internal/gridsearch's ViabilityEvaluator wraps
// it into run-gridsearch's scoring function. Grounded on the teacher's
// internal/backtester/viability.go, trimmed of the
// walk-forward-consistency inputs that don't apply to a single grid
// point.
package viability

import (
	"fmt"

	"github.com/atlas-desktop/backtester/internal/metrics"
)

// Thresholds configures how harshly a run is judged.
type Thresholds struct {
	MinTrades          int
	MinWinRate         float64
	MinProfitFactor    float64
	MaxDrawdownPct     float64
}

// DefaultThresholds is a moderate preset suitable for grid-search
// scoring without per-caller tuning.
var DefaultThresholds = Thresholds{
	MinTrades:       20,
	MinWinRate:      0.35,
	MinProfitFactor: 1.1,
	MaxDrawdownPct:  0.30,
}

// Report is the graded scorecard for one run.
type Report struct {
	Score     float64
	Strengths []string
	Issues    []string
}

// Score computes a 0-100 viability score from a trade-log summary,
// penalizing too few trades, a weak win rate, a weak profit factor,
// and excessive relative drawdown.
func Score(s metrics.Summary, startBalance float64, thresholds Thresholds) Report {
	var r Report
	score := 100.0

	if s.TotalTrades < thresholds.MinTrades {
		penalty := 20.0
		score -= penalty
		r.Issues = append(r.Issues, fmt.Sprintf("only %d trades, below the %d-trade minimum sample", s.TotalTrades, thresholds.MinTrades))
	} else {
		r.Strengths = append(r.Strengths, fmt.Sprintf("%d trades clears the minimum sample size", s.TotalTrades))
	}

	if s.WinRate < thresholds.MinWinRate {
		score -= 20
		r.Issues = append(r.Issues, fmt.Sprintf("win rate %.1f%% below threshold %.1f%%", s.WinRate*100, thresholds.MinWinRate*100))
	} else {
		r.Strengths = append(r.Strengths, fmt.Sprintf("win rate %.1f%% meets threshold", s.WinRate*100))
	}

	if s.ProfitFactor < thresholds.MinProfitFactor {
		score -= 25
		r.Issues = append(r.Issues, fmt.Sprintf("profit factor %.2f below threshold %.2f", s.ProfitFactor, thresholds.MinProfitFactor))
	} else {
		r.Strengths = append(r.Strengths, fmt.Sprintf("profit factor %.2f meets threshold", s.ProfitFactor))
	}

	if startBalance > 0 {
		ddPct := s.MaxDrawdown / startBalance
		if ddPct > thresholds.MaxDrawdownPct {
			score -= 25
			r.Issues = append(r.Issues, fmt.Sprintf("drawdown %.1f%% of starting balance exceeds %.1f%% cap", ddPct*100, thresholds.MaxDrawdownPct*100))
		} else {
			r.Strengths = append(r.Strengths, fmt.Sprintf("drawdown %.1f%% of starting balance within cap", ddPct*100))
		}
	}

	if score < 0 {
		score = 0
	}
	r.Score = score
	return r
}
