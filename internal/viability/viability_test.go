package viability

import (
	"testing"

	"github.com/atlas-desktop/backtester/internal/metrics"
)

func TestScore_AllThresholdsMetIsFullScore(t *testing.T) {
	s := metrics.Summary{TotalTrades: 50, WinRate: 0.5, ProfitFactor: 1.5, MaxDrawdown: 100}
	r := Score(s, 10000, DefaultThresholds)
	if r.Score != 100 {
		t.Errorf("Score = %v, want 100 when every threshold is met", r.Score)
	}
	if len(r.Issues) != 0 {
		t.Errorf("Issues = %v, want none", r.Issues)
	}
	if len(r.Strengths) != 4 {
		t.Errorf("Strengths = %v, want 4 entries", r.Strengths)
	}
}

func TestScore_TooFewTradesPenalizes20(t *testing.T) {
	s := metrics.Summary{TotalTrades: 5, WinRate: 0.5, ProfitFactor: 1.5, MaxDrawdown: 100}
	r := Score(s, 10000, DefaultThresholds)
	if r.Score != 80 {
		t.Errorf("Score = %v, want 80", r.Score)
	}
}

func TestScore_WeakWinRatePenalizes20(t *testing.T) {
	s := metrics.Summary{TotalTrades: 50, WinRate: 0.1, ProfitFactor: 1.5, MaxDrawdown: 100}
	r := Score(s, 10000, DefaultThresholds)
	if r.Score != 80 {
		t.Errorf("Score = %v, want 80", r.Score)
	}
}

func TestScore_WeakProfitFactorPenalizes25(t *testing.T) {
	s := metrics.Summary{TotalTrades: 50, WinRate: 0.5, ProfitFactor: 0.9, MaxDrawdown: 100}
	r := Score(s, 10000, DefaultThresholds)
	if r.Score != 75 {
		t.Errorf("Score = %v, want 75", r.Score)
	}
}

func TestScore_ExcessiveDrawdownPenalizes25(t *testing.T) {
	s := metrics.Summary{TotalTrades: 50, WinRate: 0.5, ProfitFactor: 1.5, MaxDrawdown: 5000}
	r := Score(s, 10000, DefaultThresholds)
	if r.Score != 75 {
		t.Errorf("Score = %v, want 75", r.Score)
	}
}

// Every check failing costs 20+20+25+25 = 90 points, leaving 10.
func TestScore_AllChecksFailingScores10(t *testing.T) {
	s := metrics.Summary{TotalTrades: 1, WinRate: 0, ProfitFactor: 0, MaxDrawdown: 9000}
	r := Score(s, 10000, DefaultThresholds)
	if r.Score != 10 {
		t.Errorf("Score = %v, want 10 (all four penalties applied)", r.Score)
	}
}

func TestScore_ZeroStartBalanceSkipsDrawdownCheck(t *testing.T) {
	s := metrics.Summary{TotalTrades: 50, WinRate: 0.5, ProfitFactor: 1.5, MaxDrawdown: 9000}
	r := Score(s, 0, DefaultThresholds)
	if r.Score != 100 {
		t.Errorf("Score = %v, want 100 when startBalance is 0 (drawdown check skipped)", r.Score)
	}
}
