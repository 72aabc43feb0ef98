package metrics

import (
	"math"
	"testing"

	"github.com/atlas-desktop/backtester/pkg/types"
)

func trade(pnl float64) types.TradeRecord {
	return types.TradeRecord{PnLCurrency: pnl}
}

func TestCompute_WinRateAndProfitFactor(t *testing.T) {
	trades := []types.TradeRecord{trade(100), trade(-50), trade(200), trade(-50)}
	s := Compute(trades, nil)

	if s.TotalTrades != 4 {
		t.Errorf("TotalTrades = %d, want 4", s.TotalTrades)
	}
	if s.Wins != 2 || s.Losses != 2 {
		t.Errorf("Wins/Losses = %d/%d, want 2/2", s.Wins, s.Losses)
	}
	if s.WinRate != 0.5 {
		t.Errorf("WinRate = %v, want 0.5", s.WinRate)
	}
	wantPF := 300.0 / 100.0
	if math.Abs(s.ProfitFactor-wantPF) > 1e-9 {
		t.Errorf("ProfitFactor = %v, want %v", s.ProfitFactor, wantPF)
	}
	if s.NetProfit != 200 {
		t.Errorf("NetProfit = %v, want 200", s.NetProfit)
	}
}

func TestCompute_NoLossesGivesInfiniteProfitFactor(t *testing.T) {
	s := Compute([]types.TradeRecord{trade(100), trade(50)}, nil)
	if !math.IsInf(s.ProfitFactor, 1) {
		t.Errorf("ProfitFactor = %v, want +Inf with no losing trades", s.ProfitFactor)
	}
}

func TestCompute_EmptyLogIsZeroValued(t *testing.T) {
	s := Compute(nil, nil)
	if s.TotalTrades != 0 || s.WinRate != 0 || s.ProfitFactor != 0 {
		t.Errorf("Compute(nil) = %+v, want all zero", s)
	}
}

func TestCompute_MaxDrawdownFromEquityCurve(t *testing.T) {
	equity := []types.EquityPoint{
		{Balance: 1000}, {Balance: 1200}, {Balance: 900}, {Balance: 1100},
	}
	s := Compute(nil, equity)
	if s.MaxDrawdown != 300 {
		t.Errorf("MaxDrawdown = %v, want 300 (peak 1200 to trough 900)", s.MaxDrawdown)
	}
}

func TestCompute_CalmarUsesNetProfitOverDrawdown(t *testing.T) {
	trades := []types.TradeRecord{trade(500)}
	equity := []types.EquityPoint{{Balance: 1000}, {Balance: 800}, {Balance: 1500}}
	s := Compute(trades, equity)
	wantCalmar := 500.0 / 200.0
	if math.Abs(s.Calmar-wantCalmar) > 1e-9 {
		t.Errorf("Calmar = %v, want %v", s.Calmar, wantCalmar)
	}
}
