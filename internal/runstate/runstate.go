// Package runstate owns the single mutable RunState a simulator drives
// across a run: position, loss streak, balance, risk-pct, cycle
// profit, and directional locks, per spec.md §3/§4.6.
package runstate

import (
	"github.com/shopspring/decimal"

	"github.com/atlas-desktop/backtester/internal/config"
	"github.com/atlas-desktop/backtester/pkg/types"
)

// RunState is created once per run, mutated only by the simulator, and
// destroyed at run end.
type RunState struct {
	Position   *types.Position
	LossStreak int
	BuyLocked  bool
	SellLocked bool

	Balance      decimal.Decimal
	RiskPct      float64
	CycleProfit  decimal.Decimal

	NextTicket int
	Pending    map[int]*types.PendingOrder
}

// New creates a fresh RunState seeded from config.
func New(cfg *config.Config) *RunState {
	return &RunState{
		RiskPct: cfg.InitialRiskPct,
		Balance: decimal.NewFromFloat(cfg.BaseBalance),
		Pending: make(map[int]*types.PendingOrder),
	}
}

// IsFlat reports whether no position is open.
func (rs *RunState) IsFlat() bool {
	return rs.Position == nil
}

// OnTradeClosed applies spec.md §4.6's loss/win bookkeeping and always
// adds profit (may be negative) to balance. profit is in account
// currency, already net of commission.
func (rs *RunState) OnTradeClosed(cfg *config.Config, profit float64) {
	rs.Balance = rs.Balance.Add(decimal.NewFromFloat(profit))

	if profit < 0 {
		rs.LossStreak++
		rs.RiskPct = cfg.InitialRiskPct
		rs.CycleProfit = decimal.Zero
		return
	}

	rs.LossStreak = 0
	rs.CycleProfit = rs.CycleProfit.Add(decimal.NewFromFloat(profit))

	threshold := decimal.NewFromFloat(cfg.BaseBalance).Mul(decimal.NewFromFloat(cfg.StepPercent))
	if cfg.StepPercent <= 0 {
		return
	}
	for threshold.Sign() > 0 && rs.CycleProfit.GreaterThanOrEqual(threshold) {
		rs.RiskPct += cfg.StepPercent
		rs.CycleProfit = rs.CycleProfit.Sub(threshold)
	}
}

// ApplyReset clears both directional locks, per the `reset` flag.
func (rs *RunState) ApplyReset() {
	rs.BuyLocked = false
	rs.SellLocked = false
}

// LockSide sets the directional lock for the side a position was
// opened on.
func (rs *RunState) LockSide(side types.Side) {
	if side == types.Buy {
		rs.BuyLocked = true
	} else if side == types.Sell {
		rs.SellLocked = true
	}
}

// SideLocked reports whether the given side is currently locked.
func (rs *RunState) SideLocked(side types.Side) bool {
	if side == types.Buy {
		return rs.BuyLocked
	}
	if side == types.Sell {
		return rs.SellLocked
	}
	return false
}

// AllocateTicket returns the next pending-order ticket number.
func (rs *RunState) AllocateTicket() int {
	rs.NextTicket++
	return rs.NextTicket
}

// BalanceFloat64 returns Balance as a float64 for use in formulas that
// are naturally defined over reals (lot sizing, risk ratios).
func (rs *RunState) BalanceFloat64() float64 {
	f, _ := rs.Balance.Float64()
	return f
}
