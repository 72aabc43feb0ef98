// Package execmath implements point-value, lot-normalization, spread,
// commission, swap, and risk-based lot-sizing math, per spec.md §4.5.
package execmath

import (
	"math"

	"github.com/atlas-desktop/backtester/internal/config"
	"github.com/atlas-desktop/backtester/pkg/types"
)

// ValuePerPoint returns the account-currency value of a one-point move
// for one lot: tick_value / tick_size.
func ValuePerPoint(cfg *config.Config) float64 {
	return cfg.TickValue / cfg.TickSize
}

// NormalizeLot rounds a raw lot size to the nearest step (half-to-even)
// and clamps to [min, max_lot]. (min, step) honour ft6_mode.
func NormalizeLot(cfg *config.Config, lot float64) float64 {
	min, step := cfg.EffectiveLotConstraints()
	rounded := roundHalfToEven(lot/step) * step
	if rounded < min {
		rounded = min
	}
	if rounded > cfg.MaxLot {
		rounded = cfg.MaxLot
	}
	return rounded
}

// roundHalfToEven implements banker's rounding to the nearest integer,
// since shopspring/decimal's own Round is half-away-from-zero.
func roundHalfToEven(x float64) float64 {
	floor := math.Floor(x)
	diff := x - floor
	switch {
	case diff < 0.5:
		return floor
	case diff > 0.5:
		return floor + 1
	default:
		if math.Mod(floor, 2) == 0 {
			return floor
		}
		return floor + 1
	}
}

// ComputeLot is the risk-based raw-to-normalized lot formula:
// balance * risk_ratio / (sl_points * value_per_point), normalized.
func ComputeLot(cfg *config.Config, balance, riskRatio, slPoints float64) float64 {
	vpp := ValuePerPoint(cfg)
	raw := balance * riskRatio / (slPoints * vpp)
	return NormalizeLot(cfg, raw)
}

// ComputeLotWithMode applies the FIXED/GEOMETRIC/ARITHMETIC money-mode
// policy (spec.md §4.5) to produce the lot for the next trade.
func ComputeLotWithMode(cfg *config.Config, balance, riskPct float64, lossStreak int, slPoints float64) float64 {
	switch cfg.MoneyMode {
	case config.MoneyFixed:
		return NormalizeLot(cfg, cfg.FixedLot)

	case config.MoneyGeometric:
		effectiveRisk := riskPct * math.Pow(1+cfg.StepPercent, float64(lossStreak))
		return ComputeLot(cfg, balance, effectiveRisk, slPoints)

	case config.MoneyArithmetic:
		effectiveRisk := riskPct + cfg.StepPercent*float64(lossStreak)
		return ComputeLot(cfg, balance, effectiveRisk, slPoints)

	default:
		return NormalizeLot(cfg, cfg.FixedLot)
	}
}

// ApplySpreadPolicy adjusts a quote-time price by the fixed spread:
// NONE/SL_ONLY leave the quote unchanged; FULL shifts it by ±spread
// (BUY pays +spread, SELL pays the base/unshifted price).
func ApplySpreadPolicy(cfg *config.Config, price float64, side types.Side) float64 {
	if cfg.SpreadPolicy != config.SpreadFull {
		return price
	}
	spread := cfg.FixedSpreadPoint * cfg.Point
	if side == types.Buy {
		return price + spread
	}
	return price
}

// EntryQuote computes the price a position actually enters at: the bid
// path's open unconditionally widened by the fixed spread for BUY (the
// ask side of the book), base/unshifted for SELL. This holds regardless
// of spread_policy, which only governs whether the SL/TP barriers
// themselves absorb the spread (see AdjustBarriers) — entry always pays
// the real bid-ask gap.
func EntryQuote(cfg *config.Config, openPrice float64, side types.Side) float64 {
	if side == types.Buy {
		return openPrice + cfg.FixedSpreadPoint*cfg.Point
	}
	return openPrice
}

// AdjustBarriers layers the spread policy onto SL/TP barrier prices
// themselves: SL_ONLY subtracts spread from SL only; FULL subtracts
// from both SL and TP; signs are mirrored for SELL.
func AdjustBarriers(cfg *config.Config, side types.Side, sl, tp float64) (adjSL, adjTP float64) {
	spread := cfg.FixedSpreadPoint * cfg.Point
	sign := 1.0
	if side == types.Sell {
		sign = -1.0
	}

	switch cfg.SpreadPolicy {
	case config.SpreadSLOnly:
		return sl - sign*spread, tp
	case config.SpreadFull:
		return sl - sign*spread, tp - sign*spread
	default:
		return sl, tp
	}
}

// CommissionForTrade = lot * commission_per_lot_round.
func CommissionForTrade(cfg *config.Config, lot float64) float64 {
	return lot * cfg.CommissionPerLot
}

// SwapForDay = lot * days * (swap_long or swap_short per lot per day).
func SwapForDay(cfg *config.Config, lot float64, days float64, long bool) float64 {
	rate := cfg.SwapShortPerLot
	if long {
		rate = cfg.SwapLongPerLot
	}
	return lot * days * rate
}
