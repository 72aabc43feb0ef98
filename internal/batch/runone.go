package batch

import (
	"github.com/atlas-desktop/backtester/internal/config"
	"github.com/atlas-desktop/backtester/internal/resolver"
	"github.com/atlas-desktop/backtester/pkg/types"
)

// runOne is the pure sequential CPU reference path for a single run.
// It is also the function the parallel path dispatches per worker —
// §4.8 requires bit-level equivalence between the two, which holds
// trivially here since the parallel path calls this exact function
// per disjoint run index with no shared mutable state.
func runOne(req *Request, runIndex int) (exitReason int, entryPrice, exitPrice, pnlPoints float64) {
	open, high, low, close, side := req.row(runIndex)
	slPoints := req.SLPoints[runIndex]
	tpPoints := req.TPPoints[runIndex]

	var curSide types.Side
	var entry, sl, tp float64

	for i := 0; i < req.NMinutes; i++ {
		if curSide == types.Flat {
			s := side[i]
			if s == 0 {
				continue
			}
			curSide = sideFromFloat(s)
			entry = entryQuote(req, open[i], curSide)
			sl, tp = barrierPrices(req, entry, curSide, slPoints, tpPoints)
			continue
		}

		bidPath := expandRaw(open[i], high[i], low[i], close[i], req.OHLCOrder)
		path := bidPath
		if curSide == types.Sell {
			path = askPath(bidPath, req)
		}

		outcome := resolver.Resolve(curSide, path, sl, tp)
		if outcome == types.OutcomeNone {
			continue
		}

		exit := tp
		reason := 1
		if outcome == types.OutcomeSL {
			exit = sl
			reason = -1
		}
		sideMul := 1.0
		if curSide == types.Sell {
			sideMul = -1.0
		}
		return reason, entry, exit, (exit - entry) / req.Point * sideMul
	}

	if curSide == types.Flat {
		return 0, 0, 0, 0
	}

	// Unresolved at series end: exit at last close (SELL adds spread).
	lastClose := close[req.NMinutes-1]
	exit := lastClose
	if curSide == types.Sell {
		exit = lastClose + req.SpreadPoints*req.Point
	}
	sideMul := 1.0
	if curSide == types.Sell {
		sideMul = -1.0
	}
	return 0, entry, exit, (exit - entry) / req.Point * sideMul
}

func sideFromFloat(s float64) types.Side {
	if s > 0 {
		return types.Buy
	}
	if s < 0 {
		return types.Sell
	}
	return types.Flat
}

func expandRaw(o, h, l, c float64, order config.OHLCOrder) types.TickPath {
	bar := types.Bar{Open: o, High: h, Low: l, Close: c}
	switch order {
	case config.OrderOLHC:
		return types.TickPath{bar.Open, bar.Low, bar.High, bar.Close}
	default:
		return types.TickPath{bar.Open, bar.High, bar.Low, bar.Close}
	}
}

func askPath(bid types.TickPath, req *Request) types.TickPath {
	offset := req.SpreadPoints * req.Point
	var out types.TickPath
	for i, p := range bid {
		out[i] = p + offset
	}
	return out
}

// entryQuote mirrors execmath.EntryQuote: BUY unconditionally pays
// +spread (the ask side of the book) regardless of spread_policy;
// SELL always pays the base open price.
func entryQuote(req *Request, open float64, side types.Side) float64 {
	if side != types.Buy {
		return open
	}
	return open + req.SpreadPoints*req.Point
}

// barrierPrices mirrors execmath.AdjustBarriers: policy >= SL_ONLY
// subtracts spread from SL; policy == FULL also subtracts from TP;
// signs mirrored for SELL.
func barrierPrices(req *Request, entry float64, side types.Side, slPoints, tpPoints float64) (sl, tp float64) {
	slDist := slPoints * req.Point
	tpDist := tpPoints * req.Point
	if side == types.Buy {
		sl, tp = entry-slDist, entry+tpDist
	} else {
		sl, tp = entry+slDist, entry-tpDist
	}

	spread := req.SpreadPoints * req.Point
	sign := 1.0
	if side == types.Sell {
		sign = -1.0
	}
	switch req.SpreadPolicy {
	case config.SpreadSLOnly:
		sl = sl - sign*spread
	case config.SpreadFull:
		sl = sl - sign*spread
		tp = tp - sign*spread
	}
	return sl, tp
}
