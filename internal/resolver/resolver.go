// Package resolver adjudicates intra-bar SL/TP hits against a
// four-point synthetic tick path, per spec.md §4.4.
package resolver

import (
	"github.com/atlas-desktop/backtester/pkg/types"
)

// Resolve walks the three consecutive segments of path (t0→t1, t1→t2,
// t2→t3) and returns the first of {TP, SL} to be hit, honoring the
// per-segment directional priority rule and the same-segment SL
// tie-break. Returns OutcomeNone if neither barrier is touched.
func Resolve(side types.Side, path types.TickPath, sl, tp float64) types.Outcome {
	for seg := 0; seg < 3; seg++ {
		p0, p1 := path[seg], path[seg+1]
		hitTP := between(tp, p0, p1)
		hitSL := between(sl, p0, p1)

		if hitTP && hitSL {
			return types.OutcomeSL
		}
		if !hitTP && !hitSL {
			continue
		}

		first, second := segmentPriority(side, p0, p1)
		for _, want := range [2]types.Outcome{first, second} {
			switch want {
			case types.OutcomeTP:
				if hitTP {
					return types.OutcomeTP
				}
			case types.OutcomeSL:
				if hitSL {
					return types.OutcomeSL
				}
			}
		}
	}
	return types.OutcomeNone
}

// segmentPriority returns the (first, second) barrier-check order for
// one segment, by direction and side:
//   rising (p1 > p0):  BUY → (TP, SL); SELL → (SL, TP)
//   falling (p1 < p0): BUY → (SL, TP); SELL → (TP, SL)
//   flat (p1 == p0):   neither matters — order is irrelevant since
//                      `between` can only match a degenerate point.
func segmentPriority(side types.Side, p0, p1 float64) (first, second types.Outcome) {
	rising := p1 > p0
	switch {
	case rising && side == types.Buy:
		return types.OutcomeTP, types.OutcomeSL
	case rising && side == types.Sell:
		return types.OutcomeSL, types.OutcomeTP
	case !rising && side == types.Buy:
		return types.OutcomeSL, types.OutcomeTP
	case !rising && side == types.Sell:
		return types.OutcomeTP, types.OutcomeSL
	default:
		return types.OutcomeNone, types.OutcomeNone
	}
}

func between(x, p0, p1 float64) bool {
	lo, hi := p0, p1
	if lo > hi {
		lo, hi = hi, lo
	}
	return x >= lo && x <= hi
}
