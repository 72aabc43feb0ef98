// Package tick maps one OHLC bar to a 4-price synthetic path per the
// configured OHLC ordering, per spec.md §4.3.
package tick

import (
	"time"

	"github.com/atlas-desktop/backtester/internal/config"
	"github.com/atlas-desktop/backtester/pkg/types"
)

// Expand returns the bid-side synthetic tick path (t0, t1, t2, t3) for
// one bar, per the configured order:
//   O_H_L_C → (O, H, L, C)
//   O_L_H_C → (O, L, H, C)
func Expand(bar types.Bar, order config.OHLCOrder) types.TickPath {
	switch order {
	case config.OrderOLHC:
		return types.TickPath{bar.Open, bar.Low, bar.High, bar.Close}
	default: // OrderOHLC
		return types.TickPath{bar.Open, bar.High, bar.Low, bar.Close}
	}
}

// AskPath shifts a bid path by a fixed spread, in points.
func AskPath(bidPath types.TickPath, spreadPoints, point float64) types.TickPath {
	offset := spreadPoints * point
	var out types.TickPath
	for i, p := range bidPath {
		out[i] = p + offset
	}
	return out
}

// Expander iterates a bar series in order, yielding the synthetic tick
// path per bar.
type Expander struct {
	bars  []types.Bar
	order config.OHLCOrder
	i     int
}

// NewExpander constructs an Expander over a bar series.
func NewExpander(bars []types.Bar, order config.OHLCOrder) *Expander {
	return &Expander{bars: bars, order: order}
}

// Next returns the next (timestamp, path) pair and true, or the zero
// value and false when the series is exhausted.
func (e *Expander) Next() (ts time.Time, path types.TickPath, ok bool) {
	if e.i >= len(e.bars) {
		return time.Time{}, types.TickPath{}, false
	}
	b := e.bars[e.i]
	e.i++
	return b.Timestamp, Expand(b, e.order), true
}
