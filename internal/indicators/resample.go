package indicators

import (
	"math"
	"time"

	"github.com/atlas-desktop/backtester/pkg/types"
)

// ResampleOHLC aggregates one-minute bars to a right-closed,
// right-labeled higher timeframe of the given minute width. Windows
// holding fewer than `minutes` bars (a partial leading or trailing
// window) are dropped, matching spec.md §4.2.
func ResampleOHLC(bars []types.Bar, minutes int) []types.Bar {
	if minutes <= 0 || len(bars) == 0 {
		return nil
	}

	var out []types.Bar
	windowStart := windowFloor(bars[0].Timestamp, minutes)
	var cur *types.Bar
	count := 0

	flush := func() {
		if cur != nil && count == minutes {
			out = append(out, *cur)
		}
	}

	for _, b := range bars {
		ws := windowFloor(b.Timestamp, minutes)
		if cur == nil || ws != windowStart {
			flush()
			windowStart = ws
			label := windowStart.Add(time.Duration(minutes) * time.Minute)
			cur = &types.Bar{
				Timestamp: label,
				Open:      b.Open,
				High:      b.High,
				Low:       b.Low,
				Close:     b.Close,
			}
			count = 0
		}
		if b.High > cur.High {
			cur.High = b.High
		}
		if b.Low < cur.Low {
			cur.Low = b.Low
		}
		cur.Close = b.Close
		count++
	}
	flush()

	return out
}

// windowFloor returns the open left edge of the right-closed window
// (start, start+minutes] that contains t.
func windowFloor(t time.Time, minutes int) time.Time {
	unix := t.Unix()
	width := int64(minutes) * 60
	floored := (unix / width) * width
	if floored == unix && t.Nanosecond() == 0 {
		floored -= width
	}
	return time.Unix(floored, 0).UTC()
}

// ForwardFill maps a lower-resolution series (labeled by its own
// right-closed timestamps) onto the base minute grid: at base index i
// with timestamp ts, the value is the most recent higher-timeframe
// bar whose label timestamp is <= ts, or NaN before the first label.
func ForwardFill(baseTimestamps []time.Time, htfBars []types.Bar, htfRSI []float64) []float64 {
	out := make([]float64, len(baseTimestamps))
	j := -1
	for i, ts := range baseTimestamps {
		for j+1 < len(htfBars) && !htfBars[j+1].Timestamp.After(ts) {
			j++
		}
		if j < 0 {
			out[i] = math.NaN()
		} else {
			out[i] = htfRSI[j]
		}
	}
	return out
}
