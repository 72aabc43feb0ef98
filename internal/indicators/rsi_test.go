package indicators

import (
	"math"
	"testing"
)

func TestRSIWilder_WarmupIsNaN(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5, 6}
	out := RSIWilder(closes, 3)
	for i := 0; i < 3; i++ {
		if !math.IsNaN(out[i]) {
			t.Errorf("out[%d] = %v, want NaN during warmup", i, out[i])
		}
	}
	for i := 3; i < len(out); i++ {
		if math.IsNaN(out[i]) {
			t.Errorf("out[%d] is NaN, want a computed value", i)
		}
	}
}

func TestRSIWilder_AllGainsIs100(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5, 6, 7}
	out := RSIWilder(closes, 3)
	for i := 3; i < len(out); i++ {
		if out[i] != 100 {
			t.Errorf("out[%d] = %v, want 100 for a monotonic uptrend", i, out[i])
		}
	}
}

func TestRSIWilder_AllLossesIs0(t *testing.T) {
	closes := []float64{7, 6, 5, 4, 3, 2, 1}
	out := RSIWilder(closes, 3)
	for i := 3; i < len(out); i++ {
		if out[i] != 0 {
			t.Errorf("out[%d] = %v, want 0 for a monotonic downtrend", i, out[i])
		}
	}
}

func TestRSIWilder_FlatSeriesIs50(t *testing.T) {
	closes := []float64{5, 5, 5, 5, 5}
	out := RSIWilder(closes, 3)
	if out[3] != 50 {
		t.Errorf("out[3] = %v, want 50 for a flat series", out[3])
	}
}

func TestRSIWilder_ShortSeriesAllNaN(t *testing.T) {
	closes := []float64{1, 2}
	out := RSIWilder(closes, 14)
	for i, v := range out {
		if !math.IsNaN(v) {
			t.Errorf("out[%d] = %v, want NaN: series shorter than the period", i, v)
		}
	}
}

func TestRSIWilder_EmptyInput(t *testing.T) {
	out := RSIWilder(nil, 14)
	if len(out) != 0 {
		t.Errorf("len(out) = %d, want 0", len(out))
	}
}
