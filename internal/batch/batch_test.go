package batch

import (
	"context"
	"math"
	"testing"

	"go.uber.org/zap"

	"github.com/atlas-desktop/backtester/internal/config"
)

func approxEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

// buildRequest lays out nRuns identical 5-minute rows where every run
// enters BUY at minute 0 and rides a strictly rising price path, with a
// per-run SL/TP ladder so runs reach their widening TP on different
// minutes.
func buildRequest(nRuns int) *Request {
	const nMinutes = 5
	open := make([]float64, nRuns*nMinutes)
	high := make([]float64, nRuns*nMinutes)
	low := make([]float64, nRuns*nMinutes)
	close_ := make([]float64, nRuns*nMinutes)
	side := make([]float64, nRuns*nMinutes)
	slPoints := make([]float64, nRuns)
	tpPoints := make([]float64, nRuns)

	base := 1.1000
	for r := 0; r < nRuns; r++ {
		for m := 0; m < nMinutes; m++ {
			idx := r*nMinutes + m
			p := base + float64(m)*0.0010
			open[idx] = p
			high[idx] = p + 0.0005
			low[idx] = p - 0.0005
			close_[idx] = p
		}
		side[r*nMinutes] = 1
		slPoints[r] = 500
		tpPoints[r] = float64(10 + r*5) // widening TP per run
	}

	return &Request{
		NRuns: nRuns, NMinutes: nMinutes,
		Open: open, High: high, Low: low, Close: close_,
		EntrySide: side,
		SLPoints:  slPoints, TPPoints: tpPoints,
		Point:        0.0001,
		OHLCOrder:    config.OrderOHLC,
		SpreadPoints: 0,
		SpreadPolicy: config.SpreadNone,
	}
}

func TestRunBatch_MatchesCPUReference(t *testing.T) {
	req := buildRequest(8)
	cpu := RunBatchCPU(req)
	parallel, err := RunBatch(context.Background(), req, zap.NewNop())
	if err != nil {
		t.Fatalf("RunBatch returned error: %v", err)
	}

	for i := 0; i < req.NRuns; i++ {
		if cpu.ExitReason[i] != parallel.ExitReason[i] {
			t.Errorf("run %d: ExitReason cpu=%v parallel=%v", i, cpu.ExitReason[i], parallel.ExitReason[i])
		}
		if cpu.EntryPrice[i] != parallel.EntryPrice[i] {
			t.Errorf("run %d: EntryPrice cpu=%v parallel=%v", i, cpu.EntryPrice[i], parallel.EntryPrice[i])
		}
		if cpu.ExitPrice[i] != parallel.ExitPrice[i] {
			t.Errorf("run %d: ExitPrice cpu=%v parallel=%v", i, cpu.ExitPrice[i], parallel.ExitPrice[i])
		}
		if cpu.PnLPoints[i] != parallel.PnLPoints[i] {
			t.Errorf("run %d: PnLPoints cpu=%v parallel=%v", i, cpu.PnLPoints[i], parallel.PnLPoints[i])
		}
	}
}

func TestRunBatch_RejectsNonPositiveNRuns(t *testing.T) {
	req := buildRequest(1)
	req.NRuns = 0
	_, err := RunBatch(context.Background(), req, zap.NewNop())
	if err == nil {
		t.Fatal("expected an error for NRuns <= 0")
	}
}

func TestRunBatch_RejectsMismatchedArrayLength(t *testing.T) {
	req := buildRequest(2)
	req.Open = req.Open[:len(req.Open)-1]
	_, err := RunBatch(context.Background(), req, zap.NewNop())
	if err == nil {
		t.Fatal("expected an error for a price array length mismatch")
	}
}

func TestRunOne_NoEntrySignalStaysFlat(t *testing.T) {
	req := buildRequest(1)
	for i := range req.EntrySide {
		req.EntrySide[i] = 0
	}
	reason, entry, exit, pnl := runOne(req, 0)
	if reason != 0 || entry != 0 || exit != 0 || pnl != 0 {
		t.Errorf("runOne(no signal) = (%v,%v,%v,%v), want all zero", reason, entry, exit, pnl)
	}
}

func TestRunOne_TPHitReturnsPositivePnL(t *testing.T) {
	req := buildRequest(1)
	req.TPPoints[0] = 10 // 10 points above entry, well within the rising path
	reason, _, _, pnl := runOne(req, 0)
	if reason != 1 {
		t.Errorf("reason = %d, want 1 (TP)", reason)
	}
	if pnl <= 0 {
		t.Errorf("pnl = %v, want positive on a TP hit", pnl)
	}
}

func TestRunOne_UnresolvedAtSeriesEndExitsAtLastClose(t *testing.T) {
	req := buildRequest(1)
	req.TPPoints[0] = 1_000_000 // unreachable
	req.SLPoints[0] = 1_000_000
	reason, _, exit, _ := runOne(req, 0)
	if reason != 0 {
		t.Errorf("reason = %d, want 0 (unresolved)", reason)
	}
	wantExit := req.Close[req.NMinutes-1]
	if exit != wantExit {
		t.Errorf("exit = %v, want last close %v", exit, wantExit)
	}
}

func TestSideFromFloat(t *testing.T) {
	cases := map[float64]string{1: "BUY", -1: "SELL", 0: "FLAT"}
	for v, want := range cases {
		got := sideFromFloat(v)
		var gotStr string
		switch {
		case got == 1:
			gotStr = "BUY"
		case got == -1:
			gotStr = "SELL"
		default:
			gotStr = "FLAT"
		}
		if gotStr != want {
			t.Errorf("sideFromFloat(%v) = %v, want %v", v, gotStr, want)
		}
	}
}

func TestExpandRaw_RespectsOHLCOrder(t *testing.T) {
	path := expandRaw(1, 2, 0, 1.5, config.OrderOHLC)
	want := [4]float64{1, 2, 0, 1.5}
	if path != want {
		t.Errorf("expandRaw(OHLC) = %v, want %v", path, want)
	}

	path = expandRaw(1, 2, 0, 1.5, config.OrderOLHC)
	want = [4]float64{1, 0, 2, 1.5}
	if path != want {
		t.Errorf("expandRaw(OLHC) = %v, want %v", path, want)
	}
}

func TestAskPath_AddsUniformSpread(t *testing.T) {
	req := &Request{Point: 0.0001, SpreadPoints: 2}
	bid := [4]float64{1.1000, 1.1010, 1.0990, 1.1005}
	ask := askPath(bid, req)
	for i := range bid {
		want := bid[i] + 0.0002
		if !approxEqual(ask[i], want) {
			t.Errorf("ask[%d] = %v, want %v", i, ask[i], want)
		}
	}
}

func TestEntryQuote_BuyAlwaysPaysSpreadRegardlessOfPolicy(t *testing.T) {
	req := &Request{Point: 0.0001, SpreadPoints: 2, SpreadPolicy: config.SpreadFull}
	if got := entryQuote(req, 1.1000, 1); !approxEqual(got, 1.1002) {
		t.Errorf("BUY entry under FULL = %v, want 1.1002", got)
	}
	req.SpreadPolicy = config.SpreadNone
	if got := entryQuote(req, 1.1000, 1); !approxEqual(got, 1.1002) {
		t.Errorf("BUY entry under NONE = %v, want 1.1002 (entry always pays the spread)", got)
	}
	req.SpreadPolicy = config.SpreadFull
	if got := entryQuote(req, 1.1000, -1); !approxEqual(got, 1.1000) {
		t.Errorf("SELL entry = %v, want 1.1000 regardless of policy", got)
	}
}

func TestBarrierPrices_FullPolicyShiftsBothSLAndTP(t *testing.T) {
	req := &Request{Point: 0.0001, SpreadPoints: 2, SpreadPolicy: config.SpreadFull}
	sl, tp := barrierPrices(req, 1.1000, 1, 50, 100)
	// raw: sl=1.1000-0.0050=1.0950, tp=1.1000+0.0100=1.1100; FULL subtracts spread(0.0002) from both for BUY.
	if !approxEqual(sl, 1.0948) {
		t.Errorf("sl = %v, want 1.0948", sl)
	}
	if !approxEqual(tp, 1.1098) {
		t.Errorf("tp = %v, want 1.1098", tp)
	}
}
