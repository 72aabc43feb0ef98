package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/atlas-desktop/backtester/internal/gridsearch"
	"github.com/atlas-desktop/backtester/internal/metrics"
	"github.com/atlas-desktop/backtester/internal/montecarlo"
	"github.com/atlas-desktop/backtester/internal/viability"
	"github.com/atlas-desktop/backtester/internal/walkforward"
	"github.com/atlas-desktop/backtester/pkg/types"
)

const outputsDir = "outputs"

func ensureOutputsDir() error {
	return os.MkdirAll(outputsDir, 0o755)
}

// writeErrorArtifact writes outputs/<run-id>_error.json per spec.md §6
// on any unrecoverable failure.
func writeErrorArtifact(runID string, cause error) {
	_ = ensureOutputsDir()
	path := filepath.Join(outputsDir, fmt.Sprintf("%s_error.json", runID))
	payload := map[string]string{"error": cause.Error()}
	f, err := os.Create(path)
	if err != nil {
		return
	}
	defer f.Close()
	_ = json.NewEncoder(f).Encode(payload)
}

// writeTradeHistory writes outputs/TH_<run-id>.csv, one row per closed
// trade: time, result, plus pnl columns.
func writeTradeHistory(runID string, trades []types.TradeRecord) error {
	if err := ensureOutputsDir(); err != nil {
		return err
	}
	path := filepath.Join(outputsDir, fmt.Sprintf("TH_%s.csv", runID))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write trade history: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"time", "result", "side", "entry_price", "exit_price", "lot", "pnl_points", "pnl_currency"}); err != nil {
		return err
	}
	for _, t := range trades {
		row := []string{
			t.Timestamp.UTC().Format("2006-01-02T15:04:05Z"),
			string(t.Outcome),
			t.Side.String(),
			strconv.FormatFloat(t.EntryPrice, 'f', -1, 64),
			strconv.FormatFloat(t.ExitPrice, 'f', -1, 64),
			strconv.FormatFloat(t.Lot, 'f', -1, 64),
			strconv.FormatFloat(t.PnLPoints, 'f', -1, 64),
			strconv.FormatFloat(t.PnLCurrency, 'f', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// writeManifest writes outputs/Manifest_<run-id>.json for a single run.
func writeManifest(runID string, trades int, summary metrics.Summary, finalBalance float64) error {
	if err := ensureOutputsDir(); err != nil {
		return err
	}
	path := filepath.Join(outputsDir, fmt.Sprintf("Manifest_%s.json", runID))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	defer f.Close()

	payload := map[string]interface{}{
		"run_id":        runID,
		"trades":        trades,
		"win_rate":      summary.WinRate,
		"profit_factor": summary.ProfitFactor,
		"net_profit":    summary.NetProfit,
		"max_drawdown":  summary.MaxDrawdown,
		"final_balance": finalBalance,
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

// writeViabilityReport writes outputs/Viability_<run-id>.json, the
// optional 0-100 strategy score run-cpu produces when --viability is set.
func writeViabilityReport(runID string, r viability.Report) error {
	if err := ensureOutputsDir(); err != nil {
		return err
	}
	path := filepath.Join(outputsDir, fmt.Sprintf("Viability_%s.json", runID))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write viability report: %w", err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// writeMonteCarloReport writes outputs/MonteCarlo_<run-id>.json, the
// optional bootstrap-resampling report run-cpu produces when
// --montecarlo-iterations is set above zero.
func writeMonteCarloReport(runID string, r *montecarlo.Result) error {
	if err := ensureOutputsDir(); err != nil {
		return err
	}
	path := filepath.Join(outputsDir, fmt.Sprintf("MonteCarlo_%s.json", runID))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write monte carlo report: %w", err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// writeWalkForwardReport writes outputs/WalkForward_<run-id>.json, the
// optional in-sample/out-of-sample robustness report run-cpu produces
// when --walkforward is set (requires chunk_years > 0 in the config).
func writeWalkForwardReport(runID string, r *walkforward.Report) error {
	if err := ensureOutputsDir(); err != nil {
		return err
	}
	path := filepath.Join(outputsDir, fmt.Sprintf("WalkForward_%s.json", runID))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write walk-forward report: %w", err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// writeGridsearchReport writes outputs/GridSearch_<run-id>.json, the
// winning combination and its viability score from run-gridsearch.
func writeGridsearchReport(runID string, best gridsearch.Combination, score float64) error {
	if err := ensureOutputsDir(); err != nil {
		return err
	}
	path := filepath.Join(outputsDir, fmt.Sprintf("GridSearch_%s.json", runID))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write gridsearch report: %w", err)
	}
	defer f.Close()
	payload := map[string]interface{}{
		"run_id":             runID,
		"best_combination":   best,
		"viability_score":    score,
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
