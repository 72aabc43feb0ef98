package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/atlas-desktop/backtester/internal/batch"
	"github.com/atlas-desktop/backtester/internal/config"
	"github.com/atlas-desktop/backtester/internal/marketdata"
	"github.com/atlas-desktop/backtester/pkg/types"
)

func newRunBatchCommand() *cobra.Command {
	var (
		configPath string
		runID      string
		dataPath   string
		nRuns      int
	)

	cmd := &cobra.Command{
		Use:   "run-batch",
		Short: "Run a parallel sweep of (SL, TP, entry side) combinations over one bar series",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogger("info")
			defer logger.Sync()

			if err := runBatch(cmd.Context(), configPath, runID, dataPath, nRuns, logger); err != nil {
				writeErrorArtifact(runID, err)
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to the YAML run configuration")
	cmd.Flags().StringVar(&runID, "run-id", "", "identifier for this batch's output artifacts")
	cmd.Flags().StringVar(&dataPath, "data", "", "path to the CSV bar series")
	cmd.Flags().IntVar(&nRuns, "runs", 0, "number of runs; defaults to config's batch_size")
	_ = cmd.MarkFlagRequired("config")
	_ = cmd.MarkFlagRequired("run-id")
	_ = cmd.MarkFlagRequired("data")

	return cmd
}

func runBatch(ctx context.Context, configPath, runID, dataPath string, nRuns int, logger *zap.Logger) error {
	cfg, err := config.Load(configPath, logger)
	if err != nil {
		return err
	}

	bars, err := marketdata.LoadCSV(dataPath)
	if err != nil {
		return err
	}
	if len(bars) == 0 {
		return fmt.Errorf("run-batch: %s contains no bars", dataPath)
	}

	if nRuns <= 0 {
		nRuns = cfg.BatchSize
	}
	if nRuns <= 0 {
		return fmt.Errorf("run-batch: runs must be positive (got %d, config batch_size=%d)", nRuns, cfg.BatchSize)
	}

	req := buildBatchRequest(cfg, bars, nRuns)

	reg := prometheus.NewRegistry()
	batch.MustRegister(reg)

	res, err := batch.RunBatch(ctx, req, logger)
	if err != nil {
		return err
	}

	logger.Info("run-batch complete", zap.String("run_id", runID), zap.Int("runs", nRuns))

	return writeBatchArtifacts(runID, req, res)
}

// buildBatchRequest sweeps stop-loss distance by a fixed per-run
// multiplier ladder and alternates entry side, replaying the same
// price series under every combination — the parameter sweep spec.md
// §4.8 describes as "independent (SL, TP, entry-side) combinations".
func buildBatchRequest(cfg *config.Config, bars []types.Bar, nRuns int) *batch.Request {
	n := len(bars)
	req := &batch.Request{
		NRuns:        nRuns,
		NMinutes:     n,
		Open:         make([]float64, nRuns*n),
		High:         make([]float64, nRuns*n),
		Low:          make([]float64, nRuns*n),
		Close:        make([]float64, nRuns*n),
		EntrySide:    make([]float64, nRuns*n),
		SLPoints:     make([]float64, nRuns),
		TPPoints:     make([]float64, nRuns),
		Point:        cfg.Point,
		OHLCOrder:    cfg.OHLCOrder,
		SpreadPoints: cfg.FixedSpreadPoint,
		SpreadPolicy: cfg.SpreadPolicy,
	}

	for run := 0; run < nRuns; run++ {
		base := run * n
		for i, b := range bars {
			req.Open[base+i] = b.Open
			req.High[base+i] = b.High
			req.Low[base+i] = b.Low
			req.Close[base+i] = b.Close
		}

		multiplier := 1.0 + 0.1*float64(run)
		sl := cfg.StoplossPoints * multiplier
		req.SLPoints[run] = sl
		req.TPPoints[run] = sl * cfg.RR

		// Entry fires at the first minute of the run's row; every
		// other minute carries a zero (no signal) per runOne's
		// "s == 0 means no entry yet" convention.
		side := types.Buy
		if run%2 != 0 {
			side = types.Sell
		}
		req.EntrySide[base] = float64(side)
	}

	return req
}

// writeBatchArtifacts writes a Manifest.json and a one-row Summary.csv
// into each run's <index> directory, plus a batch-level Summary.csv
// with one row per run, per spec.md §6.
func writeBatchArtifacts(runID string, req *batch.Request, res *batch.Result) error {
	root := filepath.Join(outputsDir, "Run_"+runID)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("write batch artifacts: %w", err)
	}

	summaryPath := filepath.Join(root, "Summary.csv")
	sf, err := os.Create(summaryPath)
	if err != nil {
		return err
	}
	defer sf.Close()

	w := csv.NewWriter(sf)
	defer w.Flush()
	header := []string{"run_id", "index", "total_trades", "win_rate", "profit_factor", "net_profit_pts"}
	if err := w.Write(header); err != nil {
		return err
	}

	for i := 0; i < req.NRuns; i++ {
		runDir := filepath.Join(root, strconv.Itoa(i))
		if err := os.MkdirAll(runDir, 0o755); err != nil {
			return err
		}

		closed := res.ExitReason[i] != 0 // 0 == no exit this series
		trades := 0
		winRate := 0.0
		profitFactor := 0.0
		if closed {
			trades = 1
			if res.ExitReason[i] == 1 { // TP
				winRate = 1.0
				profitFactor = 1.0
			}
		}

		manifest := map[string]interface{}{
			"run_id":     runID,
			"index":      i,
			"entry_side": types.Side(int(req.EntrySide[i*req.NMinutes])).String(),
			"sl_points":  req.SLPoints[i],
			"tp_points":  req.TPPoints[i],
			"exit_price": res.ExitPrice[i],
			"entry_price": res.EntryPrice[i],
			"pnl_points": res.PnLPoints[i],
		}
		mf, err := os.Create(filepath.Join(runDir, "Manifest.json"))
		if err != nil {
			return err
		}
		enc := json.NewEncoder(mf)
		enc.SetIndent("", "  ")
		encErr := enc.Encode(manifest)
		mf.Close()
		if encErr != nil {
			return encErr
		}

		row := []string{
			runID,
			strconv.Itoa(i),
			strconv.Itoa(trades),
			strconv.FormatFloat(winRate, 'f', -1, 64),
			strconv.FormatFloat(profitFactor, 'f', -1, 64),
			strconv.FormatFloat(res.PnLPoints[i], 'f', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}

		rf, err := os.Create(filepath.Join(runDir, "Summary.csv"))
		if err != nil {
			return err
		}
		rw := csv.NewWriter(rf)
		_ = rw.Write(header)
		_ = rw.Write(row)
		rw.Flush()
		rf.Close()
		if err := rw.Error(); err != nil {
			return err
		}
	}

	return nil
}
