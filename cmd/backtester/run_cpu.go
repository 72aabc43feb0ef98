package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/atlas-desktop/backtester/internal/config"
	"github.com/atlas-desktop/backtester/internal/diagnostics"
	"github.com/atlas-desktop/backtester/internal/indicators"
	"github.com/atlas-desktop/backtester/internal/marketdata"
	"github.com/atlas-desktop/backtester/internal/metrics"
	"github.com/atlas-desktop/backtester/internal/montecarlo"
	"github.com/atlas-desktop/backtester/internal/simulator"
	"github.com/atlas-desktop/backtester/internal/strategy"
	"github.com/atlas-desktop/backtester/internal/strategy/builtin"
	"github.com/atlas-desktop/backtester/internal/viability"
	"github.com/atlas-desktop/backtester/internal/walkforward"
)

func newRunCPUCommand() *cobra.Command {
	var (
		configPath       string
		runID            string
		dataPath         string
		logLevel         string
		strategyName     string
		wantViability    bool
		mcIterations     int
		mcRuinThreshold  float64
		mcSeed           int64
		wantWalkForward  bool
	)

	cmd := &cobra.Command{
		Use:   "run-cpu",
		Short: "Run a single deterministic backtest over one bar series",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogger(logLevel)
			defer logger.Sync()

			opts := postRunAnalysis{
				viability:       wantViability,
				mcIterations:    mcIterations,
				mcRuinThreshold: mcRuinThreshold,
				mcSeed:          mcSeed,
				walkForward:     wantWalkForward,
			}
			if err := runCPU(cmd.Context(), configPath, runID, dataPath, strategyName, logger, logLevel == "debug", opts); err != nil {
				writeErrorArtifact(runID, err)
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to the YAML run configuration")
	cmd.Flags().StringVar(&runID, "run-id", "", "identifier for this run's output artifacts")
	cmd.Flags().StringVar(&dataPath, "data", "", "path to the CSV bar series")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	cmd.Flags().StringVar(&strategyName, "strategy", "rsi_reversion", "registered strategy name")
	cmd.Flags().BoolVar(&wantViability, "viability", false, "score the run 0-100 and write Viability_<run-id>.json")
	cmd.Flags().IntVar(&mcIterations, "montecarlo-iterations", 0, "bootstrap iterations for a Monte Carlo ruin/drawdown report (0 disables it)")
	cmd.Flags().Float64Var(&mcRuinThreshold, "montecarlo-ruin-threshold", 0.5, "balance fraction of starting equity considered ruin")
	cmd.Flags().Int64Var(&mcSeed, "montecarlo-seed", 1, "PRNG seed for the Monte Carlo bootstrap")
	cmd.Flags().BoolVar(&wantWalkForward, "walkforward", false, "run an in-sample/out-of-sample walk-forward report (requires chunk_years > 0)")
	_ = cmd.MarkFlagRequired("config")
	_ = cmd.MarkFlagRequired("run-id")
	_ = cmd.MarkFlagRequired("data")

	return cmd
}

// postRunAnalysis bundles the optional post-run reports run-cpu can
// produce alongside the mandatory trade history and manifest.
type postRunAnalysis struct {
	viability       bool
	mcIterations    int
	mcRuinThreshold float64
	mcSeed          int64
	walkForward     bool
}

func runCPU(ctx context.Context, configPath, runID, dataPath, strategyName string, logger *zap.Logger, debug bool, opts postRunAnalysis) error {
	cfg, err := config.Load(configPath, logger)
	if err != nil {
		return err
	}

	bars, err := marketdata.LoadCSV(dataPath)
	if err != nil {
		return err
	}
	if len(bars) == 0 {
		return fmt.Errorf("run-cpu: %s contains no bars", dataPath)
	}

	reg := defaultRegistry()
	strat, err := reg.Resolve(strategyName)
	if err != nil {
		return err
	}

	ind := indicators.ComputeRSIAndFlags(bars, cfg)

	var trail *diagnostics.Trail
	if debug {
		trail = diagnostics.NewTrail()
	}

	res, err := simulator.Run(ctx, cfg, bars, ind, strat, logger, trail)
	if err != nil {
		return err
	}

	summary := metrics.Compute(res.Trades, res.EquityCurve)
	logger.Info("run-cpu complete",
		zap.String("run_id", runID),
		zap.Int("trades", len(res.Trades)),
		zap.Float64("final_balance", res.FinalBalance),
		zap.Float64("win_rate", summary.WinRate),
	)

	if err := writeTradeHistory(runID, res.Trades); err != nil {
		return err
	}
	if err := writeManifest(runID, len(res.Trades), summary, res.FinalBalance); err != nil {
		return err
	}

	if opts.viability {
		report := viability.Score(summary, cfg.BaseBalance, viability.DefaultThresholds)
		if err := writeViabilityReport(runID, report); err != nil {
			return err
		}
	}
	if opts.mcIterations > 0 {
		mcRes, err := montecarlo.Run(ctx, res.Trades, montecarlo.Config{
			Iterations:    opts.mcIterations,
			StartBalance:  cfg.BaseBalance,
			RuinThreshold: opts.mcRuinThreshold,
			Seed:          opts.mcSeed,
		})
		if err != nil {
			return err
		}
		if err := writeMonteCarloReport(runID, mcRes); err != nil {
			return err
		}
	}
	if opts.walkForward {
		wfReport, err := walkforward.Run(ctx, cfg, bars, strat, logger)
		if err != nil {
			return err
		}
		if err := writeWalkForwardReport(runID, wfReport); err != nil {
			return err
		}
	}

	return nil
}

// defaultRegistry wires the engine's reference strategy. External
// strategy plugins register themselves the same way at their own
// import site; this registry only ships what the binary bundles.
func defaultRegistry() *strategy.Registry {
	reg := strategy.NewRegistry()
	reg.RegisterNative("rsi_reversion", builtin.NewRSIReversion())
	return reg
}
