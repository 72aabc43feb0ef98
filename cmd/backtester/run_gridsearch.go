package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/atlas-desktop/backtester/internal/config"
	"github.com/atlas-desktop/backtester/internal/gridsearch"
	"github.com/atlas-desktop/backtester/internal/indicators"
	"github.com/atlas-desktop/backtester/internal/marketdata"
	"github.com/atlas-desktop/backtester/internal/metrics"
	"github.com/atlas-desktop/backtester/internal/simulator"
	"github.com/atlas-desktop/backtester/internal/viability"
)

func newRunGridsearchCommand() *cobra.Command {
	var (
		configPath                   string
		runID                        string
		dataPath                     string
		strategyName                 string
		slStart, slStop, slStep      float64
		rrStart, rrStop, rrStep      float64
	)

	cmd := &cobra.Command{
		Use:   "run-gridsearch",
		Short: "Sweep (stoploss_points, rr) and keep the combination with the highest viability score",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogger("info")
			defer logger.Sync()

			grid := gridsearch.GridSpec{
				Keys: []string{"stoploss_points", "rr"},
				Specs: map[string]gridsearch.ParamSpec{
					"stoploss_points": {IsRange: true, Start: slStart, Stop: slStop, Step: slStep},
					"rr":              {IsRange: true, Start: rrStart, Stop: rrStop, Step: rrStep},
				},
			}

			if err := runGridsearch(cmd.Context(), configPath, runID, dataPath, strategyName, grid, logger); err != nil {
				writeErrorArtifact(runID, err)
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to the YAML run configuration")
	cmd.Flags().StringVar(&runID, "run-id", "", "identifier for this search's output artifacts")
	cmd.Flags().StringVar(&dataPath, "data", "", "path to the CSV bar series")
	cmd.Flags().StringVar(&strategyName, "strategy", "rsi_reversion", "registered strategy name")
	cmd.Flags().Float64Var(&slStart, "sl-start", 10, "stoploss_points grid start")
	cmd.Flags().Float64Var(&slStop, "sl-stop", 50, "stoploss_points grid stop (inclusive)")
	cmd.Flags().Float64Var(&slStep, "sl-step", 10, "stoploss_points grid step")
	cmd.Flags().Float64Var(&rrStart, "rr-start", 1, "rr grid start")
	cmd.Flags().Float64Var(&rrStop, "rr-stop", 3, "rr grid stop (inclusive)")
	cmd.Flags().Float64Var(&rrStep, "rr-step", 1, "rr grid step")
	_ = cmd.MarkFlagRequired("config")
	_ = cmd.MarkFlagRequired("run-id")
	_ = cmd.MarkFlagRequired("data")

	return cmd
}

func runGridsearch(ctx context.Context, configPath, runID, dataPath, strategyName string, grid gridsearch.GridSpec, logger *zap.Logger) error {
	cfg, err := config.Load(configPath, logger)
	if err != nil {
		return err
	}

	bars, err := marketdata.LoadCSV(dataPath)
	if err != nil {
		return err
	}
	if len(bars) == 0 {
		return fmt.Errorf("run-gridsearch: %s contains no bars", dataPath)
	}

	reg := defaultRegistry()
	strat, err := reg.Resolve(strategyName)
	if err != nil {
		return err
	}

	ind := indicators.ComputeRSIAndFlags(bars, cfg)

	runCombo := func(c gridsearch.Combination) (metrics.Summary, float64, error) {
		runCfg := *cfg
		runCfg.StoplossPoints = c["stoploss_points"]
		runCfg.RR = c["rr"]

		res, err := simulator.Run(ctx, &runCfg, bars, ind, strat, logger, nil)
		if err != nil {
			return metrics.Summary{}, 0, err
		}
		return metrics.Compute(res.Trades, res.EquityCurve), runCfg.BaseBalance, nil
	}

	evaluate := gridsearch.ViabilityEvaluator(runCombo, viability.DefaultThresholds)
	best, score, err := gridsearch.Search(grid, evaluate)
	if err != nil {
		return err
	}

	logger.Info("run-gridsearch complete",
		zap.String("run_id", runID),
		zap.Any("best_combination", best),
		zap.Float64("viability_score", score),
	)

	return writeGridsearchReport(runID, best, score)
}
