// Command backtester is the CLI entry point: run-cpu (single-run,
// with optional viability/Monte Carlo/walk-forward reports),
// run-batch (parallel multi-run), run-gridsearch (parameter sweep
// scored by internal/viability), and serve (status/progress API).
// Grounded on the teacher's cmd/server/main.go flag parsing and
// zap setupLogger, restructured around spf13/cobra subcommands per
// the retrieved pack's rustyeddy-trader cobra backtest command.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "backtester",
		Short: "Deterministic single-instrument margin-trading backtester",
	}

	root.AddCommand(newRunCPUCommand())
	root.AddCommand(newRunBatchCommand())
	root.AddCommand(newRunGridsearchCommand())
	root.AddCommand(newServeCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
