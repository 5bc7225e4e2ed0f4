package cmd

import (
	"errors"

	"github.com/slipcheck/slipcheck/core"
	"github.com/slipcheck/slipcheck/internal/contract"
	"github.com/spf13/cobra"
)

// runCmd executes the candidate engine over the reference dataset.
var runCmd = &cobra.Command{
	Use:   "run [reference-file]",
	Short: "Run the candidate engine over the reference analyses.",
	Long: `Execute the candidate engine binary for every filtered reference analysis,
both polarities per record.

Outputs are cached by a content hash of the full engine input, so repeat
runs only compute what changed. Each produced row is also stored in the run
store (when configured) for later export.

The engine binary must accept a JSON request on stdin and print a JSON
response on stdout; see --engine-bin.

Examples:
  # Run the whole reference dataset
  slipcheck run results/results_slammer.json.gz --engine-bin ./slide-engine

  # Smoke-test with a handful of analyses
  slipcheck run results/results_slammer.json.gz --engine-bin ./slide-engine --max-analyses 10

  # Recompute everything after an engine change that kept the version string
  slipcheck run results/results_slammer.json.gz --engine-bin ./slide-engine --force-recompute`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if cfg.EngineBin == "" {
			contract.LogFatal("Cannot run engine", errors.New("--engine-bin is required"))
		}
		engine := contract.NewExecEngine(cfg.EngineBin)
		if err := core.ExecuteEngineRun(rootCtx, cfg, engine, cacheManager); err != nil {
			contract.LogFatal("Cannot run engine", err)
		}
	},
}

// collectCmd assembles a candidate results file from cached engine runs.
var collectCmd = &cobra.Command{
	Use:   "collect [reference-file]",
	Short: "Build a candidate results file from cached engine runs.",
	Long: `Assemble the cached engine outputs into a versioned candidate results file
that the verification commands can consume.

A record is collected only when both polarities are cached for the current
engine version. The file lands in the results directory under the
conventional name results_<engine>_v<version>.json.gz.

Examples:
  # Collect after a run
  slipcheck collect results/results_slammer.json.gz --engine-bin ./slide-engine

  # Collect and free the cache rows that were consumed
  slipcheck collect results/results_slammer.json.gz --engine-bin ./slide-engine --prune`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if cfg.EngineBin == "" {
			contract.LogFatal("Cannot collect results", errors.New("--engine-bin is required"))
		}
		engine := contract.NewExecEngine(cfg.EngineBin)
		if err := core.ExecuteCollect(rootCtx, cfg, engine, cacheManager); err != nil {
			contract.LogFatal("Cannot collect results", err)
		}
	},
}
