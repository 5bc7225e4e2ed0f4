package cmd

import (
	"github.com/slipcheck/slipcheck/core"
	"github.com/slipcheck/slipcheck/internal/contract"
	"github.com/spf13/cobra"
)

// runVerificationMode executes one of the verification executors with the
// shared root context and cache manager.
func runVerificationMode(executeFunc core.ExecutorFunc, failMsg string) {
	if err := executeFunc(rootCtx, cfg, cacheManager); err != nil {
		contract.LogFatal(failMsg, err)
	}
}

// verifyCmd runs the verification gate.
var verifyCmd = &cobra.Command{
	Use:   "verify [reference-file]",
	Short: "Verify candidate results and fail on any group outside thresholds.",
	Long: `Compare candidate displacement results against the reference dataset and
apply the acceptance gate: every method/direction group must satisfy the
individual pass rate, regression slope, intercept and R squared thresholds.

The exit code is non-zero when any group fails, so this command slots
directly into CI pipelines.

Groups are judged on:
- Percent of individual tests inside tolerance
- OLS regression slope of candidate on reference displacements
- Regression intercept in cm
- Coefficient of determination (R squared)

Examples:
  # Gate a candidate against the reference results
  slipcheck verify results/results_slammer.json.gz

  # Gate only the rigid method
  slipcheck verify results/results_slammer.json.gz --methods rigid

  # Gate an explicit candidate file
  slipcheck verify results/results_slammer.json.gz --candidate results/results_engine_v1.2.json.gz`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runVerificationMode(core.ExecuteVerifyGate, "Cannot run verification gate")
	},
}
