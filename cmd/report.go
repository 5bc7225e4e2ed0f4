package cmd

import (
	"github.com/slipcheck/slipcheck/core"
	"github.com/spf13/cobra"
)

// reportCmd renders the full verification report.
var reportCmd = &cobra.Command{
	Use:   "report [reference-file]",
	Short: "Render the full verification report.",
	Long: `Compare candidate displacement results against the reference dataset and
render a complete report: overall pass rate, per-method summaries, group
regression statistics, and the failing tests.

Formats:
- text (default) - the classic banner report
- markdown       - suitable for commit comments and docs
- json           - the full verification output
- csv            - the comparison rows
- parquet        - comparison and group files for analytics tools

Examples:
  # Print the text report
  slipcheck report results/results_slammer.json.gz

  # Write a markdown report for a pull request
  slipcheck report results/results_slammer.json.gz --output markdown --output-file verification.md

  # Include passing tests and tolerance detail
  slipcheck report results/results_slammer.json.gz --include-passed --detailed`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runVerificationMode(core.ExecuteVerificationReport, "Cannot render verification report")
	},
}
