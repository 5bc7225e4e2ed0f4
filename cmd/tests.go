package cmd

import (
	"github.com/slipcheck/slipcheck/core"
	"github.com/spf13/cobra"
)

// testsCmd prints individual comparison rows.
var testsCmd = &cobra.Command{
	Use:   "tests [reference-file]",
	Short: "Show every individual displacement comparison.",
	Long: `Compare candidate displacement results against the reference dataset and
print one row per analysis and polarity.

Each row carries the reference and candidate displacements in cm, the
absolute and relative errors, and the verdict under the resolved tolerance.
Small reference displacements are judged on absolute error alone, since
relative error is unstable near zero.

Examples:
  # List every comparison
  slipcheck tests results/results_slammer.json.gz

  # Only the decoupled method for one earthquake
  slipcheck tests results/results_slammer.json.gz --methods decoupled --earthquakes "Loma Prieta"

  # Export rows to CSV for spreadsheets
  slipcheck tests results/results_slammer.json.gz --output csv --output-file tests.csv

  # Include the tolerance columns
  slipcheck tests results/results_slammer.json.gz --detailed`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runVerificationMode(core.ExecuteVerificationTests, "Cannot run test comparisons")
	},
}
