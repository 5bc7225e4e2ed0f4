package cmd

import (
	"github.com/slipcheck/slipcheck/core"
	"github.com/spf13/cobra"
)

// groupsCmd prints per-group statistical verdicts.
var groupsCmd = &cobra.Command{
	Use:   "groups [reference-file]",
	Short: "Show statistical verdicts per method/direction group.",
	Long: `Compare candidate displacement results against the reference dataset and
print the aggregated verdict for every method/direction group.

Each group reports its sample count, individual pass rate, OLS regression
slope and intercept, R squared, and mean relative error. A group passes when
all four acceptance checks hold.

Examples:
  # Show all group statistics
  slipcheck groups results/results_slammer.json.gz

  # Only coupled-method groups, with failed checks listed
  slipcheck groups results/results_slammer.json.gz --methods coupled --detailed

  # Machine-readable group stats
  slipcheck groups results/results_slammer.json.gz --output json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runVerificationMode(core.ExecuteVerificationGroups, "Cannot run group analysis")
	},
}
