package cmd

import (
	"github.com/slipcheck/slipcheck/core"
	"github.com/slipcheck/slipcheck/internal/contract"
	"github.com/spf13/cobra"
)

// datasetCmd groups results-file inspection commands.
//
// Note: Dataset subcommands work on a single file and skip the full shared
// setup; no persistence layer or engine configuration is needed.
var datasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Inspect and validate results files",
	Long: `Inspect gzip-compressed results files without running a verification.

Subcommands:
  validate - Check a file against the dataset schema
  stats    - Show record counts by method and earthquake

Examples:
  # Validate a reference export
  slipcheck dataset validate results/results_slammer.json.gz

  # See what a candidate file contains
  slipcheck dataset stats results/results_engine_v1.2.json.gz`,
}

// datasetValidateCmd validates one results file.
var datasetValidateCmd = &cobra.Command{
	Use:   "validate <results-file>",
	Short: "Validate a results file against the dataset schema",
	Long: `Decompress a results file and validate its JSON payload against the
dataset schema: required metadata, known methods and modes, method-specific
site parameters, and non-negative displacements.

Exits non-zero when the file does not validate, printing every violation.

Examples:
  # Validate before publishing a reference file
  slipcheck dataset validate results/results_slammer.json.gz`,
	Args: cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecuteDatasetValidate(args[0]); err != nil {
			contract.LogFatal("Results file is not valid", err)
		}
	},
}

// datasetStatsCmd summarizes one results file.
var datasetStatsCmd = &cobra.Command{
	Use:   "stats <results-file>",
	Short: "Show record counts for a results file",
	Long: `Print the provenance and composition of a results file: source program
and version, extraction date, and record counts broken down by analysis
method and earthquake.

Examples:
  # Inspect the reference dataset
  slipcheck dataset stats results/results_slammer.json.gz`,
	Args: cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecuteDatasetStats(args[0]); err != nil {
			contract.LogFatal("Cannot read results file", err)
		}
	},
}
