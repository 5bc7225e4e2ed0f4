// Package cmd defines the command-line interface for slipcheck.
package cmd

import (
	"github.com/slipcheck/slipcheck/internal/contract"
	"github.com/slipcheck/slipcheck/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(testsCmd)
	rootCmd.AddCommand(groupsCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(collectCmd)
	rootCmd.AddCommand(datasetCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the dataset subcommands to the parent dataset command
	datasetCmd.AddCommand(datasetValidateCmd)
	datasetCmd.AddCommand(datasetStatsCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().StringP("candidate", "c", "", "Candidate results file (defaults to the newest file in the results directory)")
	rootCmd.PersistentFlags().String("results-dir", "results", "Directory holding versioned results files")
	rootCmd.PersistentFlags().String("engine-bin", "", "Candidate engine binary for run commands")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().StringP("output", "o", string(schema.TextOut), "Output format: text or csv or json or markdown or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().StringP("methods", "m", "", "Comma-separated methods to verify: rigid, decoupled, coupled")
	rootCmd.PersistentFlags().String("earthquakes", "", "Comma-separated earthquake names to verify")
	rootCmd.PersistentFlags().String("analysis-ids", "", "Comma-separated analysis IDs to verify")
	rootCmd.PersistentFlags().String("max-analyses", "all", "Limit the number of analyses ('all' or a positive integer)")
	rootCmd.PersistentFlags().Bool("include-passed", false, "List passing tests in reports too")
	rootCmd.PersistentFlags().Bool("detailed", false, "Print per-test tolerance detail and group diagnostics")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Run cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("run-backend", "", "Run tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("run-db-connect", "", "Database connection string for run tracking (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of runCmd to Viper
	runCmd.Flags().Bool("force-recompute", false, "Ignore cache hits and rerun every analysis")
	if err := viper.BindPFlags(runCmd.Flags()); err != nil {
		contract.LogFatal("Error binding run flags", err)
	}

	// Bind all flags of collectCmd to Viper
	collectCmd.Flags().Bool("prune", false, "Delete cache entries after collecting them")
	if err := viper.BindPFlags(collectCmd.Flags()); err != nil {
		contract.LogFatal("Error binding collect flags", err)
	}

	// Bind all flags of exportCmd to Viper
	exportCmd.Flags().Int64("run-id", 0, "Run to export (0 means the newest run)")
	if err := viper.BindPFlags(exportCmd.Flags()); err != nil {
		contract.LogFatal("Error binding export flags", err)
	}

	// Bind all flags of cacheClearCmd to Viper
	cacheClearCmd.Flags().Bool("runs", false, "Also delete run tracking data")
	if err := viper.BindPFlags(cacheClearCmd.Flags()); err != nil {
		contract.LogFatal("Error binding cache clear flags", err)
	}

	// Bind all flags of cacheMigrateCmd to Viper
	cacheMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(cacheMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding cache migrate flags", err)
	}
}
