package cmd

import (
	"fmt"

	"github.com/slipcheck/slipcheck/internal/contract"
	"github.com/slipcheck/slipcheck/internal/iocache"
	"github.com/slipcheck/slipcheck/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runStoreSetup loads minimal configuration needed for run store operations.
// This is used by commands that need stored run data without full shared setup.
func runStoreSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get run-related config values
	backendStr := viper.GetString("run-backend")
	connStr := viper.GetString("run-db-connect")

	// Handle empty backend as NoneBackend
	var backend schema.DatabaseBackend
	if backendStr == "" {
		backend = schema.NoneBackend
	} else {
		backend = schema.DatabaseBackend(backendStr)
	}

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// Get output-related config values
	outputFile := viper.GetString("output-file")

	// Initialize stores with the loaded config (no caching for export commands)
	if err := iocache.InitStores(schema.NoneBackend, "", backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize run store: %w", err)
	}

	cfg.RunBackend = backend
	cfg.RunDBConnect = connStr
	cfg.OutputFile = outputFile

	return nil
}

// runStoreSetupWrapper wraps runStoreSetup to provide PreRunE for export commands.
func runStoreSetupWrapper(_ *cobra.Command, _ []string) error {
	return runStoreSetup()
}

// exportCmd exports stored run data to Parquet files.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored engine run data to Parquet for analytics",
	Long: `Export the rows of one stored engine run to Parquet format for use with
analytics tools.

Each row carries the analysis ID, method, polarity, displacement in cm, the
optional engine outputs (kmax, degraded Vs, final damping), the engine
version and the run timestamp.

Parquet format enables:
- Fast querying with DuckDB, Apache Spark, pandas
- Efficient storage with columnar compression
- Direct import into BI tools

Requires: --output-file parameter and a configured run backend

Examples:
  # Export the newest run
  SLIPCHECK_RUN_BACKEND=sqlite slipcheck export --output-file run-data.parquet

  # Export a specific run
  SLIPCHECK_RUN_BACKEND=sqlite slipcheck export --run-id 42 --output-file run-42.parquet

  # Use with DuckDB for analysis
  duckdb -c "SELECT method, avg(displacement_cm) FROM read_parquet('run-data.parquet') GROUP BY method"`,
	PreRunE: runStoreSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runID := viper.GetInt64("run-id")
		if err := iocache.ExecuteRunExport(runID, cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export run data", err)
		}
	},
}
