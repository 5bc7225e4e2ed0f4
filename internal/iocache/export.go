package iocache

import (
	"errors"
	"fmt"

	"github.com/slipcheck/slipcheck/internal/parquet"
)

// ExecuteRunExport exports stored engine run results to a Parquet file.
// A runID of 0 exports the newest run.
func ExecuteRunExport(runID int64, outputFile string) error {
	// Validate that output file is specified
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	store := Manager.GetRunStore()

	// Check if there's any data to export
	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get run store status: %w", err)
	}

	if status.TotalRuns == 0 {
		return errors.New("no engine run data found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total runs: %d\n", status.TotalRuns)
	fmt.Printf("Total result rows: %d\n", status.TotalRecords)

	records, err := store.ListResults(runID)
	if err != nil {
		return fmt.Errorf("failed to retrieve run results: %w", err)
	}
	if len(records) == 0 {
		if runID == 0 {
			return errors.New("newest run has no result rows to export")
		}
		return fmt.Errorf("run %d has no result rows to export", runID)
	}

	rows := parquet.ConvertEngineRunRecords(records)
	if err := parquet.WriteEngineRunsParquet(rows, outputFile); err != nil {
		return fmt.Errorf("failed to write run results: %w", err)
	}
	fmt.Printf("Exported %d result rows to: %s\n", len(rows), outputFile)

	fmt.Println("\nExport complete! The Parquet file can be used with:")
	fmt.Println("  - Apache Spark")
	fmt.Println("  - Apache Arrow")
	fmt.Println("  - Pandas (via pyarrow)")
	fmt.Println("  - DuckDB")
	fmt.Println("  - Any other Parquet-compatible tool")

	return nil
}
