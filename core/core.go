// Package core has core logic for comparing, aggregating and verifying
// candidate displacement results against a reference dataset.
package core

import (
	"context"
	"fmt"
	"time"

	"github.com/slipcheck/slipcheck/internal/contract"
	"github.com/slipcheck/slipcheck/internal/dataset"
	"github.com/slipcheck/slipcheck/internal/outwriter"
	"github.com/slipcheck/slipcheck/schema"
)

// ExecutorFunc defines the function signature for executing different
// verification modes.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// GetVerificationOutput runs the verification pipeline and returns the raw
// output without rendering it. It serves callers that format results
// themselves, such as the MCP tool handlers.
func GetVerificationOutput(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*schema.VerificationOutput, error) {
	return runVerificationCore(ctx, cfg)
}

// ExecuteVerificationTests runs the verification and prints the individual
// comparison rows. It serves as the main entry point for the 'tests' mode.
func ExecuteVerificationTests(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	output, err := runVerificationCore(ctx, cfg)
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return outwriter.WriteTestResults(output.Comparisons, cfg, duration)
}

// ExecuteVerificationGroups runs the verification and prints the per-group
// statistical verdicts. It serves as the main entry point for the 'groups'
// mode.
func ExecuteVerificationGroups(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	output, err := runVerificationCore(ctx, cfg)
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return outwriter.WriteGroupResults(output.Summary.Groups, output.Summary.Thresholds, cfg, duration)
}

// ExecuteVerificationReport runs the verification and renders the full
// report, text by default or markdown/json/csv/parquet per the output mode.
func ExecuteVerificationReport(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	output, err := runVerificationCore(ctx, cfg)
	if err != nil {
		return err
	}
	return outwriter.WriteVerificationReport(output, cfg)
}

// ExecuteDatasetValidate loads a results file, which validates it against
// the dataset schema, and prints a short confirmation.
func ExecuteDatasetValidate(path string) error {
	ds, err := dataset.Load(path)
	if err != nil {
		return err
	}
	fmt.Printf("✅ %s is a valid results file\n", path)
	fmt.Printf("  Schema version: %s\n", ds.SchemaVersion)
	fmt.Printf("  Source: %s %s\n", ds.Metadata.SourceProgram, ds.Metadata.SourceVersion)
	fmt.Printf("  Analyses: %d\n", len(ds.Analyses))
	return nil
}

// ExecuteDatasetStats loads a results file and prints record counts broken
// down by method and earthquake.
func ExecuteDatasetStats(path string) error {
	ds, err := dataset.Load(path)
	if err != nil {
		return err
	}

	fmt.Printf("Dataset: %s\n", path)
	fmt.Printf("  Source: %s %s (extracted %s)\n",
		ds.Metadata.SourceProgram, ds.Metadata.SourceVersion, ds.Metadata.DateExtracted)
	fmt.Printf("  Analyses: %d\n\n", len(ds.Analyses))

	methodCounts := make(map[schema.Method]int)
	quakeCounts := make(map[string]int)
	var quakeOrder []string
	for _, rec := range ds.Analyses {
		methodCounts[rec.Analysis.Method]++
		if _, seen := quakeCounts[rec.GroundMotion.Earthquake]; !seen {
			quakeOrder = append(quakeOrder, rec.GroundMotion.Earthquake)
		}
		quakeCounts[rec.GroundMotion.Earthquake]++
	}

	fmt.Println("By method:")
	for _, m := range schema.AllMethods {
		if n := methodCounts[m]; n > 0 {
			fmt.Printf("  %-10s %d\n", m.Title()+":", n)
		}
	}

	fmt.Println("\nBy earthquake:")
	for _, q := range quakeOrder {
		fmt.Printf("  %-30s %d\n", q+":", quakeCounts[q])
	}
	return nil
}
