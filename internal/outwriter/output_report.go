package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/slipcheck/slipcheck/internal/contract"
	"github.com/slipcheck/slipcheck/internal/parquet"
	"github.com/slipcheck/slipcheck/schema"
)

// WriteVerificationReport outputs the full verification report, dispatching
// based on the output format configured.
func WriteVerificationReport(output *schema.VerificationOutput, cfg *contract.Config) error {
	if output.Summary == nil {
		return errors.New("verification output has no summary")
	}

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, output)
		}, "Wrote JSON")
	case schema.CSVOut:
		// CSV projects the individual comparison rows
		fmtFloat, _ := createFormatters(cfg.Precision)
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			csvWriter := csv.NewWriter(w)
			defer csvWriter.Flush()
			return writeCSVResultsForTests(csvWriter, output.Comparisons, fmtFloat)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return writeReportParquet(output, cfg)
	case schema.MarkdownOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeMarkdownReport(w, output, cfg)
		}, "Wrote markdown report")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeTextReport(w, output, cfg)
		}, "Wrote report")
	}
}

// writeReportParquet writes the comparison and group rows as a pair of
// Parquet files derived from the configured output path.
func writeReportParquet(output *schema.VerificationOutput, cfg *contract.Config) error {
	if cfg.OutputFile == "" {
		return errors.New("--output-file is required for parquet output")
	}

	comparisonsFile := cfg.OutputFile + ".comparisons.parquet"
	rows := parquet.ConvertComparisonResults(output.Comparisons)
	if err := parquet.WriteComparisonsParquet(rows, comparisonsFile); err != nil {
		return fmt.Errorf("failed to write comparison rows: %w", err)
	}
	fmt.Fprintf(os.Stderr, "💾 Wrote %d comparison rows to %s\n", len(rows), comparisonsFile)

	groupsFile := cfg.OutputFile + ".groups.parquet"
	groupRows := parquet.ConvertGroupResults(output.Summary.Groups)
	if err := parquet.WriteGroupStatsParquet(groupRows, groupsFile); err != nil {
		return fmt.Errorf("failed to write group rows: %w", err)
	}
	fmt.Fprintf(os.Stderr, "💾 Wrote %d group rows to %s\n", len(groupRows), groupsFile)

	return nil
}

// writeTextReport renders the plain-text verification report. The layout
// follows the report produced by the original verification scripts so the two
// stay diffable.
func writeTextReport(w io.Writer, output *schema.VerificationOutput, cfg *contract.Config) error {
	summary := output.Summary
	banner := strings.Repeat("=", 80)

	var b strings.Builder
	b.WriteString(banner + "\n")
	fmt.Fprintf(&b, "%s VERIFICATION REPORT\n", strings.ToUpper(summary.CandidateProgram))
	b.WriteString(banner + "\n")
	b.WriteString("\n")

	// Overall summary
	b.WriteString("Overall Results:\n")
	fmt.Fprintf(&b, "  Total Tests: %d\n", summary.TotalTests)
	fmt.Fprintf(&b, "  Passing: %d (%.1f%%)\n", summary.PassingTests, summary.OverallPassRate)
	fmt.Fprintf(&b, "  Failing: %d\n", summary.FailingTests)
	b.WriteString("\n")

	// Method-specific summaries
	b.WriteString("Method-Specific Results:\n")
	for _, method := range summary.MethodsPresent() {
		stats := summary.MethodSummaries[method]
		fmt.Fprintf(&b, "  %s:\n", strings.ToUpper(string(method)))
		fmt.Fprintf(&b, "    Tests: %d\n", stats.TotalTests)
		fmt.Fprintf(&b, "    Pass Rate: %.1f%%\n", stats.PassRate)
		fmt.Fprintf(&b, "    Mean Absolute Error: %.3f cm\n", stats.MeanAbsoluteError)
		fmt.Fprintf(&b, "    Mean Relative Error: %s\n", formatRatioPercent(stats.MeanRelativeError))
	}
	b.WriteString("\n")

	// Group statistical analysis
	if cfg.Detailed && len(summary.Groups) > 0 {
		b.WriteString("Group Statistical Analysis:\n")
		for _, group := range summary.Groups {
			fmt.Fprintf(&b, "  %s - %s [%s]:\n",
				strings.ToUpper(string(group.Method)), group.Direction, contract.GetPlainLabel(group.Passed))
			fmt.Fprintf(&b, "    Samples: %d\n", group.SampleCount)
			fmt.Fprintf(&b, "    Individual Pass Rate: %.1f%%\n", group.PercentPassing)
			fmt.Fprintf(&b, "    Regression: y = %.4fx + %.4f\n", group.Slope, group.Intercept)
			fmt.Fprintf(&b, "    R²: %.4f\n", group.RSquared)
			fmt.Fprintf(&b, "    Mean Relative Error: %s\n", formatRatioPercent(group.MeanRelativeError))
		}
		b.WriteString("\n")
	}

	// Failed tests detail
	var failed []schema.ComparisonResult
	for _, r := range output.Comparisons {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	if len(failed) > 0 {
		fmt.Fprintf(&b, "Failed Tests (%d):\n", len(failed))
		for _, test := range failed {
			fmt.Fprintf(&b, "  %s:\n", testID(test))
			fmt.Fprintf(&b, "    Expected: %.3f cm\n", test.ReferenceValue)
			fmt.Fprintf(&b, "    Actual: %.3f cm\n", test.CandidateValue)
			fmt.Fprintf(&b, "    Absolute Error: %.3f cm\n", test.AbsoluteError)
			fmt.Fprintf(&b, "    Relative Error: %s\n", formatRatioPercent(test.RelativeError))
		}
		b.WriteString("\n")
	}

	// Passed tests detail (if requested)
	if cfg.IncludePassed {
		var passed []schema.ComparisonResult
		for _, r := range output.Comparisons {
			if r.Passed {
				passed = append(passed, r)
			}
		}
		if len(passed) > 0 {
			fmt.Fprintf(&b, "Passed Tests (%d):\n", len(passed))
			for _, test := range passed {
				fmt.Fprintf(&b, "  %s: %.3f cm (error: %s)\n", testID(test), test.CandidateValue, formatRatioPercent(test.RelativeError))
			}
			b.WriteString("\n")
		}
	}

	// Skipped analyses without a candidate twin
	if len(output.SkippedIDs) > 0 {
		fmt.Fprintf(&b, "Skipped Analyses (%d):\n", len(output.SkippedIDs))
		for _, id := range output.SkippedIDs {
			fmt.Fprintf(&b, "  %s\n", id)
		}
		b.WriteString("\n")
	}

	b.WriteString(banner + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// testID is the identifier a report line carries for one comparison: the
// analysis ID qualified by method and polarity.
func testID(r schema.ComparisonResult) string {
	return fmt.Sprintf("%s_%s_%s", r.AnalysisID, r.Method, r.Direction)
}
