package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/slipcheck/slipcheck/internal/contract"
	"github.com/slipcheck/slipcheck/internal/parquet"
	"github.com/slipcheck/slipcheck/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteTestResults outputs individual comparison results, dispatching based on
// the output format configured.
func WriteTestResults(results []schema.ComparisonResult, cfg *contract.Config, duration time.Duration) error {
	// Create formatters using helper
	fmtFloat, _ := createFormatters(cfg.Precision)

	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeTestJSONResults(results, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeTestCSVResults(results, cfg, fmtFloat); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return errors.New("--output-file is required for parquet output")
		}
		rows := parquet.ConvertComparisonResults(results)
		if err := parquet.WriteComparisonsParquet(rows, cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing parquet output: %w", err)
		}
		fmt.Fprintf(os.Stderr, "💾 Wrote %d comparison rows to %s\n", len(rows), cfg.OutputFile)
	case schema.MarkdownOut:
		return errors.New("markdown output is only supported by the report command")
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeTestTable(results, cfg, fmtFloat, duration, w)
		}, "Wrote table")
	}
	return nil
}

// writeTestJSONResults handles opening the file and calling the JSON writer.
func writeTestJSONResults(results []schema.ComparisonResult, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSONResultsForTests(w, results)
	}, "Wrote JSON")
}

// writeTestCSVResults handles opening the file and calling the CSV writer.
func writeTestCSVResults(results []schema.ComparisonResult, cfg *contract.Config, fmtFloat func(float64) string) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		csvWriter := csv.NewWriter(w)
		defer csvWriter.Flush()
		return writeCSVResultsForTests(csvWriter, results, fmtFloat)
	}, "Wrote CSV")
}

// writeTestTable generates and writes the human-readable table.
func writeTestTable(results []schema.ComparisonResult, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)

	// 1. Define Headers
	headers := []string{"Rank", "Test ID", "Method", "Dir", "Reference", "Candidate", "Abs Err", "Rel Err", "Verdict"}
	if cfg.Detailed {
		headers = append(headers, "Tol Rel", "Tol Abs", "Small")
	}
	table.Header(headers)

	// 2. Configure Separators/Borders to match a minimal look
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	// 3. Populate Rows
	verdict := contract.GetPlainLabel
	if cfg.UseColors {
		verdict = contract.GetColorLabel
	}
	maxWidth := GetMaxTableNameWidth(cfg)
	var data [][]string
	passing := 0
	for i, r := range results {
		if r.Passed {
			passing++
		}
		row := []string{
			strconv.Itoa(i + 1),
			contract.TruncatePath(r.AnalysisID, maxWidth),
			string(r.Method),
			string(r.Direction),
			fmtFloat(r.ReferenceValue),
			fmtFloat(r.CandidateValue),
			fmtFloat(r.AbsoluteError),
			formatRatioPercent(r.RelativeError),
			verdict(r.Passed),
		}
		if cfg.Detailed {
			small := ""
			if r.SmallDisplacement {
				small = "yes"
			}
			row = append(row,
				formatRatioPercent(r.Tolerance.Relative),
				fmtFloat(r.Tolerance.Absolute),
				small,
			)
		}
		data = append(data, row)
	}

	// 4. Render the table
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(writer, "Showing %d comparisons (%d passing, %d failing)\n", len(results), passing, len(results)-passing); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Verification completed in %v with %d workers\n", duration, cfg.Workers); err != nil {
		return err
	}
	return nil
}

// writeCSVResultsForTests writes comparison results in CSV format.
func writeCSVResultsForTests(w *csv.Writer, results []schema.ComparisonResult, fmtFloat func(float64) string) error {
	header := []string{
		"rank",
		"analysis_id",
		"name",
		"method",
		"direction",
		"reference_cm",
		"candidate_cm",
		"absolute_error",
		"relative_error",
		"percent_difference",
		"tolerance_relative",
		"tolerance_absolute",
		"small_displacement",
		"verdict",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for i, r := range results {
		rec := []string{
			strconv.Itoa(i + 1),
			r.AnalysisID,
			r.Name,
			string(r.Method),
			string(r.Direction),
			fmtFloat(r.ReferenceValue),
			fmtFloat(r.CandidateValue),
			fmtFloat(r.AbsoluteError),
			formatRatioPercent(r.RelativeError),
			formatPercent(r.PercentDifference),
			formatRatioPercent(r.Tolerance.Relative),
			fmtFloat(r.Tolerance.Absolute),
			strconv.FormatBool(r.SmallDisplacement),
			contract.GetPlainLabel(r.Passed),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// writeJSONResultsForTests writes comparison results in JSON format.
func writeJSONResultsForTests(w io.Writer, results []schema.ComparisonResult) error {
	// 1. Prepare the data structure for JSON with rank and verdict added.
	// The comparison is a named field: embedding it would promote its
	// MarshalJSON and drop the rank and verdict keys.
	type JSONTestResult struct {
		Rank       int                     `json:"rank"`
		Verdict    string                  `json:"verdict"`
		Comparison schema.ComparisonResult `json:"comparison"`
	}

	output := make([]JSONTestResult, len(results))
	for i, r := range results {
		output[i] = JSONTestResult{
			Rank:       i + 1,
			Verdict:    contract.GetPlainLabel(r.Passed),
			Comparison: r,
		}
	}

	// 2. Use the generic JSON writer
	return writeJSON(w, output)
}
