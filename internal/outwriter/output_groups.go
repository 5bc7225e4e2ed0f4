package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/slipcheck/slipcheck/internal/contract"
	"github.com/slipcheck/slipcheck/internal/parquet"
	"github.com/slipcheck/slipcheck/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteGroupResults outputs group statistics, dispatching based on the output
// format configured.
func WriteGroupResults(groups []schema.GroupResult, thresholds schema.GroupThresholds, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeGroupJSONResults(groups, thresholds, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeGroupCSVResults(groups, cfg); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return errors.New("--output-file is required for parquet output")
		}
		rows := parquet.ConvertGroupResults(groups)
		if err := parquet.WriteGroupStatsParquet(rows, cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing parquet output: %w", err)
		}
		fmt.Fprintf(os.Stderr, "💾 Wrote %d group rows to %s\n", len(rows), cfg.OutputFile)
	case schema.MarkdownOut:
		return errors.New("markdown output is only supported by the report command")
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeGroupTable(groups, thresholds, cfg, duration, w)
		}, "Wrote table")
	}
	return nil
}

// writeGroupJSONResults handles opening the file and calling the JSON writer.
func writeGroupJSONResults(groups []schema.GroupResult, thresholds schema.GroupThresholds, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		payload := struct {
			Groups     []schema.GroupResult   `json:"groups"`
			Thresholds schema.GroupThresholds `json:"thresholds"`
		}{Groups: groups, Thresholds: thresholds}
		return writeJSON(w, payload)
	}, "Wrote JSON")
}

// writeGroupCSVResults handles opening the file and calling the CSV writer.
func writeGroupCSVResults(groups []schema.GroupResult, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		header := []string{
			"method",
			"direction",
			"sample_count",
			"passing_count",
			"failing_count",
			"percent_passing",
			"slope",
			"intercept",
			"r_squared",
			"mean_relative_error",
			"std_relative_error",
			"max_absolute_error",
			"failed_checks",
			"verdict",
		}
		return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
			for _, g := range groups {
				rec := []string{
					string(g.Method),
					string(g.Direction),
					strconv.Itoa(g.SampleCount),
					strconv.Itoa(g.PassingCount),
					strconv.Itoa(g.FailingCount),
					formatPercent(g.PercentPassing),
					fmt.Sprintf("%.4f", g.Slope),
					fmt.Sprintf("%.4f", g.Intercept),
					fmt.Sprintf("%.4f", g.RSquared),
					formatRatioPercent(g.MeanRelativeError),
					formatRatioPercent(g.StdRelativeError),
					fmt.Sprintf("%.4f", g.MaxAbsoluteError),
					joinChecks(g.FailedChecks),
					contract.GetPlainLabel(g.Passed),
				}
				if err := cw.Write(rec); err != nil {
					return err
				}
			}
			return nil
		})
	}, "Wrote CSV")
}

// writeGroupTable generates and writes the human-readable table.
func writeGroupTable(groups []schema.GroupResult, thresholds schema.GroupThresholds, cfg *contract.Config, duration time.Duration, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)

	headers := []string{"Method", "Dir", "Samples", "Pass Rate", "Slope", "Intercept", "R²", "Mean Rel Err", "Verdict"}
	if cfg.Detailed {
		headers = append(headers, "Failed Checks")
	}
	table.Header(headers)

	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	verdict := contract.GetPlainLabel
	if cfg.UseColors {
		verdict = contract.GetColorLabel
	}
	var data [][]string
	passing := 0
	for _, g := range groups {
		if g.Passed {
			passing++
		}
		row := []string{
			string(g.Method),
			string(g.Direction),
			strconv.Itoa(g.SampleCount),
			formatPercent(g.PercentPassing),
			fmt.Sprintf("%.4f", g.Slope),
			fmt.Sprintf("%.4f", g.Intercept),
			fmt.Sprintf("%.4f", g.RSquared),
			formatRatioPercent(g.MeanRelativeError),
			verdict(g.Passed),
		}
		if cfg.Detailed {
			row = append(row, joinChecks(g.FailedChecks))
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(writer, "Showing %d groups (%d passing, %d failing)\n", len(groups), passing, len(groups)-passing); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Thresholds: pass rate >= %.1f%%, slope in [%.2f, %.2f], intercept in [%.1f, %.1f] cm, R² >= %.2f\n",
		thresholds.PercentPassingMin,
		thresholds.SlopeMin, thresholds.SlopeMax,
		thresholds.InterceptMin, thresholds.InterceptMax,
		thresholds.RSquaredMin); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Aggregation completed in %v\n", duration); err != nil {
		return err
	}
	return nil
}

// joinChecks renders failed check names as a comma-separated list.
func joinChecks(checks []schema.GroupCheck) string {
	if len(checks) == 0 {
		return ""
	}
	names := make([]string, len(checks))
	for i, c := range checks {
		names[i] = string(c)
	}
	return strings.Join(names, ",")
}
