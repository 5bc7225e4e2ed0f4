package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/slipcheck/slipcheck/internal/contract"
	"github.com/slipcheck/slipcheck/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleComparisons() []schema.ComparisonResult {
	return []schema.ComparisonResult{
		{
			AnalysisID:        "northridge-pacoima",
			Name:              "Northridge 1994 - Pacoima Dam",
			Method:            schema.RigidMethod,
			Direction:         schema.NormalDirection,
			ReferenceValue:    12.48,
			CandidateValue:    12.51,
			AbsoluteError:     0.03,
			RelativeError:     0.0024,
			PercentDifference: 0.24,
			Passed:            true,
			Tolerance:         schema.ToleranceSetting{Relative: 0.05, Absolute: 1.0},
		},
		{
			AnalysisID:        "loma-prieta-corralitos",
			Name:              "Loma Prieta 1989 - Corralitos",
			Method:            schema.DecoupledMethod,
			Direction:         schema.InverseDirection,
			ReferenceValue:    0.0,
			CandidateValue:    0.41,
			AbsoluteError:     0.41,
			RelativeError:     math.Inf(1),
			PercentDifference: math.Inf(1),
			Passed:            false,
			Tolerance:         schema.ToleranceSetting{Relative: 0.05, Absolute: 0.05},
			SmallDisplacement: true,
		},
	}
}

func testConfig() *contract.Config {
	return &contract.Config{
		Precision: 3,
		Workers:   4,
		Output:    schema.TextOut,
		Width:     120,
	}
}

func TestWriteJSONResultsForTests(t *testing.T) {
	var buf bytes.Buffer
	err := writeJSONResultsForTests(&buf, sampleComparisons())
	require.NoError(t, err)

	var rows []map[string]any
	err = json.Unmarshal(buf.Bytes(), &rows)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, float64(1), rows[0]["rank"])
	assert.Equal(t, "PASS", rows[0]["verdict"])
	assert.Equal(t, "FAIL", rows[1]["verdict"])

	first, ok := rows[0]["comparison"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "northridge-pacoima", first["analysis_id"])

	// Zero-reference rows carry the string sentinel instead of +Inf
	second, ok := rows[1]["comparison"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "inf", second["relative_error"])
}

func TestWriteCSVResultsForTests(t *testing.T) {
	fmtFloat, _ := createFormatters(3)
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	err := writeCSVResultsForTests(cw, sampleComparisons(), fmtFloat)
	require.NoError(t, err)
	cw.Flush()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3) // header + 2 rows

	assert.Contains(t, lines[0], "analysis_id")
	assert.Contains(t, lines[0], "relative_error")
	assert.Contains(t, lines[1], "northridge-pacoima")
	assert.Contains(t, lines[1], "PASS")
	assert.Contains(t, lines[2], "inf%")
	assert.Contains(t, lines[2], "true") // small_displacement
	assert.Contains(t, lines[2], "FAIL")
}

func TestWriteTestTable(t *testing.T) {
	cfg := testConfig()
	fmtFloat, _ := createFormatters(cfg.Precision)

	var buf bytes.Buffer
	err := writeTestTable(sampleComparisons(), cfg, fmtFloat, 125*time.Millisecond, &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "northridge-pacoima")
	assert.Contains(t, out, "PASS")
	assert.Contains(t, out, "FAIL")
	assert.Contains(t, out, "Showing 2 comparisons (1 passing, 1 failing)")
	assert.Contains(t, out, "4 workers")
}

func TestWriteTestTableDetailed(t *testing.T) {
	cfg := testConfig()
	cfg.Detailed = true
	fmtFloat, _ := createFormatters(cfg.Precision)

	var buf bytes.Buffer
	err := writeTestTable(sampleComparisons(), cfg, fmtFloat, time.Millisecond, &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "TOL REL")
	assert.Contains(t, out, "yes") // small displacement marker
}

func TestWriteTestResultsMarkdownRejected(t *testing.T) {
	cfg := testConfig()
	cfg.Output = schema.MarkdownOut
	err := WriteTestResults(sampleComparisons(), cfg, time.Millisecond)
	assert.Error(t, err)
}

func TestWriteTestResultsParquetNeedsOutputFile(t *testing.T) {
	cfg := testConfig()
	cfg.Output = schema.ParquetOut
	err := WriteTestResults(sampleComparisons(), cfg, time.Millisecond)
	assert.Error(t, err)
}

func TestGetMaxTableNameWidth(t *testing.T) {
	cfg := testConfig()

	cfg.Width = 200
	assert.Equal(t, 60, GetMaxTableNameWidth(cfg), "Wide terminals are capped")

	cfg.Width = 80
	assert.Equal(t, 15, GetMaxTableNameWidth(cfg), "Narrow terminals get the minimum")
}
