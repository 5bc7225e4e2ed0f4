package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slipcheck/slipcheck/schema"
)

func summaryComparisons() []schema.ComparisonResult {
	rows := groupComparisons() // 8 passing rigid rows

	// Coupled rows exist only for the normal direction, one of them failing.
	for i, ref := range []float64{3, 5, 7} {
		rows = append(rows, schema.ComparisonResult{
			Method:         schema.CoupledMethod,
			Direction:      schema.NormalDirection,
			ReferenceValue: ref,
			CandidateValue: ref + 0.1,
			AbsoluteError:  0.1,
			RelativeError:  0.1 / ref,
			Passed:         i != 2,
		})
	}
	return rows
}

func TestBuildSummaryTotals(t *testing.T) {
	summary := BuildSummary(summaryComparisons(), schema.GetDefaultGroupThresholds())

	assert.Equal(t, 11, summary.TotalTests)
	assert.Equal(t, 10, summary.PassingTests)
	assert.Equal(t, 1, summary.FailingTests)
	assert.InDelta(t, 100*10.0/11.0, summary.OverallPassRate, 1e-9)
}

func TestBuildSummaryMethodSummaries(t *testing.T) {
	summary := BuildSummary(summaryComparisons(), schema.GetDefaultGroupThresholds())

	require.Contains(t, summary.MethodSummaries, schema.RigidMethod)
	require.Contains(t, summary.MethodSummaries, schema.CoupledMethod)
	assert.NotContains(t, summary.MethodSummaries, schema.DecoupledMethod)

	rigid := summary.MethodSummaries[schema.RigidMethod]
	assert.Equal(t, 8, rigid.TotalTests)
	assert.Equal(t, 100.0, rigid.PassRate)
	assert.Zero(t, rigid.MeanAbsoluteError)

	coupled := summary.MethodSummaries[schema.CoupledMethod]
	assert.Equal(t, 3, coupled.TotalTests)
	assert.Equal(t, 2, coupled.PassingTests)
	assert.InDelta(t, 0.1, coupled.MeanAbsoluteError, 1e-12)
}

func TestBuildSummaryGroupOrderAndSuppression(t *testing.T) {
	summary := BuildSummary(summaryComparisons(), schema.GetDefaultGroupThresholds())

	// Rigid has rows in both directions so all three groups appear; coupled
	// only ran the normal direction, so inverse is suppressed and the All
	// group collapses to the same rows as normal.
	var got []string
	for _, g := range summary.Groups {
		got = append(got, schema.GroupLabel(g.Method, g.Direction))
	}
	want := []string{
		schema.GroupLabel(schema.RigidMethod, schema.NormalDirection),
		schema.GroupLabel(schema.RigidMethod, schema.InverseDirection),
		schema.GroupLabel(schema.RigidMethod, schema.AllDirections),
		schema.GroupLabel(schema.CoupledMethod, schema.NormalDirection),
		schema.GroupLabel(schema.CoupledMethod, schema.AllDirections),
	}
	assert.Equal(t, want, got)
}

func TestBuildSummaryEmpty(t *testing.T) {
	summary := BuildSummary(nil, schema.GetDefaultGroupThresholds())

	assert.Zero(t, summary.TotalTests)
	assert.Zero(t, summary.OverallPassRate)
	assert.Empty(t, summary.Groups)
	assert.Empty(t, summary.MethodSummaries)
}
