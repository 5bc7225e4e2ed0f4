package core

import (
	"math"

	"github.com/slipcheck/slipcheck/schema"
)

// BuildSummary rolls the full comparison collection up into totals,
// per-method summaries and group statistics. Groups with no samples are
// suppressed so a method that never ran a direction does not clutter the
// report. Methods appear in canonical order (rigid, decoupled, coupled)
// with the direction groups nested as normal, inverse, All.
func BuildSummary(comparisons []schema.ComparisonResult, th schema.GroupThresholds) *schema.Summary {
	summary := &schema.Summary{
		TotalTests:      len(comparisons),
		MethodSummaries: make(map[schema.Method]schema.MethodSummary),
		Thresholds:      th,
	}

	for _, c := range comparisons {
		if c.Passed {
			summary.PassingTests++
		}
	}
	summary.FailingTests = summary.TotalTests - summary.PassingTests
	if summary.TotalTests > 0 {
		summary.OverallPassRate = 100 * float64(summary.PassingTests) / float64(summary.TotalTests)
	}

	for _, method := range schema.AllMethods {
		ms, present := buildMethodSummary(comparisons, method)
		if !present {
			continue
		}
		summary.MethodSummaries[method] = ms

		for _, direction := range schema.AllGroupDirections {
			group := AnalyzeGroup(comparisons, method, direction, th)
			if group.SampleCount == 0 {
				continue
			}
			summary.Groups = append(summary.Groups, group)
		}
	}

	return summary
}

// buildMethodSummary computes the quick per-method triage stats, independent
// of the group regression statistics. The second return value reports
// whether the method had any comparisons at all.
func buildMethodSummary(comparisons []schema.ComparisonResult, method schema.Method) (schema.MethodSummary, bool) {
	var ms schema.MethodSummary
	var absSum float64
	var relSum float64
	var relCount int

	for _, c := range comparisons {
		if c.Method != method {
			continue
		}
		ms.TotalTests++
		if c.Passed {
			ms.PassingTests++
		}
		absSum += c.AbsoluteError
		if !math.IsInf(c.RelativeError, 0) {
			relSum += c.RelativeError
			relCount++
		}
	}

	if ms.TotalTests == 0 {
		return ms, false
	}

	ms.PassRate = 100 * float64(ms.PassingTests) / float64(ms.TotalTests)
	ms.MeanAbsoluteError = absSum / float64(ms.TotalTests)
	if relCount > 0 {
		ms.MeanRelativeError = relSum / float64(relCount)
	}
	return ms, true
}
