package core

import (
	"math"

	"github.com/slipcheck/slipcheck/schema"
)

// AnalyzeGroup evaluates the statistical acceptance criteria for the slice
// of comparisons matching a method and direction. The AllDirections selector
// matches rows from both loading directions.
//
// An empty slice returns the zero-valued failing sentinel (sample_count=0,
// passes=false) rather than an error, so callers can report vacuous groups
// uniformly.
func AnalyzeGroup(comparisons []schema.ComparisonResult, method schema.Method, direction schema.Direction, th schema.GroupThresholds) schema.GroupResult {
	var filtered []schema.ComparisonResult
	for _, c := range comparisons {
		if c.Method != method || !direction.Matches(c.Direction) {
			continue
		}
		filtered = append(filtered, c)
	}

	result := schema.GroupResult{
		Method:    method,
		Direction: direction,
	}
	if len(filtered) == 0 {
		return result
	}

	result.SampleCount = len(filtered)

	refs := make([]float64, 0, len(filtered))
	cands := make([]float64, 0, len(filtered))
	var relErrors []float64
	for _, c := range filtered {
		if c.Passed {
			result.PassingCount++
		}
		refs = append(refs, c.ReferenceValue)
		cands = append(cands, c.CandidateValue)
		if !math.IsInf(c.RelativeError, 0) {
			relErrors = append(relErrors, c.RelativeError)
		}
		if c.AbsoluteError > result.MaxAbsoluteError {
			result.MaxAbsoluteError = c.AbsoluteError
		}
	}
	result.FailingCount = result.SampleCount - result.PassingCount
	result.PercentPassing = 100 * float64(result.PassingCount) / float64(result.SampleCount)

	result.Slope, result.Intercept, result.RSquared = linearRegression(refs, cands)
	result.MeanRelativeError, result.StdRelativeError = meanStd(relErrors)

	// Four independent acceptance checks; any single failure fails the group
	if result.PercentPassing < th.PercentPassingMin {
		result.FailedChecks = append(result.FailedChecks, schema.PassRateCheck)
	}
	if result.Slope < th.SlopeMin || result.Slope > th.SlopeMax {
		result.FailedChecks = append(result.FailedChecks, schema.SlopeCheck)
	}
	if result.Intercept < th.InterceptMin || result.Intercept > th.InterceptMax {
		result.FailedChecks = append(result.FailedChecks, schema.InterceptCheck)
	}
	if result.RSquared < th.RSquaredMin {
		result.FailedChecks = append(result.FailedChecks, schema.RSquaredCheck)
	}
	result.Passed = len(result.FailedChecks) == 0

	return result
}

// meanStd returns the mean and population standard deviation of values.
// An empty slice returns 0, 0: a group with no finite relative errors
// reports zero error rather than NaN, which keeps pass/fail outcomes stable
// on edge-case datasets.
func meanStd(values []float64) (mean, std float64) {
	if len(values) == 0 {
		return 0, 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean = sum / float64(len(values))

	var sumSq float64
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	std = math.Sqrt(sumSq / float64(len(values)))
	return mean, std
}
