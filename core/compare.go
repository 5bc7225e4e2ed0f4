package core

import (
	"math"

	"github.com/slipcheck/slipcheck/internal/contract"
	"github.com/slipcheck/slipcheck/schema"
)

// CompareValues checks one candidate displacement against its reference twin
// and returns the full comparison row. It is a pure function of its inputs
// and the tolerance policy; identical inputs always produce identical rows.
func CompareValues(tol *contract.ToleranceConfig, analysisID string, method schema.Method, direction schema.Direction, reference, candidate float64) schema.ComparisonResult {
	absErr := math.Abs(candidate - reference)
	relErr := relativeError(reference, candidate)
	pctDiff := percentDifference(reference, candidate)

	small := IsSmallDisplacement(tol, reference)
	setting := ResolveTolerance(tol, method, reference)

	return schema.ComparisonResult{
		AnalysisID:        analysisID,
		Method:            method,
		Direction:         direction,
		ReferenceValue:    reference,
		CandidateValue:    candidate,
		AbsoluteError:     absErr,
		RelativeError:     relErr,
		PercentDifference: pctDiff,
		Passed:            withinTolerance(setting, small, absErr, relErr),
		Tolerance:         setting,
		SmallDisplacement: small,
	}
}

// CompareRecords compares the candidate record against its reference record
// for both loading directions and fills in display metadata.
func CompareRecords(tol *contract.ToleranceConfig, ref, cand *schema.AnalysisRecord) []schema.ComparisonResult {
	rows := make([]schema.ComparisonResult, 0, len(schema.AllComparisonDirections))
	for _, direction := range schema.AllComparisonDirections {
		row := CompareValues(
			tol,
			ref.AnalysisID,
			ref.Analysis.Method,
			direction,
			ref.Results.Displacement(direction),
			cand.Results.Displacement(direction),
		)
		row.Name = ref.DisplayName()
		rows = append(rows, row)
	}
	return rows
}

// CompareAdditional compares the secondary engine outputs that are present
// in both records. Secondary outputs use a relative-only check.
func CompareAdditional(tol *contract.ToleranceConfig, ref, cand *schema.AnalysisRecord) []schema.AdditionalComparison {
	var rows []schema.AdditionalComparison
	for _, out := range schema.AllAdditionalOutputs {
		refValue, refOK := ref.Results.Additional(out)
		candValue, candOK := cand.Results.Additional(out)
		if !refOK || !candOK {
			continue
		}

		relErr := relativeError(refValue, candValue)
		relTol := AdditionalTolerance(tol, out)
		rows = append(rows, schema.AdditionalComparison{
			AnalysisID:     ref.AnalysisID,
			Output:         out,
			ReferenceValue: refValue,
			CandidateValue: candValue,
			RelativeError:  relErr,
			Tolerance:      relTol,
			Passed:         relErr <= relTol,
		})
	}
	return rows
}

// withinTolerance applies the pass rule. Small displacements pass on the
// absolute check alone; the relative check is skipped entirely regardless of
// the resolved relative field. Everything else must satisfy both checks.
func withinTolerance(setting schema.ToleranceSetting, small bool, absErr, relErr float64) bool {
	absOK := absErr <= setting.Absolute
	if small {
		return absOK
	}
	return absOK && relErr <= setting.Relative
}

// relativeError returns |candidate-reference| / |reference|. A zero
// reference yields +Inf for any nonzero deviation and 0 when the candidate
// is also zero, so division by zero never occurs but deviations still fail.
func relativeError(reference, candidate float64) float64 {
	absErr := math.Abs(candidate - reference)
	if reference == 0 {
		if absErr > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return absErr / math.Abs(reference)
}

// percentDifference returns (candidate-reference)/reference * 100. A zero
// reference yields Inf with the candidate's sign, 0 when both are zero.
func percentDifference(reference, candidate float64) float64 {
	if reference == 0 {
		switch {
		case candidate > 0:
			return math.Inf(1)
		case candidate < 0:
			return math.Inf(-1)
		}
		return 0
	}
	return (candidate - reference) / reference * 100
}
