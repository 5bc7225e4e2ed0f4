package schema

// ToleranceSetting is the resolved tolerance pair applied to one comparison.
type ToleranceSetting struct {
	Relative float64 `json:"relative"` // Relative error bound; +Inf disables the relative check
	Absolute float64 `json:"absolute"` // Absolute error bound in cm
}

// ComparisonResult holds one reference/candidate displacement comparison.
type ComparisonResult struct {
	AnalysisID        string           `json:"analysis_id"`        // Source record identifier
	Name              string           `json:"name"`               // Earthquake and station label
	Method            Method           `json:"method"`             // Analysis method of the record
	Direction         Direction        `json:"direction"`          // normal or inverse polarity
	ReferenceValue    float64          `json:"reference_value"`    // Legacy displacement in cm
	CandidateValue    float64          `json:"candidate_value"`    // Candidate displacement in cm
	AbsoluteError     float64          `json:"absolute_error"`     // |candidate - reference|
	RelativeError     float64          `json:"relative_error"`     // AbsoluteError / |reference|; +Inf when reference is 0
	PercentDifference float64          `json:"percent_difference"` // Signed; ±Inf when reference is 0
	Passed            bool             `json:"passed"`
	Tolerance         ToleranceSetting `json:"tolerance"`          // Tolerance applied to this comparison
	SmallDisplacement bool             `json:"small_displacement"` // True when the absolute-only override applied
}

// AdditionalComparison holds a relative-only comparison of a secondary output.
type AdditionalComparison struct {
	AnalysisID     string           `json:"analysis_id"`
	Output         AdditionalOutput `json:"output"`
	ReferenceValue float64          `json:"reference_value"`
	CandidateValue float64          `json:"candidate_value"`
	RelativeError  float64          `json:"relative_error"` // +Inf when reference is 0 and candidate is not
	Tolerance      float64          `json:"tolerance"`
	Passed         bool             `json:"passed"`
}

// GroupThresholds are the acceptance bounds a group verdict is judged against.
type GroupThresholds struct {
	PercentPassingMin float64 `json:"percent_passing_min"` // Minimum individual pass rate (percent)
	SlopeMin          float64 `json:"slope_min"`           // Regression slope lower bound
	SlopeMax          float64 `json:"slope_max"`           // Regression slope upper bound
	InterceptMin      float64 `json:"intercept_min"`       // Regression intercept lower bound (cm)
	InterceptMax      float64 `json:"intercept_max"`       // Regression intercept upper bound (cm)
	RSquaredMin       float64 `json:"r_squared_min"`       // Coefficient of determination lower bound
}

// GroupResult holds the statistical verdict for one method/direction group.
type GroupResult struct {
	Method            Method       `json:"method"`
	Direction         Direction    `json:"direction"`
	SampleCount       int          `json:"sample_count"`
	PassingCount      int          `json:"passing_count"`
	FailingCount      int          `json:"failing_count"`
	PercentPassing    float64      `json:"percent_passing"`
	Slope             float64      `json:"slope"`               // OLS slope of candidate on reference
	Intercept         float64      `json:"intercept"`           // OLS intercept in cm
	RSquared          float64      `json:"r_squared"`           // Coefficient of determination
	MeanRelativeError float64      `json:"mean_relative_error"` // Mean over finite relative errors only
	StdRelativeError  float64      `json:"std_relative_error"`  // Population std over finite relative errors
	MaxAbsoluteError  float64      `json:"max_absolute_error"`
	Passed            bool         `json:"passed"`
	FailedChecks      []GroupCheck `json:"failed_checks,omitempty"` // Acceptance checks that did not hold
}

// FailedCheck reports whether a named acceptance check failed for this group.
func (g *GroupResult) FailedCheck(check GroupCheck) bool {
	for _, c := range g.FailedChecks {
		if c == check {
			return true
		}
	}
	return false
}
