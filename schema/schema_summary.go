package schema

import "time"

// MethodSummary aggregates individual comparisons for one method.
type MethodSummary struct {
	TotalTests        int     `json:"total_tests"`
	PassingTests      int     `json:"passing_tests"`
	PassRate          float64 `json:"pass_rate"`           // Percent of tests passing
	MeanAbsoluteError float64 `json:"mean_absolute_error"` // cm, over all comparisons
	MeanRelativeError float64 `json:"mean_relative_error"` // Over finite relative errors only
}

// Summary is the top-level verification outcome. It is a pure projection of
// the comparison results; renderers must not recompute any of its numbers.
type Summary struct {
	GeneratedAt      time.Time                `json:"generated_at"`
	ReferenceProgram string                   `json:"reference_program"` // Program that produced the reference dataset
	CandidateProgram string                   `json:"candidate_program"` // Program under verification
	CandidateVersion string                   `json:"candidate_version"`
	TotalTests       int                      `json:"total_tests"`
	PassingTests     int                      `json:"passing_tests"`
	FailingTests     int                      `json:"failing_tests"` // TotalTests - PassingTests
	OverallPassRate  float64                  `json:"overall_pass_rate"`
	MethodSummaries  map[Method]MethodSummary `json:"method_summaries"`
	Groups           []GroupResult            `json:"groups"`     // Non-empty groups in canonical order
	Thresholds       GroupThresholds          `json:"thresholds"` // Acceptance bounds the groups were judged against
}

// MethodsPresent returns the methods with at least one comparison, in
// canonical order.
func (s *Summary) MethodsPresent() []Method {
	var methods []Method
	for _, m := range AllMethods {
		if _, ok := s.MethodSummaries[m]; ok {
			methods = append(methods, m)
		}
	}
	return methods
}

// GroupFor returns the group result for a method/direction pair, or nil when
// the group was suppressed for having no samples.
func (s *Summary) GroupFor(method Method, direction Direction) *GroupResult {
	for i := range s.Groups {
		if s.Groups[i].Method == method && s.Groups[i].Direction == direction {
			return &s.Groups[i]
		}
	}
	return nil
}
