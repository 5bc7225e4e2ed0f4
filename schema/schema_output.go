package schema

// VerificationOutput carries everything one verification pass produced.
// The summary is derived from the comparison rows exactly once; renderers
// format these values without recomputing them.
type VerificationOutput struct {
	Comparisons   []ComparisonResult     `json:"comparisons"`           // Individual displacement rows
	Additional    []AdditionalComparison `json:"additional,omitempty"`  // Secondary output rows
	Summary       *Summary               `json:"summary"`               // Aggregated statistics
	SkippedIDs    []string               `json:"skipped_ids,omitempty"` // Reference analyses without a candidate twin
	ReferencePath string                 `json:"reference_path"`        // Reference results file
	CandidatePath string                 `json:"candidate_path"`        // Candidate results file
}
