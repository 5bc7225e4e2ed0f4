package schema

import "time"

// VerifyResult holds the outcome of a verification gate run.
type VerifyResult struct {
	Passed        bool
	Summary       *Summary
	FailedGroups  []GroupResult
	FailedTests   []ComparisonResult
	ReferencePath string
	CandidatePath string
	Duration      time.Duration
}

// RunOutcome counts what happened during an engine run over a dataset.
type RunOutcome struct {
	Completed int // Records analyzed and stored this run
	Cached    int // Records skipped due to a fresh cache entry
	Failed    int // Records the engine could not analyze
}

// Total returns the number of records visited.
func (o RunOutcome) Total() int {
	return o.Completed + o.Cached + o.Failed
}
