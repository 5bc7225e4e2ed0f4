package core

import (
	"fmt"
	"sync"
	"time"

	"github.com/slipcheck/slipcheck/internal/contract"
	"github.com/slipcheck/slipcheck/internal/dataset"
	"github.com/slipcheck/slipcheck/schema"
)

// VerifyResultBuilder builds the verification output using a builder pattern.
type VerifyResultBuilder struct {
	cfg           *contract.Config
	reference     *schema.Dataset
	candidate     *schema.Dataset
	candidatePath string
	pairs         []dataset.RecordPair
	skipped       []string
	comparisons   []schema.ComparisonResult
	additional    []schema.AdditionalComparison
	summary       *schema.Summary
	result        *schema.VerifyResult
}

// NewVerifyResultBuilder creates a new builder for verification results.
func NewVerifyResultBuilder(cfg *contract.Config) *VerifyResultBuilder {
	return &VerifyResultBuilder{cfg: cfg}
}

// LoadDatasets reads the reference and candidate results files. The
// candidate path falls back to the newest results file in the results
// directory when not given explicitly.
func (b *VerifyResultBuilder) LoadDatasets() (*VerifyResultBuilder, error) {
	if b.cfg.ReferencePath == "" {
		return nil, fmt.Errorf("a reference results file is required. Example: slipcheck verify results_slammer.json.gz")
	}

	reference, err := dataset.Load(b.cfg.ReferencePath)
	if err != nil {
		return nil, fmt.Errorf("loading reference results: %w", err)
	}
	b.reference = reference

	b.candidatePath = b.cfg.CandidatePath
	if b.candidatePath == "" {
		b.candidatePath, err = dataset.DiscoverCandidate(b.cfg.ResultsDir, b.cfg.ReferencePath)
		if err != nil {
			return nil, err
		}
	}

	candidate, err := dataset.Load(b.candidatePath)
	if err != nil {
		return nil, fmt.Errorf("loading candidate results: %w", err)
	}
	b.candidate = candidate

	return b, nil
}

// SelectRecords applies the record filters and joins reference records to
// their candidate twins. Reference records without a twin are skipped with
// a warning rather than failing the whole run.
func (b *VerifyResultBuilder) SelectRecords() (*VerifyResultBuilder, error) {
	refs := dataset.ApplyFilters(b.reference, b.cfg)
	if len(refs) == 0 {
		return nil, fmt.Errorf("no reference analyses match the current filters")
	}

	b.pairs, b.skipped = dataset.MatchPairs(refs, b.candidate)
	for _, id := range b.skipped {
		contract.LogWarn(fmt.Sprintf("No candidate result for analysis %s, skipping", id), nil)
	}
	if len(b.pairs) == 0 {
		return nil, fmt.Errorf("no analyses appear in both result sets. Verify %s matches the reference dataset", b.candidatePath)
	}

	return b, nil
}

// RunComparisons compares every matched pair across a worker pool. Workers
// write to unique indices, so the output order stays deterministic no matter
// how the pool schedules.
func (b *VerifyResultBuilder) RunComparisons() *VerifyResultBuilder {
	pairComparisons := make([][]schema.ComparisonResult, len(b.pairs))
	pairAdditional := make([][]schema.AdditionalComparison, len(b.pairs))

	pairCh := make(chan int, len(b.pairs))
	var wg sync.WaitGroup
	for range b.cfg.Workers {
		wg.Go(func() {
			for idx := range pairCh {
				pair := b.pairs[idx]
				pairComparisons[idx] = CompareRecords(&b.cfg.Tolerances, pair.Reference, pair.Candidate)
				pairAdditional[idx] = CompareAdditional(&b.cfg.Tolerances, pair.Reference, pair.Candidate)
			}
		})
	}

	for idx := range b.pairs {
		pairCh <- idx
	}
	close(pairCh)
	wg.Wait()

	b.comparisons = make([]schema.ComparisonResult, 0, 2*len(b.pairs))
	for _, rows := range pairComparisons {
		b.comparisons = append(b.comparisons, rows...)
	}
	b.additional = nil
	for _, rows := range pairAdditional {
		b.additional = append(b.additional, rows...)
	}

	return b
}

// Aggregate builds the summary from the comparison rows and stamps the
// dataset provenance onto it.
func (b *VerifyResultBuilder) Aggregate() *VerifyResultBuilder {
	summary := BuildSummary(b.comparisons, b.cfg.Thresholds)
	summary.GeneratedAt = time.Now()
	summary.ReferenceProgram = b.reference.Metadata.SourceProgram
	summary.CandidateProgram = b.candidate.Metadata.SourceProgram
	summary.CandidateVersion = b.candidate.Metadata.SourceVersion
	b.summary = summary
	return b
}

// BuildResult constructs the final gate verdict from the summary.
func (b *VerifyResultBuilder) BuildResult() *VerifyResultBuilder {
	result := &schema.VerifyResult{
		Summary:       b.summary,
		ReferencePath: b.cfg.ReferencePath,
		CandidatePath: b.candidatePath,
	}

	for _, group := range b.summary.Groups {
		if !group.Passed {
			result.FailedGroups = append(result.FailedGroups, group)
		}
	}
	for _, c := range b.comparisons {
		if !c.Passed {
			result.FailedTests = append(result.FailedTests, c)
		}
	}

	// The gate demands at least one populated group with every group passing
	result.Passed = len(b.summary.Groups) > 0 && len(result.FailedGroups) == 0

	b.result = result
	return b
}

// GetResult returns the built VerifyResult.
func (b *VerifyResultBuilder) GetResult() *schema.VerifyResult {
	return b.result
}

// GetOutput returns the full verification output for rendering.
func (b *VerifyResultBuilder) GetOutput() *schema.VerificationOutput {
	return &schema.VerificationOutput{
		Comparisons:   b.comparisons,
		Additional:    b.additional,
		Summary:       b.summary,
		SkippedIDs:    b.skipped,
		ReferencePath: b.cfg.ReferencePath,
		CandidatePath: b.candidatePath,
	}
}
