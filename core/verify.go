package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/slipcheck/slipcheck/internal/contract"
	"github.com/slipcheck/slipcheck/schema"
)

// runVerificationCore performs the common Load, Match, Compare and Aggregate
// steps shared by every verification entry point.
func runVerificationCore(ctx context.Context, cfg *contract.Config) (*schema.VerificationOutput, error) {
	// The banner only belongs on human-readable output; machine formats on
	// stdout must stay parseable.
	if !shouldSuppressHeader(ctx) && cfg.Output == schema.TextOut {
		logVerificationHeader(cfg)
	}

	builder := NewVerifyResultBuilder(cfg)

	// --- 1. Dataset Loading Phase ---
	if _, err := builder.LoadDatasets(); err != nil {
		return nil, err
	}

	// --- 2. Record Matching and Filtering ---
	if _, err := builder.SelectRecords(); err != nil {
		return nil, err
	}

	// --- 3. Comparison Phase ---
	builder.RunComparisons()

	// --- 4. Aggregation Phase ---
	builder.Aggregate()

	return builder.GetOutput(), nil
}

// logVerificationHeader prints the verification banner with the active
// filters, so saved output records what was actually compared.
func logVerificationHeader(cfg *contract.Config) {
	fmt.Printf("Verifying candidate displacements against %s\n", cfg.ReferencePath)
	if cfg.CandidatePath != "" {
		fmt.Printf("  Candidate: %s\n", cfg.CandidatePath)
	}
	if len(cfg.Methods) > 0 {
		names := make([]string, 0, len(cfg.Methods))
		for _, m := range cfg.Methods {
			names = append(names, string(m))
		}
		fmt.Printf("  Methods: %s\n", strings.Join(names, ", "))
	}
	if len(cfg.Earthquakes) > 0 {
		fmt.Printf("  Earthquakes: %s\n", strings.Join(cfg.Earthquakes, ", "))
	}
	if cfg.MaxAnalyses > 0 {
		fmt.Printf("  Max analyses: %d\n", cfg.MaxAnalyses)
	}
	fmt.Println()
}
