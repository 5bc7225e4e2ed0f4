package core

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/slipcheck/slipcheck/internal/contract"
	"github.com/slipcheck/slipcheck/schema"
)

// ExecuteVerifyGate runs the verification gate for CI/CD. It compares the
// candidate results against the reference, checks every method/direction
// group against the acceptance thresholds, and returns a non-zero exit code
// if any group fails.
func ExecuteVerifyGate(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()

	if !shouldSuppressHeader(ctx) {
		logVerificationHeader(cfg)
	}

	builder := NewVerifyResultBuilder(cfg)

	if _, err := builder.LoadDatasets(); err != nil {
		return err
	}
	if _, err := builder.SelectRecords(); err != nil {
		return err
	}
	builder.RunComparisons()
	builder.Aggregate()
	builder.BuildResult()

	result := builder.GetResult()
	result.Duration = time.Since(start)
	printVerifyResult(result)

	if !result.Passed {
		fmt.Printf("%d group(s) outside acceptance thresholds\n", len(result.FailedGroups))
		os.Exit(1)
	}
	return nil
}

// printVerifyResult prints the gate verdict in a concise format suitable for
// CI/CD logs.
func printVerifyResult(result *schema.VerifyResult) {
	printVerifyHeader(result)

	if result.Passed {
		printVerifySuccess(result)
	} else {
		printVerifyFailure(result)
	}
}

// printVerifyHeader prints the common header information for gate results.
func printVerifyHeader(result *schema.VerifyResult) {
	fmt.Println("Verification Gate Results:")

	th := result.Summary.Thresholds

	// Define labels and values for dynamic padding
	labels := []string{"Reference:", "Candidate:", "Thresholds:"}
	values := []any{
		result.ReferencePath,
		result.CandidatePath,
		fmt.Sprintf("pass_rate>=%.1f%%, slope=[%.2f, %.2f], intercept=[%.2f, %.2f] cm, r2>=%.2f",
			th.PercentPassingMin,
			th.SlopeMin, th.SlopeMax,
			th.InterceptMin, th.InterceptMax,
			th.RSquaredMin),
	}

	// Find the longest label for consistent padding
	maxLabelLen := 0
	for _, label := range labels {
		if len(label) > maxLabelLen {
			maxLabelLen = len(label)
		}
	}

	// Print each label-value pair with consistent padding
	for i, label := range labels {
		fmt.Printf("  %-*s %v\n", maxLabelLen+1, label, values[i])
	}
	fmt.Println()

	fmt.Printf("Checked %d comparisons across %d groups in %v\n\n",
		result.Summary.TotalTests, len(result.Summary.Groups), result.Duration)
}

// printVerifySuccess prints the success case output.
func printVerifySuccess(result *schema.VerifyResult) {
	fmt.Printf("✅ All groups passed verification\n\n")
	fmt.Println("Group statistics observed:")

	for _, group := range result.Summary.Groups {
		fmt.Printf("  %s: pass=%.1f%%, slope=%.4f, intercept=%.4f, r2=%.4f (%d samples)\n",
			schema.GroupLabel(group.Method, group.Direction),
			group.PercentPassing, group.Slope, group.Intercept, group.RSquared,
			group.SampleCount)
	}
}

// printVerifyFailure prints the failure case output.
func printVerifyFailure(result *schema.VerifyResult) {
	fmt.Printf("❌ Verification failed: %d group(s) outside thresholds, %d individual failure(s)\n\n",
		len(result.FailedGroups), len(result.FailedTests))

	for _, group := range result.FailedGroups {
		fmt.Printf("Group: %s (%d samples)\n",
			schema.GroupLabel(group.Method, group.Direction), group.SampleCount)
		for _, check := range group.FailedChecks {
			switch check {
			case schema.PassRateCheck:
				fmt.Printf("  - pass rate %.1f%% below minimum\n", group.PercentPassing)
			case schema.SlopeCheck:
				fmt.Printf("  - regression slope %.4f out of bounds\n", group.Slope)
			case schema.InterceptCheck:
				fmt.Printf("  - regression intercept %.4f cm out of bounds\n", group.Intercept)
			case schema.RSquaredCheck:
				fmt.Printf("  - r² %.4f below minimum\n", group.RSquared)
			}
		}
		fmt.Println()
	}

	printWorstFailures(result.FailedTests)
}

// printWorstFailures lists the individual failures with the largest absolute
// error, capped so gate logs stay readable.
func printWorstFailures(failed []schema.ComparisonResult) {
	if len(failed) == 0 {
		return
	}

	sorted := make([]schema.ComparisonResult, len(failed))
	copy(sorted, failed)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].AbsoluteError > sorted[j].AbsoluteError
	})

	fmt.Printf("Worst individual failures:\n")
	maxToShow := 5
	shown := 0
	for _, f := range sorted {
		if shown >= maxToShow {
			remaining := len(sorted) - shown
			if remaining > 0 {
				fmt.Printf("  ... and %d more\n", remaining)
			}
			break
		}
		fmt.Printf("  - %s %s/%s: reference %.3f cm, candidate %.3f cm (err %.3f cm)\n",
			f.AnalysisID, f.Method, f.Direction,
			f.ReferenceValue, f.CandidateValue, f.AbsoluteError)
		shown++
	}
	fmt.Println()
}
