package outwriter

import (
	"fmt"
	"io"
	"strings"

	"github.com/slipcheck/slipcheck/internal/contract"
	"github.com/slipcheck/slipcheck/schema"
)

// Pass/fail markers for markdown output.
const (
	passMark = "✅"
	failMark = "❌"
)

func mark(passed bool) string {
	if passed {
		return passMark
	}
	return failMark
}

// writeMarkdownReport renders the markdown verification report with per-check
// pass/fail markers, matching the layout of the published report files.
func writeMarkdownReport(w io.Writer, output *schema.VerificationOutput, cfg *contract.Config) error {
	summary := output.Summary
	th := summary.Thresholds

	var b strings.Builder
	b.WriteString("# Verification Report\n")
	fmt.Fprintf(&b, "%s version: %s\n", summary.CandidateProgram, summary.CandidateVersion)
	fmt.Fprintf(&b, "Reference program: %s\n", summary.ReferenceProgram)
	b.WriteString("\n")

	b.WriteString("## Verification Results\n")
	for _, method := range summary.MethodsPresent() {
		fmt.Fprintf(&b, "\n### %s Method:\n", strings.ToUpper(string(method)))
		writeMarkdownDirectionLine(&b, "Normal", summary.GroupFor(method, schema.NormalDirection))
		writeMarkdownDirectionLine(&b, "Inverse", summary.GroupFor(method, schema.InverseDirection))
		if combined := summary.GroupFor(method, schema.AllDirections); combined != nil {
			rateOK := !combined.FailedCheck(schema.PassRateCheck)
			fmt.Fprintf(&b, "- Combined: %.1f%% %s individual pass rate\n", combined.PercentPassing, mark(rateOK))
		}
	}
	b.WriteString("\n")

	b.WriteString("## Verification Tolerances\n")
	b.WriteString("\n### Linear regression tolerance\n")
	fmt.Fprintf(&b, "  - R² >= %.2f\n", th.RSquaredMin)
	fmt.Fprintf(&b, "  - slope = 1 ± %.2f\n", 1-th.SlopeMin)
	fmt.Fprintf(&b, "  - intercept = 0 ± %.1f cm\n", th.InterceptMax)

	tol := cfg.Tolerances
	b.WriteString("\n### Individual test tolerance\n")
	b.WriteString("The individual test tolerances are enforced in aggregate by the group pass rate tolerance.\n")
	b.WriteString("\n")
	fmt.Fprintf(&b, "Expected values > %g cm:\n", tol.SmallDisplacementThreshold)
	fmt.Fprintf(&b, "  - Relative error <= %.0f%%\n", tol.DefaultRelative*100)
	fmt.Fprintf(&b, "  - Absolute error <= %g cm\n", tol.DefaultAbsolute)
	b.WriteString("\n")
	fmt.Fprintf(&b, "Expected values <= %g cm:\n", tol.SmallDisplacementThreshold)
	fmt.Fprintf(&b, "  - Absolute error <= %.2f cm\n", tol.SmallDisplacementAbsolute)

	b.WriteString("\n### Group pass rate tolerance\n")
	fmt.Fprintf(&b, "- Group pass rate >= %.0f%%\n", th.PercentPassingMin)

	_, err := io.WriteString(w, b.String())
	return err
}

// writeMarkdownDirectionLine renders one polarity line of a method section.
// Each regression statistic carries its own pass/fail marker, read from the
// checks the aggregator already judged.
func writeMarkdownDirectionLine(b *strings.Builder, label string, group *schema.GroupResult) {
	if group == nil {
		fmt.Fprintf(b, "- %s: no samples\n", label)
		return
	}

	fmt.Fprintf(b, "- %s: R² = %.6f %s, slope = %.6f %s, intercept = %.3f %s\n",
		label,
		group.RSquared, mark(!group.FailedCheck(schema.RSquaredCheck)),
		group.Slope, mark(!group.FailedCheck(schema.SlopeCheck)),
		group.Intercept, mark(!group.FailedCheck(schema.InterceptCheck)))
}
