// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/slipcheck/slipcheck/internal/contract"
	"github.com/slipcheck/slipcheck/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteTests prints individual comparison results using the configured output format.
func (ow *OutWriter) WriteTests(results []schema.ComparisonResult, cfg *contract.Config, duration time.Duration) error {
	return WriteTestResults(results, cfg, duration)
}

// WriteGroups prints group statistics using the configured output format.
func (ow *OutWriter) WriteGroups(groups []schema.GroupResult, thresholds schema.GroupThresholds, cfg *contract.Config, duration time.Duration) error {
	return WriteGroupResults(groups, thresholds, cfg, duration)
}

// WriteReport prints the full verification report using the configured output format.
func (ow *OutWriter) WriteReport(output *schema.VerificationOutput, cfg *contract.Config) error {
	return WriteVerificationReport(output, cfg)
}
