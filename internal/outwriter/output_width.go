// Package outwriter has output and writer logic.
package outwriter

import (
	"os"

	"github.com/slipcheck/slipcheck/internal/contract"
	"golang.org/x/term"
)

// GetMaxTableNameWidth calculates the maximum width for test identifiers in
// table output based on terminal width and table configuration.
func GetMaxTableNameWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		// Get terminal width
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			// Fallback to conservative default if terminal size can't be detected
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Reserve space for fixed columns with table formatting
	baseWidth := 45 // Rank + Method + Dir + Verdict with borders/padding

	// Numeric columns: reference, candidate, absolute and relative error
	baseWidth += 40

	// Tolerance detail columns
	if cfg.Detailed {
		baseWidth += 25
	}

	// Reserve space for table borders, separators, and padding
	baseWidth += 10

	// Calculate available space for the identifier
	available := termWidth - baseWidth
	if available < 15 {
		// Minimum reasonable identifier width
		return 15
	}
	if available > 60 {
		// Maximum width to prevent overly long identifiers
		return 60
	}
	return available
}
