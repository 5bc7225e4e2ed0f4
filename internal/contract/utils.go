package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// Verdict label constants.
const (
	PassValue = "PASS" // Comparison within tolerance
	FailValue = "FAIL" // Comparison outside tolerance
	SkipValue = "SKIP" // Comparison not performed
)

// Color variables for console output.
var (
	PassColor = color.New(color.FgGreen, color.Bold) // passColor represents agreement with the reference.
	FailColor = color.New(color.FgRed, color.Bold)   // failColor represents a regression signal.
	SkipColor = color.New(color.FgYellow)            // skipColor represents missing or unusable data, not bold.
)

// GetPlainLabel returns a plain text verdict label for a comparison outcome.
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainLabel(passed bool) string {
	if passed {
		return PassValue
	}
	return FailValue
}

// GetColorLabel returns a colored verdict label for console output (table).
// It uses GetPlainLabel to determine the string, and then applies the appropriate color.
func GetColorLabel(passed bool) string {
	text := GetPlainLabel(passed)

	if text == PassValue {
		return PassColor.Sprint(text)
	}
	return FailColor.Sprint(text)
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path and format type. It falls back to os.Stdout on error.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for engine result caching.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".slipcheck_cache.db"
	}
	return filepath.Join(homeDir, ".slipcheck_cache.db")
}

// GetRunDBFilePath returns the path to the SQLite DB file for run tracking.
func GetRunDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".slipcheck_runs.db"
	}
	return filepath.Join(homeDir, ".slipcheck_runs.db")
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 to ensure there's space for both the "..." prefix and at least one character of content.
// Without this check, small maxWidth values could cause slice bounds errors in the truncation calculation.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
