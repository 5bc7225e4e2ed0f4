package contract

import (
	"math"
	"testing"
)

// FuzzParseToleranceValue fuzzes the tolerance string parser with arbitrary input.
func FuzzParseToleranceValue(f *testing.F) {
	seeds := []string{
		"0.05",
		"1.0",
		"inf",
		"+inf",
		"Infinity",
		"  0.5  ",
		"",
		"huge",
		"-0.1",
		"1e308",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, s string) {
		v, err := ParseToleranceValue(s)
		if err != nil {
			return
		}
		// Parsed values must be usable as tolerances: a number or +Inf, never NaN
		if math.IsNaN(v) {
			t.Errorf("ParseToleranceValue(%q) returned NaN without error", s)
		}
	})
}
