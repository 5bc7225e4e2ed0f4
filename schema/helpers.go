package schema

import (
	"strings"
	"unicode"
)

// Title upper-cases the first rune, "rigid" -> "Rigid". Values that are
// already capitalized pass through unchanged.
func Title(s string) string {
	rr := []rune(s)
	if len(rr) == 0 {
		return s
	}
	rr[0] = unicode.ToUpper(rr[0])
	return string(rr)
}

// Title formats a method for report headings.
func (m Method) Title() string {
	return Title(string(m))
}

// Upper formats a method for markdown section headings.
func (m Method) Upper() string {
	return strings.ToUpper(string(m))
}

// Title formats a direction for report headings.
func (d Direction) Title() string {
	return Title(string(d))
}

// GroupLabel formats a method/direction pair for report lines,
// "Rigid (Normal)".
func GroupLabel(m Method, d Direction) string {
	return m.Title() + " (" + d.Title() + ")"
}
