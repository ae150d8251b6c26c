// Package strings provides string manipulation utilities.
package strings

import (
	"strings"
)

// CollapseWhitespace trims s and replaces every internal run of Unicode
// whitespace (including line breaks) with a single space.
//
// Example:
//
//	CollapseWhitespace("  john \t  smith\n")
//	// Returns: "john smith"
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// StripAny removes every rune of cutset from s.
func StripAny(s, cutset string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(cutset, r) {
			return -1
		}
		return r
	}, s)
}

// NonEmptyLines splits s on line breaks, trims each line, and drops blanks.
// Order is preserved.
func NonEmptyLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	var result []string
	for _, line := range strings.Split(s, "\n") {
		if trimmed := CollapseWhitespace(line); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// DedupeAndTrim removes duplicates and empty strings from a slice,
// trimming whitespace from each element. Order is preserved.
//
// Example:
//
//	DedupeAndTrim([]string{"  foo ", "bar", "foo", "", "  "})
//	// Returns: []string{"foo", "bar"}
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; !ok {
			seen[trimmed] = struct{}{}
			result = append(result, trimmed)
		}
	}

	return result
}
