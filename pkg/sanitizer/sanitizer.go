// Package sanitizer normalizes free-text booking fields before validation so
// that equality checks and stored values are stable regardless of how the
// customer typed them.
package sanitizer

import (
	"strings"
	"unicode"
)

// TrimAndNormalize trims surrounding whitespace and collapses internal runs
// of whitespace to a single space.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

// NormalizeName normalizes a customer name.
func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

// NormalizeVehicle normalizes the opaque vehicle description supplied with a
// booking ("Toyota Camry 2020 - ABC-1234" and friends).
func NormalizeVehicle(vehicle string) string {
	return TrimAndNormalize(vehicle)
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeIDs trims every entry and drops empties, preserving order.
func NormalizeIDs(ids []string) []string {
	if ids == nil {
		return nil
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
