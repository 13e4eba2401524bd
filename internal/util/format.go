// ABOUTME: Shared value formatting helpers for diagnostics and CLI output
// ABOUTME: Consolidates truncation and display rendering of arbitrary payloads

package util

import "fmt"

// Truncate shortens a string to maxLen runes, adding "..." if truncated.
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// FormatValue renders an arbitrary value for a diagnostic line or a table
// cell. Strings are quoted so empty and whitespace-only values stay visible;
// nil renders as "<nil>". Output longer than width runes is truncated; a
// width of zero or less disables truncation.
func FormatValue(v any, width int) string {
	var s string
	switch x := v.(type) {
	case nil:
		return "<nil>"
	case string:
		s = fmt.Sprintf("%q", x)
	case error:
		s = fmt.Sprintf("%q", x.Error())
	default:
		s = fmt.Sprint(v)
	}
	if width > 0 {
		s = Truncate(s, width)
	}
	return s
}
