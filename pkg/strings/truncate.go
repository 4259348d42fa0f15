// Package strings holds small string helpers shared by the library and the CLI.
package strings

import (
	"strings"
)

// MinTruncateLen is the smallest useful maxLen for Truncate: one character
// plus "...".
const MinTruncateLen = 4

// Truncate flattens s onto a single line and cuts it to at most maxLen runes,
// ending in "..." when cut. Runs of whitespace, including newlines, collapse
// to one space. maxLen below MinTruncateLen is raised to MinTruncateLen.
//
// Upstream error bodies pass through here before they end up in error
// messages and table cells.
func Truncate(s string, maxLen int) string {
	if maxLen < MinTruncateLen {
		maxLen = MinTruncateLen
	}

	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}
