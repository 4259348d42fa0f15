package strings

import "strings"

// redactVisible is the number of leading runes Redact keeps for secrets long
// enough to stay unguessable.
const redactVisible = 4

// Redact masks a secret for display. Secrets of up to 2*redactVisible runes
// are masked completely; longer ones keep their first few runes.
func Redact(secret string) string {
	runes := []rune(secret)
	if len(runes) == 0 {
		return ""
	}
	if len(runes) <= 2*redactVisible {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[:redactVisible]) + strings.Repeat("*", len(runes)-redactVisible)
}
