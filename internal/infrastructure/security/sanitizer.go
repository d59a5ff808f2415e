package security

import (
	"sort"
	"strings"
	"unicode/utf8"
)

const redactedValue = "[REDACTED]"

// Redact replaces every occurrence of each non-empty secret in text.
// Longer secrets are replaced first so that a secret containing another one
// is not left half visible.
func Redact(text string, secrets ...string) string {
	ordered := make([]string, 0, len(secrets))
	for _, s := range secrets {
		if s != "" {
			ordered = append(ordered, s)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool { return len(ordered[i]) > len(ordered[j]) })

	for _, s := range ordered {
		text = strings.ReplaceAll(text, s, redactedValue)
	}
	return text
}

// Excerpt flattens line breaks and cuts s to at most maxRunes runes, marking
// the cut with "...". A non-positive maxRunes disables the cut.
func Excerpt(s string, maxRunes int) string {
	s = strings.NewReplacer("\r\n", " | ", "\n", " | ", "\r", " ").Replace(strings.TrimSpace(s))
	if maxRunes <= 0 || utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxRunes]) + "..."
}
