package domain

import (
	"strings"
	"unicode"
)

// NormalizeQuery prepares a question for keyword matching and cache keys:
//   - trims leading/trailing whitespace
//   - converts to lowercase
//   - collapses any run of whitespace into a single space
//
// Punctuation is preserved so "today's" still matches "today's".
func NormalizeQuery(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	text = strings.ToLower(text)

	var b strings.Builder
	b.Grow(len(text))
	prevSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if prevSpace {
				continue
			}
			prevSpace = true
			b.WriteRune(' ')
			continue
		}
		prevSpace = false
		b.WriteRune(r)
	}
	return b.String()
}
