package domain

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeAnswer prepares text for answer comparison:
//   - trims leading/trailing whitespace
//   - converts to lowercase
//   - applies canonical composition (NFC)
//
// Diacritics are preserved, so "é" typed as e + U+0301 equals the precomposed form.
func NormalizeAnswer(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	return norm.NFC.String(strings.ToLower(text))
}

// SameAnswer reports whether a and b are equal after NormalizeAnswer.
func SameAnswer(a, b string) bool {
	return NormalizeAnswer(a) == NormalizeAnswer(b)
}
