package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeTagContent canonicalizes a tag's display text into its
// de-duplication key: trimmed, lowercased, runs of whitespace collapsed to
// single hyphens, diacritics stripped. "  Trabajo  Duro " and "trabájo-duro"
// both normalize to "trabajo-duro".
func NormalizeTagContent(content string) string {
	lowered := strings.ToLower(strings.TrimSpace(content))
	hyphenated := strings.Join(strings.Fields(lowered), "-")

	// NFD decomposition followed by dropping the combining marks.
	decomposed := norm.NFD.String(hyphenated)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
