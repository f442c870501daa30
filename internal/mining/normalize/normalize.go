// Package normalize canonicalizes cell and line text extracted from
// filing PDFs so phrase matching is layout-invariant.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

// Normalize removes every whitespace variant (including ideographic and
// zero-width spaces and embedded newlines), folds full-width characters
// to their half-width forms, and unifies colon variants to ":". It is
// idempotent and maps empty input to the empty string.
func Normalize(s string) string {
	if s == "" {
		return ""
	}

	folded := width.Fold.String(s)

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsSpace(r) || r == '​' {
			continue
		}
		if r == '：' {
			r = ':'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// JoinRow concatenates already-extracted cell texts and normalizes the
// result. Used to decide whether a table row is empty.
func JoinRow(cells []string) string {
	return Normalize(strings.Join(cells, ""))
}
