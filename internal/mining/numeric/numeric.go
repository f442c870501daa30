// Package numeric finds and classifies numeric literals inside table
// cells and text lines from financial filings.
package numeric

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Patterns are tried most-specific first so a grouped number is never
// truncated into a bare-integer partial match. The first pattern that
// matches anywhere in the text wins.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(?:\d{1,3},)+\d{1,3}\.\d{2}\b`), // 1,234.56
	regexp.MustCompile(`\b(?:\d{1,3},)+\d{1,3}\.\d+\b`),   // 1,234.5678
	regexp.MustCompile(`\b(?:\d{1,3},)+\d{1,3}\b`),        // 1,234
	regexp.MustCompile(`\b\d+\.\d{2}\b`),                  // 1234.56
	regexp.MustCompile(`\b\d+\.\d+\b`),                    // 1234.5678
	regexp.MustCompile(`\b\d+\b`),                         // 1234
}

// Token is the result of scanning one text fragment for a value.
type Token struct {
	Literal  string // matched literal, grouping separators preserved
	Positive bool   // parses as a number strictly greater than zero
}

// Extract returns the first numeric literal found in text under the
// ordered pattern set, and whether it is strictly positive. A fragment
// consisting solely of dash characters is an explicit "no value" marker
// and yields ok=false, as does a fragment with no numeric literal at
// all.
func Extract(text string) (Token, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || isNoValueMarker(trimmed) {
		return Token{}, false
	}

	for _, re := range patterns {
		literal := re.FindString(trimmed)
		if literal == "" {
			continue
		}
		return Token{Literal: literal, Positive: isPositive(literal)}, true
	}
	return Token{}, false
}

// isPositive parses the literal without grouping separators as an exact
// decimal. A literal that matched a numeric pattern but still fails to
// parse is reported positive rather than dropped.
func isPositive(literal string) bool {
	d, err := decimal.NewFromString(strings.ReplaceAll(literal, ",", ""))
	if err != nil {
		return true
	}
	return d.Sign() > 0
}

func isNoValueMarker(s string) bool {
	for _, r := range s {
		switch r {
		case '-', '－', '—', '–':
		default:
			return false
		}
	}
	return true
}
