package scan

import (
	"strings"

	"github.com/finmine/datares/internal/filing"
	"github.com/finmine/datares/internal/mining/normalize"
	"github.com/finmine/datares/internal/mining/numeric"
)

// scanText mines a page's plain text line by line. The phrase match and
// the parent stop-rule mirror the table pass; the value is the first
// positive token in the raw remainder of the matching line, scanned
// field by field so a leading zero or dash column does not mask a later
// value.
func (s *Scanner) scanText(pageText string, pageNum int) []filing.ExtractionHit {
	if pageText == "" {
		return nil
	}

	lines := strings.Split(pageText, "\n")
	var hits []filing.ExtractionHit

	for i, line := range lines {
		if !strings.Contains(normalize.Normalize(line), targetPhrase) {
			continue
		}

		value, ok := firstPositiveInLine(line)
		if !ok {
			continue
		}

		category, ok := resolveParentLine(lines, i)
		if !ok {
			continue
		}

		hits = append(hits, filing.ExtractionHit{
			Category: category,
			RawValue: value,
			Page:     pageNum,
			Method:   filing.MethodText,
		})
	}

	return hits
}

// firstPositiveInLine scans the whitespace-separated fields after the
// keyword occurrence for the first strictly positive numeric literal.
// Matching on the raw line keeps adjacent column values from fusing the
// way whole-line normalization would.
func firstPositiveInLine(line string) (string, bool) {
	rest := line
	if idx := strings.Index(line, keyword); idx >= 0 {
		rest = line[idx+len(keyword):]
	}

	for _, field := range strings.Fields(rest) {
		tok, ok := numeric.Extract(field)
		if ok && tok.Positive {
			return tok.Literal, true
		}
	}
	return "", false
}

// resolveParentLine applies the parent stop-rule over the preceding
// non-empty lines of the page.
func resolveParentLine(lines []string, matchLine int) (filing.ParentCategory, bool) {
	for i := matchLine - 1; i >= 0; i-- {
		text := normalize.Normalize(lines[i])
		if text == "" {
			continue
		}
		return categoryIn(text)
	}
	return 0, false
}
