// Package scan locates the data-resource line item inside the
// reconstructed tables and plain text of filing pages and emits
// extraction hits with their resolved parent categories.
package scan

import (
	"strings"

	"github.com/finmine/datares/internal/filing"
	"github.com/finmine/datares/internal/mining/normalize"
	"github.com/finmine/datares/internal/mining/numeric"
	"github.com/finmine/datares/internal/pdf"
)

const (
	// keyword flags a document as mentioning data resources at all,
	// independent of whether a structured value was extracted.
	keyword = "数据资源"

	// targetPhrase is the disclosure line being mined, after colon
	// unification by the normalizer.
	targetPhrase = "其中:数据资源"
)

// Strategy selects which scanning passes run per page.
type Strategy string

const (
	// StrategyTable mines reconstructed tables only.
	StrategyTable Strategy = "table"
	// StrategyTableText additionally scans page plain text line by
	// line, catching filings whose layout defeats table reconstruction.
	StrategyTableText Strategy = "table+text"
)

// ValidStrategy reports whether s names a known scanning strategy.
func ValidStrategy(s string) bool {
	return Strategy(s) == StrategyTable || Strategy(s) == StrategyTableText
}

// state is one step of the per-table scanning state machine.
type state int

const (
	stateScanTable state = iota
	stateMatchRow
	stateExtractValue
	stateResolveParent
	stateEmitHit
)

// Scanner walks a document's pages and collects extraction hits.
type Scanner struct {
	strategy Strategy
}

// NewScanner creates a scanner for the given strategy.
func NewScanner(strategy Strategy) *Scanner {
	return &Scanner{strategy: strategy}
}

// Scan processes every page of one document. It returns all hits in
// scan order plus the document-level keyword flag. Hits without a
// resolvable parent category or without a positive value on the match
// row are dropped here, not downstream.
func (s *Scanner) Scan(pages []pdf.Page) ([]filing.ExtractionHit, bool) {
	var hits []filing.ExtractionHit
	keywordSeen := false

	for _, page := range pages {
		if strings.Contains(page.PlainText, keyword) {
			keywordSeen = true
		}

		for _, table := range page.Tables {
			hits = append(hits, s.scanTable(table, page.Number)...)
		}

		if s.strategy == StrategyTableText {
			hits = append(hits, s.scanText(page.PlainText, page.Number)...)
		}
	}

	return hits, keywordSeen
}

// scanTable runs the row state machine over one table:
// SCAN_TABLE -> MATCH_ROW -> EXTRACT_VALUE -> RESOLVE_PARENT ->
// EMIT_HIT -> SCAN_TABLE, terminating when the rows are exhausted.
func (s *Scanner) scanTable(table pdf.Table, pageNum int) []filing.ExtractionHit {
	var (
		hits     []filing.ExtractionHit
		row      int
		matchRow int
		matchCol int
		value    string
		category filing.ParentCategory
	)

	st := stateScanTable
	for {
		switch st {
		case stateScanTable:
			if row >= len(table.Rows) {
				return hits
			}
			col, ok := matchColumn(table.Rows[row])
			if !ok {
				row++
				continue
			}
			matchRow, matchCol = row, col
			st = stateMatchRow

		case stateMatchRow:
			// The match itself is established; the next state
			// decides whether it carries a usable value.
			st = stateExtractValue

		case stateExtractValue:
			v, ok := firstPositiveInRow(table.Rows[matchRow], matchCol)
			if !ok {
				// No positive token on the remainder of the
				// row: the match is discarded.
				row = matchRow + 1
				st = stateScanTable
				continue
			}
			value = v
			st = stateResolveParent

		case stateResolveParent:
			cat, ok := ResolveParent(table, matchRow)
			if !ok {
				row = matchRow + 1
				st = stateScanTable
				continue
			}
			category = cat
			st = stateEmitHit

		case stateEmitHit:
			hits = append(hits, filing.ExtractionHit{
				Category: category,
				RawValue: value,
				Page:     pageNum,
				Method:   filing.MethodTable,
			})
			row = matchRow + 1
			st = stateScanTable
		}
	}
}

// matchColumn returns the index of the first cell whose normalized text
// contains the target phrase.
func matchColumn(row pdf.Row) (int, bool) {
	for i, cell := range row.Cells {
		if strings.Contains(normalize.Normalize(cell.Text), targetPhrase) {
			return i, true
		}
	}
	return 0, false
}

// firstPositiveInRow scans cells from startCol to the end of the row
// and returns the first strictly positive numeric literal. Label-only
// and empty intermediate cells are skipped, as are cells whose first
// token is zero, dash-valued, or unparseable.
func firstPositiveInRow(row pdf.Row, startCol int) (string, bool) {
	for i := startCol; i < len(row.Cells); i++ {
		tok, ok := numeric.Extract(row.Cells[i].Text)
		if ok && tok.Positive {
			return tok.Literal, true
		}
	}
	return "", false
}

// ResolveParent finds the enclosing parent category of the match row.
// It walks strictly upward, skipping rows whose normalized cell
// concatenation is empty. The first non-empty row either names a
// category or stops the search: skipping past an unrelated row would
// risk attributing the value to a different balance-sheet section.
func ResolveParent(table pdf.Table, matchRow int) (filing.ParentCategory, bool) {
	for i := matchRow - 1; i >= 0; i-- {
		text := normalize.JoinRow(table.Rows[i].CellTexts())
		if text == "" {
			continue
		}
		return categoryIn(text)
	}
	return 0, false
}

// categoryIn returns the first parent category whose label appears in
// the normalized text.
func categoryIn(text string) (filing.ParentCategory, bool) {
	for _, cat := range filing.Categories() {
		if strings.Contains(text, cat.Label()) {
			return cat, true
		}
	}
	return 0, false
}
