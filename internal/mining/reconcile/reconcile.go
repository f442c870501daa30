// Package reconcile merges a document's extraction hits into exactly
// one canonical record per parent category.
package reconcile

import (
	"strings"

	"github.com/finmine/datares/internal/filing"
	"github.com/shopspring/decimal"
)

// zeroValue is the synthesized amount for categories without any hit,
// keeping the one-row-per-category output shape traceable.
const zeroValue = "0"

// Reconcile collapses hits to one record per category. With multiple
// hits for a category, the first strictly positive value in scan order
// wins; magnitude is never compared. When no hit is positive the first
// hit wins regardless. Categories with no hits get a zero-value record,
// so every document yields exactly one record per category. The
// document-level keyword flag is copied onto every record.
func Reconcile(doc filing.Document, hits []filing.ExtractionHit, keywordSeen bool) []filing.CanonicalRecord {
	byCategory := make(map[filing.ParentCategory][]filing.ExtractionHit)
	for _, hit := range hits {
		byCategory[hit.Category] = append(byCategory[hit.Category], hit)
	}

	records := make([]filing.CanonicalRecord, 0, len(filing.Categories()))
	for _, category := range filing.Categories() {
		records = append(records, filing.CanonicalRecord{
			SecurityCode: doc.SecurityCode,
			CompanyName:  doc.CompanyName,
			ReportTitle:  doc.ReportTitle,
			ReportDate:   doc.ReportDate,
			Category:     category,
			Value:        selectValue(byCategory[category]),
			KeywordSeen:  keywordSeen,
			SourceURL:    doc.SourceURL,
		})
	}
	return records
}

// selectValue applies the first-positive-wins tie-break. The choice is
// scan-order dependent when a filing repeats the same table for several
// periods; see DESIGN.md.
func selectValue(hits []filing.ExtractionHit) string {
	if len(hits) == 0 {
		return zeroValue
	}
	for _, hit := range hits {
		if isPositive(hit.RawValue) {
			return hit.RawValue
		}
	}
	return hits[0].RawValue
}

func isPositive(value string) bool {
	d, err := decimal.NewFromString(strings.ReplaceAll(value, ",", ""))
	if err != nil {
		return false
	}
	return d.Sign() > 0
}
