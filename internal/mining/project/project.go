// Package project pivots reconciled long-format records into one wide
// row per document.
package project

import (
	"sort"

	"github.com/finmine/datares/internal/filing"
)

// Project groups records by document identity and emits one row per
// document with a value column per parent category. Categories missing
// from a group render as "0" rather than failing; the keyword flag is
// the OR across the group. Rows come back stably sorted by security
// code, report date, then title for presentation.
func Project(records []filing.CanonicalRecord) []filing.WideRow {
	byDoc := make(map[string]*filing.WideRow)
	var order []string

	for _, r := range records {
		key := r.DocumentKey()
		row, ok := byDoc[key]
		if !ok {
			row = &filing.WideRow{
				SecurityCode: r.SecurityCode,
				CompanyName:  r.CompanyName,
				ReportTitle:  r.ReportTitle,
				ReportDate:   r.ReportDate,
				Values:       make(map[string]string, len(filing.Categories())),
				SourceURL:    r.SourceURL,
			}
			byDoc[key] = row
			order = append(order, key)
		}
		row.Values[r.Category.Label()] = r.Value
		row.KeywordSeen = row.KeywordSeen || r.KeywordSeen
	}

	rows := make([]filing.WideRow, 0, len(order))
	for _, key := range order {
		rows = append(rows, *byDoc[key])
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].SecurityCode != rows[j].SecurityCode {
			return rows[i].SecurityCode < rows[j].SecurityCode
		}
		if rows[i].ReportDate != rows[j].ReportDate {
			return rows[i].ReportDate < rows[j].ReportDate
		}
		return rows[i].ReportTitle < rows[j].ReportTitle
	})
	return rows
}
