// Package filing defines the core entities of the disclosure mining
// pipeline: documents, parent categories, extraction hits, and the
// reconciled long/wide output records.
package filing

import "fmt"

// ParentCategory is one of the fixed balance-sheet categories under which
// a data-resource sub-item may be disclosed.
type ParentCategory int

const (
	Inventory ParentCategory = iota
	IntangibleAssets
	DevelopmentExpenditure
)

// categoryLabels holds the source vocabulary in canonical output order.
var categoryLabels = [...]string{
	Inventory:              "存货",
	IntangibleAssets:       "无形资产",
	DevelopmentExpenditure: "开发支出",
}

// Categories returns all parent categories in canonical output order.
func Categories() []ParentCategory {
	return []ParentCategory{Inventory, IntangibleAssets, DevelopmentExpenditure}
}

// Label returns the Chinese label used in filings and in output columns.
func (c ParentCategory) Label() string {
	if c < 0 || int(c) >= len(categoryLabels) {
		return ""
	}
	return categoryLabels[c]
}

// String implements fmt.Stringer.
func (c ParentCategory) String() string {
	return c.Label()
}

// CategoryFromLabel maps a Chinese label back to its category.
func CategoryFromLabel(label string) (ParentCategory, bool) {
	for i, l := range categoryLabels {
		if l == label {
			return ParentCategory(i), true
		}
	}
	return 0, false
}

// ExtractionMethod identifies how a hit was found.
type ExtractionMethod string

const (
	MethodTable ExtractionMethod = "table"
	MethodText  ExtractionMethod = "text"
)

// Document represents one financial-report PDF and its upstream metadata.
// Documents are immutable once constructed and consumed exactly once by
// the extraction engine.
type Document struct {
	SecurityCode string `json:"security_code"` // normalized, e.g. 600941.SH
	RawCode      string `json:"raw_code"`      // as supplied by the portal
	CompanyName  string `json:"company_name"`
	ReportTitle  string `json:"report_title"`
	ReportDate   string `json:"report_date"` // YYYY-MM-DD
	SourceURL    string `json:"source_url"`
}

// NewDocument builds a Document, normalizing the raw security code.
func NewDocument(rawCode, company, title, date, url string) Document {
	return Document{
		SecurityCode: NormalizeSecurityCode(rawCode),
		RawCode:      rawCode,
		CompanyName:  company,
		ReportTitle:  title,
		ReportDate:   date,
		SourceURL:    url,
	}
}

// Key returns the identity used to group records belonging to one
// document: security code, company, title, date and source URL.
func (d Document) Key() string {
	return fmt.Sprintf("%s|%s|%s|%s|%s",
		d.SecurityCode, d.CompanyName, d.ReportTitle, d.ReportDate, d.SourceURL)
}

// ExtractionHit represents one match of the target phrase inside a
// document. A hit is only ever constructed with a resolved parent
// category and a value that parsed as strictly positive at selection
// time.
type ExtractionHit struct {
	Category ParentCategory   `json:"category"`
	RawValue string           `json:"raw_value"`
	Page     int              `json:"page"`
	Method   ExtractionMethod `json:"method"`
}

// CanonicalRecord represents one (document, category) pair after
// reconciliation. Exactly one exists per category per document; when a
// category had no hits the record carries the synthesized value "0".
type CanonicalRecord struct {
	SecurityCode string         `json:"security_code"`
	CompanyName  string         `json:"company_name"`
	ReportTitle  string         `json:"report_title"`
	ReportDate   string         `json:"report_date"`
	Category     ParentCategory `json:"category"`
	Value        string         `json:"value"` // thousands-formatted or "0"
	KeywordSeen  bool           `json:"keyword_seen"`
	SourceURL    string         `json:"source_url"`
}

// DocumentKey returns the grouping identity of the record's document.
func (r CanonicalRecord) DocumentKey() string {
	return fmt.Sprintf("%s|%s|%s|%s|%s",
		r.SecurityCode, r.CompanyName, r.ReportTitle, r.ReportDate, r.SourceURL)
}

// WideRow represents one document pivoted to a single row with one value
// column per parent category.
type WideRow struct {
	SecurityCode string            `json:"security_code"`
	CompanyName  string            `json:"company_name"`
	ReportTitle  string            `json:"report_title"`
	ReportDate   string            `json:"report_date"`
	Values       map[string]string `json:"values"` // category label -> value
	KeywordSeen  bool              `json:"keyword_seen"`
	SourceURL    string            `json:"source_url"`
}

// Value returns the category column content, defaulting to "0" so a
// missing category never produces an empty cell.
func (w WideRow) Value(c ParentCategory) string {
	if v, ok := w.Values[c.Label()]; ok && v != "" {
		return v
	}
	return "0"
}
