package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/finmine/datares/internal/filing"
)

// utf8BOM keeps Excel from mangling the Chinese headers when a crawled
// CSV is opened directly.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var announcementHeaders = []string{"股票代码", "公司名称", "财报名称", "报告日期", "PDF链接"}

// AnnouncementsCSVName returns the crawl output file name for a date
// window and report type.
func AnnouncementsCSVName(start, end, reportType string, now time.Time) string {
	return fmt.Sprintf("listed_companies_%s_%s_%s_%s.csv",
		start, end, reportType, now.Format("20060102_150405"))
}

// WriteAnnouncementsCSV writes crawled document metadata, one row per
// announcement, BOM first.
func WriteAnnouncementsCSV(path string, docs []filing.Document) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Write(utf8BOM); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(announcementHeaders); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, doc := range docs {
		row := []string{doc.SecurityCode, doc.CompanyName, doc.ReportTitle, doc.ReportDate, doc.SourceURL}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row for %s: %w", doc.SecurityCode, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}

// ReadDocumentsCSV loads a previously crawled announcement CSV back
// into documents, accepting either 股票代码 or 证券代码 for the code
// column. Rows without a code or PDF link are skipped.
func ReadDocumentsCSV(path string) ([]filing.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: empty file", path)
	}

	header := rows[0]
	if len(header) > 0 {
		header[0] = stripBOM(header[0])
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}

	codeIdx, ok := col["股票代码"]
	if !ok {
		codeIdx, ok = col["证券代码"]
	}
	if !ok {
		return nil, fmt.Errorf("%s: no security code column", path)
	}
	nameIdx, hasName := col["公司名称"]
	titleIdx, hasTitle := col["财报名称"]
	if !hasTitle {
		titleIdx, hasTitle = col["报告名称"]
	}
	dateIdx, hasDate := col["报告日期"]
	urlIdx, hasURL := col["PDF链接"]

	field := func(row []string, idx int, ok bool) string {
		if !ok || idx >= len(row) {
			return ""
		}
		return row[idx]
	}

	var docs []filing.Document
	for _, row := range rows[1:] {
		code := field(row, codeIdx, true)
		url := field(row, urlIdx, hasURL)
		if code == "" || url == "" {
			continue
		}
		docs = append(docs, filing.NewDocument(
			code,
			field(row, nameIdx, hasName),
			field(row, titleIdx, hasTitle),
			field(row, dateIdx, hasDate),
			url,
		))
	}
	return docs, nil
}

func stripBOM(s string) string {
	if len(s) >= 3 && s[0] == 0xEF && s[1] == 0xBB && s[2] == 0xBF {
		return s[3:]
	}
	return s
}
