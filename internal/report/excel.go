// Package report writes the batch outputs: long- and wide-format Excel
// workbooks for extraction results and a BOM-prefixed CSV for crawled
// announcement metadata.
package report

import (
	"fmt"
	"time"

	"github.com/finmine/datares/internal/filing"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Sheet1"

// Column headers mirror the portal's vocabulary so the workbooks drop
// straight into the analysts' existing templates.
var (
	longHeaders = []string{"证券代码", "公司名称", "报告名称", "报告日期", "项目名称", "金额", "是否包含数据资产", "PDF链接"}
	wideHeaders = []string{"证券代码", "公司名称", "报告名称", "报告日期", "存货", "无形资产", "开发支出", "是否包含数据资产", "PDF链接"}
)

// LongOutputName returns the timestamped long-format file name.
func LongOutputName(now time.Time) string {
	return fmt.Sprintf("long_output_%s.xlsx", now.Format("20060102_150405"))
}

// WideOutputName returns the timestamped wide-format file name.
func WideOutputName(now time.Time) string {
	return fmt.Sprintf("wide_output_%s.xlsx", now.Format("20060102_150405"))
}

// WriteLongExcel writes one row per (document, category) record.
func WriteLongExcel(path string, records []filing.CanonicalRecord) error {
	rows := make([][]any, 0, len(records))
	for _, r := range records {
		rows = append(rows, []any{
			r.SecurityCode, r.CompanyName, r.ReportTitle, r.ReportDate,
			r.Category.Label(), r.Value, flag(r.KeywordSeen), r.SourceURL,
		})
	}
	return writeSheet(path, longHeaders, rows)
}

// WriteWideExcel writes one row per document, category columns in
// canonical order and the PDF link last.
func WriteWideExcel(path string, wideRows []filing.WideRow) error {
	rows := make([][]any, 0, len(wideRows))
	for _, w := range wideRows {
		row := []any{w.SecurityCode, w.CompanyName, w.ReportTitle, w.ReportDate}
		for _, category := range filing.Categories() {
			row = append(row, w.Value(category))
		}
		row = append(row, flag(w.KeywordSeen), w.SourceURL)
		rows = append(rows, row)
	}
	return writeSheet(path, wideHeaders, rows)
}

// writeSheet renders headers plus rows with a frozen header row and
// readable column widths.
func writeSheet(path string, headers []string, rows [][]any) error {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header row: %w", err)
	}

	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return fmt.Errorf("resolve last column: %w", err)
	}
	if err := f.SetColWidth(sheetName, "A", lastCol, 22); err != nil {
		return fmt.Errorf("set column widths: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// flag renders the keyword boolean the way the analysts' sheets expect.
func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}
