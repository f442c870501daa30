package mining

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/finmine/datares/internal/filing"
	"github.com/finmine/datares/internal/mining/scan"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(Options{
		Strategy:    scan.StrategyTable,
		MaxFileSize: 10 * 1024 * 1024,
	})
}

func TestDocumentForFile(t *testing.T) {
	doc := DocumentForFile("/data/pdfs/某某科技：2025年半年度报告_[2025-08-20].pdf")
	if doc.CompanyName != "某某科技" {
		t.Errorf("company = %q", doc.CompanyName)
	}
	if doc.ReportTitle != "2025年半年度报告" {
		t.Errorf("title = %q", doc.ReportTitle)
	}
	if doc.ReportDate != "2025-08-20" {
		t.Errorf("date = %q", doc.ReportDate)
	}

	plain := DocumentForFile("/data/pdfs/report-q2.pdf")
	if plain.ReportTitle != "report-q2" || plain.CompanyName != "" {
		t.Errorf("fallback parse wrong: %+v", plain)
	}
}

func TestMineBytesDegradesOnGarbage(t *testing.T) {
	engine := newTestService(t).Engine()
	doc := filing.NewDocument("600941", "甲公司", "2025年半年度报告", "2025-08-20", "http://example.com/a.pdf")

	res := engine.MineBytes(doc, []byte("this is not a pdf"))
	if res.Err == nil {
		t.Error("expected a soft error for non-PDF bytes")
	}
	if len(res.Hits) != 0 {
		t.Errorf("expected no hits, got %d", len(res.Hits))
	}
	if len(res.Records) != 3 {
		t.Fatalf("expected 3 synthesized records, got %d", len(res.Records))
	}
	for _, r := range res.Records {
		if r.Value != "0" || r.KeywordSeen {
			t.Errorf("degraded record not zero/false: %+v", r)
		}
	}
}

func TestMineBytesValidatesStructure(t *testing.T) {
	engine := newTestService(t).Engine()
	doc := filing.NewDocument("600941", "甲公司", "2025年半年度报告", "2025-08-20", "http://example.com/a.pdf")

	// Carries the PDF magic but no cross-reference structure: the
	// structural validation must catch it before parsing starts.
	res := engine.MineBytes(doc, []byte("%PDF-1.7 body with no xref or trailer"))
	if res.Err == nil {
		t.Fatal("expected a soft error for structurally broken bytes")
	}
	if !strings.Contains(res.Err.Error(), "invalid PDF structure") {
		t.Errorf("expected structural validation error, got %v", res.Err)
	}
	if len(res.Records) != 3 {
		t.Fatalf("expected 3 synthesized records, got %d", len(res.Records))
	}
	for _, r := range res.Records {
		if r.Value != "0" || r.KeywordSeen {
			t.Errorf("degraded record not zero/false: %+v", r)
		}
	}
}

func TestMineBytesDegradesOnEmpty(t *testing.T) {
	engine := newTestService(t).Engine()
	doc := filing.NewDocument("000001", "乙公司", "2025年半年度报告", "2025-08-20", "http://example.com/b.pdf")

	res := engine.MineBytes(doc, nil)
	if res.Err == nil || len(res.Records) != 3 {
		t.Errorf("expected degraded result with 3 records, got err=%v records=%d", res.Err, len(res.Records))
	}
}

func TestScanFileRejectsEmptyPath(t *testing.T) {
	if _, err := newTestService(t).ScanFile(ScanFileRequest{}); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestScanDirectoryEmpty(t *testing.T) {
	dir := t.TempDir()
	// A stray non-PDF must be ignored.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	res, err := newTestService(t).ScanDirectory(ScanDirectoryRequest{Directory: dir})
	if err != nil {
		t.Fatalf("ScanDirectory: %v", err)
	}
	if len(res.Files) != 0 || len(res.Records) != 0 || len(res.WideRows) != 0 {
		t.Errorf("expected empty result, got %d files, %d records", len(res.Files), len(res.Records))
	}
}

func TestScanDirectoryDegradedPDF(t *testing.T) {
	dir := t.TempDir()
	// Carries the PDF magic so the search picks it up, but is not
	// parseable; the pass must degrade, not fail.
	path := filepath.Join(dir, "甲公司：2025年半年度报告_[2025-08-20].pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 truncated"), 0o600); err != nil {
		t.Fatal(err)
	}

	res, err := newTestService(t).ScanDirectory(ScanDirectoryRequest{Directory: dir})
	if err != nil {
		t.Fatalf("ScanDirectory: %v", err)
	}
	if len(res.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(res.Results))
	}
	if res.Results[0].Err == nil {
		t.Error("expected soft error on truncated PDF")
	}
	if len(res.Records) != 3 {
		t.Errorf("expected 3 zero records, got %d", len(res.Records))
	}
	if len(res.WideRows) != 1 {
		t.Errorf("expected 1 wide row, got %d", len(res.WideRows))
	}
}
