package project

import (
	"testing"

	"github.com/finmine/datares/internal/filing"
	"github.com/finmine/datares/internal/mining/reconcile"
)

func records(code, company string, keyword bool) []filing.CanonicalRecord {
	doc := filing.NewDocument(code, company, company+"2025年半年度报告", "2025-08-20",
		"https://static.cninfo.com.cn/"+code+".PDF")
	return reconcile.Reconcile(doc, []filing.ExtractionHit{
		{Category: filing.Inventory, RawValue: "100.00", Page: 1, Method: filing.MethodTable},
	}, keyword)
}

func TestProjectOneRowPerDocument(t *testing.T) {
	var all []filing.CanonicalRecord
	all = append(all, records("600941", "甲公司", true)...)
	all = append(all, records("000001", "乙公司", false)...)

	rows := Project(all)
	if len(rows) != 2 {
		t.Fatalf("expected 2 wide rows, got %d", len(rows))
	}

	// Sorted by security code: 000001.SZ before 600941.SH.
	if rows[0].SecurityCode != "000001.SZ" || rows[1].SecurityCode != "600941.SH" {
		t.Errorf("unexpected order: %s, %s", rows[0].SecurityCode, rows[1].SecurityCode)
	}

	for _, row := range rows {
		for _, category := range filing.Categories() {
			if row.Value(category) == "" {
				t.Errorf("row %s: category %v column empty", row.SecurityCode, category)
			}
		}
		if row.Value(filing.Inventory) != "100.00" {
			t.Errorf("row %s inventory = %q, want 100.00", row.SecurityCode, row.Value(filing.Inventory))
		}
		if row.Value(filing.IntangibleAssets) != "0" {
			t.Errorf("row %s intangible = %q, want 0", row.SecurityCode, row.Value(filing.IntangibleAssets))
		}
	}

	if !rows[1].KeywordSeen || rows[0].KeywordSeen {
		t.Error("keyword flags not carried per document")
	}
}

func TestProjectMissingCategoryDefaultsToZero(t *testing.T) {
	// A partial group (should not occur after reconciliation, but the
	// projector must not fail on one).
	partial := []filing.CanonicalRecord{{
		SecurityCode: "300001.SZ",
		CompanyName:  "丙公司",
		ReportTitle:  "2025年半年度报告",
		ReportDate:   "2025-08-01",
		Category:     filing.DevelopmentExpenditure,
		Value:        "7.50",
		SourceURL:    "https://static.cninfo.com.cn/x.PDF",
	}}

	rows := Project(partial)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Value(filing.Inventory) != "0" || rows[0].Value(filing.IntangibleAssets) != "0" {
		t.Error("missing categories must default to 0")
	}
	if rows[0].Value(filing.DevelopmentExpenditure) != "7.50" {
		t.Errorf("development expenditure = %q, want 7.50", rows[0].Value(filing.DevelopmentExpenditure))
	}
}

func TestProjectEmpty(t *testing.T) {
	if rows := Project(nil); len(rows) != 0 {
		t.Errorf("expected no rows, got %d", len(rows))
	}
}
