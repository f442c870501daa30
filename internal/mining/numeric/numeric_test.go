package numeric

import "testing"

func TestExtract(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantLiteral  string
		wantPositive bool
		wantOK       bool
	}{
		{name: "grouped two decimals", input: "1,234.56", wantLiteral: "1,234.56", wantPositive: true, wantOK: true},
		{name: "grouped long decimals", input: "1,234.5678", wantLiteral: "1,234.5678", wantPositive: true, wantOK: true},
		{name: "grouped integer", input: "12,345", wantLiteral: "12,345", wantPositive: true, wantOK: true},
		{name: "plain two decimals", input: "1234.56", wantLiteral: "1234.56", wantPositive: true, wantOK: true},
		{name: "plain decimals", input: "0.305", wantLiteral: "0.305", wantPositive: true, wantOK: true},
		{name: "bare integer", input: "120", wantLiteral: "120", wantPositive: true, wantOK: true},
		{name: "zero is not positive", input: "0", wantLiteral: "0", wantPositive: false, wantOK: true},
		{name: "zero with decimals", input: "0.00", wantLiteral: "0.00", wantPositive: false, wantOK: true},
		{name: "dash means no value", input: "-", wantOK: false},
		{name: "full width dash", input: "－", wantOK: false},
		{name: "em dash", input: "—", wantOK: false},
		{name: "padded dash", input: "  -  ", wantOK: false},
		{name: "empty", input: "", wantOK: false},
		{name: "label only", input: "其中：数据资源", wantOK: false},
		{name: "number inside label", input: "金额：1,500,000.00元", wantLiteral: "1,500,000.00", wantPositive: true, wantOK: true},
		{name: "grouped wins over partial", input: "123,456,789.01", wantLiteral: "123,456,789.01", wantPositive: true, wantOK: true},
		{name: "long grouped no decimals", input: "合计 9,876,543", wantLiteral: "9,876,543", wantPositive: true, wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok, ok := Extract(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("Extract(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if tok.Literal != tt.wantLiteral {
				t.Errorf("Extract(%q) literal = %q, want %q", tt.input, tok.Literal, tt.wantLiteral)
			}
			if tok.Positive != tt.wantPositive {
				t.Errorf("Extract(%q) positive = %v, want %v", tt.input, tok.Positive, tt.wantPositive)
			}
		})
	}
}

func TestExtractPatternOrdering(t *testing.T) {
	// A grouped value must never be truncated by a later, more general
	// pattern picking up one of its digit runs.
	tok, ok := Extract("期末余额 1,234.56 元")
	if !ok {
		t.Fatal("expected a match")
	}
	if tok.Literal != "1,234.56" {
		t.Errorf("expected full grouped literal, got %q", tok.Literal)
	}

	// An ungrouped run of four digits stays intact rather than matching a
	// grouped pattern's 3-digit tail.
	tok, ok = Extract("1234.56")
	if !ok || tok.Literal != "1234.56" {
		t.Errorf("expected 1234.56, got %q (ok=%v)", tok.Literal, ok)
	}
}
