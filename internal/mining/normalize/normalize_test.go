package normalize

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "", expected: ""},
		{name: "plain phrase untouched", input: "其中:数据资源", expected: "其中:数据资源"},
		{name: "full width colon unified", input: "其中：数据资源", expected: "其中:数据资源"},
		{name: "embedded newline removed", input: "其中：数据\n资源", expected: "其中:数据资源"},
		{name: "ascii spaces removed", input: "  其中 : 数据资源  ", expected: "其中:数据资源"},
		{name: "ideographic space removed", input: "其中：　数据资源", expected: "其中:数据资源"},
		{name: "zero width space removed", input: "数据​资源", expected: "数据资源"},
		{name: "tabs and carriage returns", input: "存\t货\r\n", expected: "存货"},
		{name: "full width digits folded", input: "１，２３４．５６", expected: "1,234.56"},
		{name: "mixed value cell", input: " 1,234.56 \n", expected: "1,234.56"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"其中：数据资源",
		"其中： 数 据 资 源",
		"1,234.56",
		"存货\n跌价准备",
		"Ａ股１００",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestJoinRow(t *testing.T) {
	if got := JoinRow([]string{" ", "\n", "　"}); got != "" {
		t.Errorf("whitespace-only row should join to empty, got %q", got)
	}
	if got := JoinRow([]string{"无形", "资产"}); got != "无形资产" {
		t.Errorf("JoinRow = %q, want 无形资产", got)
	}
}
