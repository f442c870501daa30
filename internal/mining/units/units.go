// Package units rescales extracted values for filers known to report
// in non-standard units. The lookup table is read-only for the life of
// a batch: the defaults cover the known filers and a YAML file can
// replace or extend them.
package units

import (
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Convention describes how one filer reports amounts.
type Convention struct {
	Multiplier decimal.Decimal
	Unit       string
}

// Table maps normalized security codes to reporting conventions. Codes
// not present pass through Adjust unchanged.
type Table struct {
	conventions map[string]Convention
}

// Default returns the built-in conventions: 600941.SH reports in
// millions, 688981.SH in thousands.
func Default() *Table {
	return &Table{conventions: map[string]Convention{
		"600941.SH": {Multiplier: decimal.NewFromInt(1_000_000), Unit: "百万元"},
		"688981.SH": {Multiplier: decimal.NewFromInt(1_000), Unit: "千元"},
	}}
}

// fileEntry is the YAML shape of one convention.
type fileEntry struct {
	Multiplier string `yaml:"multiplier"`
	Unit       string `yaml:"unit"`
}

// Load reads a convention table from a YAML file keyed by normalized
// security code:
//
//	units:
//	  600941.SH:
//	    multiplier: "1000000"
//	    unit: 百万元
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read units file: %w", err)
	}

	var doc struct {
		Units map[string]fileEntry `yaml:"units"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse units file %s: %w", path, err)
	}

	conventions := make(map[string]Convention, len(doc.Units))
	for code, entry := range doc.Units {
		m, err := decimal.NewFromString(entry.Multiplier)
		if err != nil {
			return nil, fmt.Errorf("units file %s: code %s: bad multiplier %q: %w",
				path, code, entry.Multiplier, err)
		}
		if m.Sign() <= 0 {
			return nil, fmt.Errorf("units file %s: code %s: multiplier must be positive", path, code)
		}
		conventions[code] = Convention{Multiplier: m, Unit: entry.Unit}
	}

	return &Table{conventions: conventions}, nil
}

// Lookup returns the convention for a security code, if any.
func (t *Table) Lookup(securityCode string) (Convention, bool) {
	c, ok := t.conventions[securityCode]
	return c, ok
}

// Adjust rescales value for the filer's reporting convention and
// reformats it with thousands separators. Codes without a convention
// and values that do not parse as decimals pass through unchanged.
func (t *Table) Adjust(securityCode, value string) string {
	conv, ok := t.conventions[securityCode]
	if !ok {
		return value
	}

	d, err := decimal.NewFromString(strings.ReplaceAll(value, ",", ""))
	if err != nil {
		return value
	}

	return formatThousands(d.Mul(conv.Multiplier))
}

// formatThousands renders a decimal with comma grouping, trimming
// trailing fractional zeros and a dangling decimal point.
func formatThousands(d decimal.Decimal) string {
	s := d.String()

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, fracPart, hasFrac := strings.Cut(s, ".")
	if hasFrac {
		fracPart = strings.TrimRight(fracPart, "0")
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}
	if fracPart != "" {
		b.WriteByte('.')
		b.WriteString(fracPart)
	}
	return b.String()
}
