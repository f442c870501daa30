package filing

import (
	"strings"
	"unicode"
)

// NormalizeSecurityCode left-pads a numeric security code to six digits
// and appends the exchange suffix derived from its prefix: 60/68 list on
// Shanghai, 00/30 on Shenzhen, 83/87/92/43 on the Beijing exchange.
// Codes that already carry a suffix, and non-numeric codes, are returned
// unchanged apart from whitespace trimming.
func NormalizeSecurityCode(raw string) string {
	code := strings.TrimSpace(raw)
	if code == "" {
		return ""
	}
	if strings.Contains(code, ".") {
		return code
	}
	for _, r := range code {
		if !unicode.IsDigit(r) {
			return code
		}
	}
	if len(code) < 6 {
		code = strings.Repeat("0", 6-len(code)) + code
	}

	switch {
	case strings.HasPrefix(code, "60"), strings.HasPrefix(code, "68"):
		return code + ".SH"
	case strings.HasPrefix(code, "00"), strings.HasPrefix(code, "30"):
		return code + ".SZ"
	case strings.HasPrefix(code, "83"), strings.HasPrefix(code, "87"),
		strings.HasPrefix(code, "92"), strings.HasPrefix(code, "43"):
		return code + ".BJ"
	}
	return code
}
