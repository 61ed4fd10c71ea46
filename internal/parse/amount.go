package parse

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	decimalCommaRe = regexp.MustCompile(`,\d{1,2}$`)
	decimalDotRe   = regexp.MustCompile(`\.\d{1,2}$`)
)

// NormalizeAmount converts a currency token into a decimal, resolving the
// separator style: "123.456,78" -> 123456.78 and "1,234.56" -> 1234.56.
// Malformed input yields zero, never an error — statement noise is
// expected, not exceptional.
func NormalizeAmount(token string) decimal.Decimal {
	s := strings.TrimSpace(token)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return decimal.Zero
	}

	hasDot := strings.Contains(s, ".")
	hasComma := strings.Contains(s, ",")

	switch {
	case hasDot && hasComma:
		// Whichever separator comes last is the decimal point.
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case hasComma:
		// "4,50" is decimal; "1,234" is grouping.
		if decimalCommaRe.MatchString(s) {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case hasDot:
		// "50.000" is grouping (three digits follow); "4.50" is decimal.
		if !decimalDotRe.MatchString(s) {
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
