package normalize

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount keeps only digits, the decimal point and a single leading minus
// sign, then parses the result. Currency symbols, thousands separators and
// spaces disappear. The second return is false for blank or dash-only fields
// and for anything that still does not parse, so callers can tell "absent"
// from zero.
func ParseAmount(s string) (decimal.Decimal, bool) {
	var b strings.Builder
	negative := false
	seenDigit := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			seenDigit = true
			b.WriteRune(r)
		case r == '.':
			b.WriteRune(r)
		case r == '-' && !seenDigit && b.Len() == 0:
			negative = true
		}
	}
	if !seenDigit {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(b.String())
	if err != nil {
		return decimal.Zero, false
	}
	if negative {
		d = d.Neg()
	}
	return d, true
}

// AmountOrZero is ParseAmount for columns where absent means zero.
func AmountOrZero(s string) decimal.Decimal {
	d, _ := ParseAmount(s)
	return d
}
