package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// The engine computes exclusively on int64 cents. Decimal strings appear
// only at the presentation and import boundaries, converted here exactly.

// ParseCents converts a decimal amount string ("50", "-19.99") to signed
// cents. More than two decimal places is an error, not a rounding.
func ParseCents(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	scaled := d.Mul(decimal.NewFromInt(100))
	if !scaled.Equal(scaled.Truncate(0)) {
		return 0, fmt.Errorf("amount %q has more than 2 decimal places", s)
	}
	return scaled.IntPart(), nil
}

// FormatCents renders cents as a fixed two-decimal string ("-19.99").
func FormatCents(cents int64) string {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).StringFixed(2)
}
