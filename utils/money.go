package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatRUB formats an amount in rubles as a string like "12 500,50 ₽".
// Uses a space as thousands separator and a comma before kopecks.
func FormatRUB(amount decimal.Decimal) string {
	neg := amount.IsNegative()
	if neg {
		amount = amount.Neg()
	}

	s := amount.StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	// Pre-allocate: digits + separators + sign + suffix
	b.Grow(len(s) + len(intPart)/3 + 6)
	if neg {
		b.WriteString("-")
	}

	// Insert separators from the left.
	rem := len(intPart) % 3
	if rem == 0 {
		rem = 3
	}
	b.WriteString(intPart[:rem])
	for i := rem; i < len(intPart); i += 3 {
		b.WriteByte(' ')
		b.WriteString(intPart[i : i+3])
	}
	b.WriteByte(',')
	b.WriteString(frac)
	b.WriteString(" ₽")

	return b.String()
}
