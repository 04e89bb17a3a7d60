package transaction

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount strips grouping commas and surrounding space from s and parses
// it as a decimal. It returns false when s is not a number.
// "1,23,456.50" parses as 123456.5.
func ParseAmount(s string) (float64, bool) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if cleaned == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, false
	}
	return d.InexactFloat64(), true
}

// ParsePositiveAmount is ParseAmount restricted to values greater than zero.
func ParsePositiveAmount(s string) (float64, bool) {
	v, ok := ParseAmount(s)
	if !ok || v <= 0 {
		return 0, false
	}
	return v, true
}

// FormatAmount renders an amount with two decimal places.
func FormatAmount(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
