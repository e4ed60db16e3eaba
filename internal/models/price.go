// internal/models/price.go
package models

import (
	"strconv"
	"strings"
)

// ParsePrice extracts the numeric value from a formatted price string such as
// "149.00€" or "1 299,50 €". Returns 0 for anything unparseable.
func ParsePrice(formatted string) float64 {
	var b strings.Builder
	for _, r := range formatted {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.':
			b.WriteRune('.')
		case r == ',':
			b.WriteRune('.')
		}
	}
	value, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0
	}
	return value
}

// FormatPrice renders a numeric euro amount the way the storefront does.
func FormatPrice(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64) + "€"
}
