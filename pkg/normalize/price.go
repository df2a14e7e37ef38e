// Package normalize holds the pure value normalizers that turn raw feed and
// upload cells into canonical values: price strings into decimals, date
// strings into canonical dates, and SKUs into comparison keys. Every function
// here is total; bad input yields a null value, never an error.
package normalize

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Price parses a currency string into a decimal. Every character that is not
// a digit, '.', or '-' is stripped first, so "$1,234.56" parses as 1234.56.
// Unparseable or empty input yields an invalid NullDecimal; it never panics
// and never returns NaN.
func Price(raw string) decimal.NullDecimal {
	var b strings.Builder
	for _, c := range raw {
		if (c >= '0' && c <= '9') || c == '.' || c == '-' {
			b.WriteRune(c)
		}
	}

	cleaned := b.String()
	if cleaned == "" {
		return decimal.NullDecimal{}
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}
