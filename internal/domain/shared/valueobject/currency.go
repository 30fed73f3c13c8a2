// Package valueobject holds small immutable values shared across contexts.
package valueobject

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// ErrInvalidCurrency is returned for codes that are not ISO 4217
var ErrInvalidCurrency = errors.New("invalid currency code")

// Currency is an upper-case ISO 4217 code
type Currency string

// ParseCurrency validates code against the ISO 4217 table and normalises it
func ParseCurrency(code string) (Currency, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, code)
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, code)
	}
	return Currency(unit.String()), nil
}

// String returns the currency code
func (c Currency) String() string {
	return string(c)
}

// Scale returns the number of minor-unit digits for the currency (2 for USD, 0 for JPY)
func (c Currency) Scale() int32 {
	unit, err := currency.ParseISO(string(c))
	if err != nil {
		return 2
	}
	scale, _ := currency.Standard.Rounding(unit)
	return int32(scale)
}

// Round rounds amount to the currency's minor unit
func (c Currency) Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(c.Scale())
}

// ParseAmount parses a decimal string, returning decimal.Zero on failure
func ParseAmount(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}
