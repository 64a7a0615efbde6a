// Package currency defines the closed set of units a ledger can hold.
package currency

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Currency is a tradable unit identified by its ISO 4217 style code.
type Currency string

const (
	CAD Currency = "CAD"
	USD Currency = "USD"
	GBP Currency = "GBP"
	XBC Currency = "XBC" // bitcoin
	XTW Currency = "XTW" // ledger-native home unit
)

// ErrUnknownCurrency is returned by Parse for codes outside the closed set.
var ErrUnknownCurrency = errors.New("unknown currency")

var all = []Currency{CAD, USD, GBP, XBC, XTW}

func init() {
	// go-money has no entry for the synthetic units.
	money.AddCurrency(string(XBC), "₿", "$1", ".", ",", 8)
	money.AddCurrency(string(XTW), "¤", "1 $", ".", ",", 2)
}

// All returns every known currency in declaration order.
func All() []Currency {
	return append([]Currency(nil), all...)
}

// Parse resolves a currency code, ignoring case and surrounding space.
func Parse(code string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(code)))
	for _, known := range all {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCurrency, code)
}

// Code returns the currency code as a plain string.
func (c Currency) Code() string { return string(c) }

func (c Currency) String() string { return string(c) }

// Fraction is the number of minor-unit digits, 2 for most fiat codes.
func (c Currency) Fraction() int {
	return c.meta().Fraction
}

// Format renders v with the currency's grapheme and minor-unit precision.
func (c Currency) Format(v decimal.Decimal) string {
	cur := c.meta()
	minor := v.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

func (c Currency) meta() money.Currency {
	// money.New never returns a nil currency, unlike GetCurrency.
	return *money.New(0, string(c)).Currency()
}
