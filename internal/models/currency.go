package models

import (
	"github.com/shopspring/decimal"
)

// BaseCurrencyCode is the currency all persisted amounts are stored in.
const BaseCurrencyCode = "INR"

// Currency is a display currency with a rate relative to INR.
type Currency struct {
	Code   string  `json:"code" yaml:"code"`
	Symbol string  `json:"symbol" yaml:"symbol"`
	Rate   float64 `json:"rate" yaml:"rate"`
}

// BaseCurrency is INR at rate 1.
var BaseCurrency = Currency{Code: BaseCurrencyCode, Symbol: "₹", Rate: 1}

// DefaultCurrencies is the built-in rate table.
var DefaultCurrencies = []Currency{
	BaseCurrency,
	{Code: "USD", Symbol: "$", Rate: 0.012},
	{Code: "EUR", Symbol: "€", Rate: 0.011},
	{Code: "GBP", Symbol: "£", Rate: 0.0095},
}

// IsZero reports whether the currency was never set.
func (c Currency) IsZero() bool {
	return c.Code == "" && c.Rate == 0
}

// OrBase returns c, or the base currency if c is unset.
func (c Currency) OrBase() Currency {
	if c.IsZero() || c.Rate <= 0 {
		return BaseCurrency
	}
	return c
}

// Convert converts a base-currency amount into this currency.
func (c Currency) Convert(amount float64) decimal.Decimal {
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromFloat(c.OrBase().Rate))
}

// Display converts a base-currency amount and formats it with exactly two decimals.
func (c Currency) Display(amount float64) string {
	return c.Convert(amount).StringFixed(2)
}

// DisplayWithSymbol is Display prefixed with the currency symbol.
func (c Currency) DisplayWithSymbol(amount float64) string {
	return c.OrBase().Symbol + c.Display(amount)
}
