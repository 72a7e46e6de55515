package salecalc

import "github.com/shopspring/decimal"

// CurrencyPlaces is the number of decimal places amounts are rounded to when
// they leave the calculator.
const CurrencyPlaces = 2

// RoundCurrency rounds an amount half away from zero to CurrencyPlaces.
func RoundCurrency(d decimal.Decimal) decimal.Decimal {
	return d.Round(CurrencyPlaces)
}

// ToCents rounds an amount and returns it as integer minor units.
func ToCents(d decimal.Decimal) int64 {
	return RoundCurrency(d).Shift(CurrencyPlaces).IntPart()
}

// FromCents converts integer minor units back to an amount.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -CurrencyPlaces)
}
