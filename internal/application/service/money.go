package service

import (
	"fmt"
	"math"

	"github.com/sangkips/posadmin-api/internal/domain/salecalc"
	"github.com/shopspring/decimal"
)

// MaxQuantity is the largest quantity a sale line accepts
const MaxQuantity = math.MaxInt32

var maxQuantity = decimal.NewFromInt(MaxQuantity)

// toCents converts a decimal amount from a request into stored cents
func toCents(amount float64) int64 {
	return salecalc.ToCents(decimal.NewFromFloat(amount))
}

func centsToDecimal(cents int64) decimal.Decimal {
	return salecalc.FromCents(cents)
}

// WholeQuantity converts q to an int when it is a whole number between 1 and
// MaxQuantity. Otherwise it returns the field message explaining why not.
func WholeQuantity(q decimal.Decimal) (int, string) {
	switch {
	case !q.IsInteger():
		return 0, "Must be a whole number"
	case q.LessThan(decimal.NewFromInt(1)):
		return 0, "Must be greater than 0"
	case q.GreaterThan(maxQuantity):
		return 0, fmt.Sprintf("Must be at most %d", MaxQuantity)
	}
	return int(q.IntPart()), ""
}
