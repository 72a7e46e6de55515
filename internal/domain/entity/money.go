package entity

import "github.com/sangkips/posadmin-api/internal/domain/salecalc"

// centsToFloat renders stored cents as a decimal number for JSON output
func centsToFloat(cents int64) float64 {
	return salecalc.FromCents(cents).InexactFloat64()
}
