package engine

import "github.com/shopspring/decimal"

var two = decimal.NewFromInt(2)

// SplitAmounts divides a credit amount into the mandatory and free
// choice halves. The mandatory half is rounded to cents with banker's
// rounding, the free choice half is the exact remainder, so the two
// always sum to the full amount. Rounding both halves independently
// would lose a cent on odd amounts.
func SplitAmounts(total decimal.Decimal) (mandatory, freeChoice decimal.Decimal) {
	mandatory = total.Div(two).RoundBank(2)
	freeChoice = total.Sub(mandatory)
	return mandatory, freeChoice
}
