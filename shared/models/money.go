package models

import "github.com/shopspring/decimal"

// BalanceScale is the number of fractional digits kept for balances and
// transfer amounts.
const BalanceScale int32 = 5

// FitsScale reports whether d can be stored at BalanceScale without rounding.
func FitsScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(BalanceScale))
}
