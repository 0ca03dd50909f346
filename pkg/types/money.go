package types

import "github.com/shopspring/decimal"

// MoneyScale is the number of decimal places stored for prices, fees and totals.
const MoneyScale = 2

// AmountProblem reports why d cannot be stored as a currency amount, or "" when it can.
func AmountProblem(d decimal.Decimal) string {
	switch {
	case d.IsNegative():
		return "must be non-negative"
	case !d.Equal(d.Round(MoneyScale)):
		return "must have at most 2 decimal places"
	}
	return ""
}
