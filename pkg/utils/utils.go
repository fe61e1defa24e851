package utils

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// CalculateInterest returns the flat interest on a loan.
// Formula: round(Principal * Rate / 100, 2), rate given in percent
func CalculateInterest(principal decimal.Decimal, ratePercent decimal.Decimal) decimal.Decimal {
	return principal.Mul(ratePercent).Div(hundred).Round(2)
}

// CalculateTotal returns principal plus interest
func CalculateTotal(principal decimal.Decimal, interest decimal.Decimal) decimal.Decimal {
	return principal.Add(interest).Round(2)
}

// CalculateBalance returns the remaining amount owed, floored at zero
func CalculateBalance(total decimal.Decimal, paid decimal.Decimal) decimal.Decimal {
	balance := total.Sub(paid).Round(2)
	if balance.IsNegative() {
		return decimal.Zero
	}
	return balance
}

// IsSettled reports whether nothing is left to pay
func IsSettled(balance decimal.Decimal) bool {
	return balance.LessThanOrEqual(decimal.Zero)
}

// Excess returns how far amount goes over limit, or zero
func Excess(amount decimal.Decimal, limit decimal.Decimal) decimal.Decimal {
	if amount.LessThanOrEqual(limit) {
		return decimal.Zero
	}
	return amount.Sub(limit)
}

// IsPercentage checks that rate lies in [0, 100]
func IsPercentage(rate decimal.Decimal) bool {
	return !rate.IsNegative() && rate.LessThanOrEqual(hundred)
}

// IsCents reports whether amount has no more than 2 decimal places
func IsCents(amount decimal.Decimal) bool {
	return amount.Equal(amount.Round(2))
}
