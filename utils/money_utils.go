package utils

import (
	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of decimal places for the currency minor unit.
const MoneyPlaces = 2

// RoundMoney rounds an amount to the currency minor unit, half-up.
func RoundMoney(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(MoneyPlaces)
}

// ApplyRate multiplies an amount by a rate (e.g. fee percent) and rounds
// to the minor unit.
func ApplyRate(amount, rate decimal.Decimal) decimal.Decimal {
	return RoundMoney(amount.Mul(rate))
}

// AllocateProportionally splits total across buckets by weight so the parts
// sum to total exactly. Each share is rounded to the minor unit and the
// rounding remainder is assigned to the largest-weight bucket. Used by both
// the voucher allocator and the settlement fee breakdown so every split
// follows the same rounding policy.
func AllocateProportionally(total decimal.Decimal, weights []decimal.Decimal) []decimal.Decimal {
	if len(weights) == 0 {
		return nil
	}

	amounts := make([]decimal.Decimal, len(weights))

	sumWeights := decimal.Zero
	for _, w := range weights {
		sumWeights = sumWeights.Add(w)
	}

	// Degenerate basket: nothing to weight by, keep the sum exact by
	// assigning everything to the last bucket.
	if sumWeights.IsZero() {
		for i := range amounts {
			amounts[i] = decimal.Zero
		}
		amounts[len(amounts)-1] = total
		return amounts
	}

	allocated := decimal.Zero
	largestIdx := 0
	for i, w := range weights {
		amounts[i] = RoundMoney(total.Mul(w).Div(sumWeights))
		allocated = allocated.Add(amounts[i])
		if w.GreaterThan(weights[largestIdx]) {
			largestIdx = i
		}
	}

	remainder := total.Sub(allocated)
	if !remainder.IsZero() {
		amounts[largestIdx] = amounts[largestIdx].Add(remainder)
	}

	return amounts
}

// SumMoney adds up a slice of amounts.
func SumMoney(amounts []decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, a := range amounts {
		sum = sum.Add(a)
	}
	return sum
}
