package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestRoundMoneyHalfUp(t *testing.T) {
	assert.True(t, RoundMoney(d("10.005")).Equal(d("10.01")))
	assert.True(t, RoundMoney(d("10.004")).Equal(d("10.00")))
	assert.True(t, RoundMoney(d("10.995")).Equal(d("11.00")))
	assert.True(t, RoundMoney(d("10")).Equal(d("10")))
}

func TestApplyRate(t *testing.T) {
	assert.True(t, ApplyRate(d("500.00"), d("0.10")).Equal(d("50.00")))
	assert.True(t, ApplyRate(d("33.33"), d("0.10")).Equal(d("3.33")))
	assert.True(t, ApplyRate(d("33.35"), d("0.10")).Equal(d("3.34")))
}

func TestAllocateProportionallySplitsByWeight(t *testing.T) {
	// A 50 discount over subtotals 300 and 200 lands 30/20.
	amounts := AllocateProportionally(d("50.00"), []decimal.Decimal{d("300.00"), d("200.00")})
	require.Len(t, amounts, 2)
	assert.True(t, amounts[0].Equal(d("30.00")))
	assert.True(t, amounts[1].Equal(d("20.00")))
}

func TestAllocateProportionallyRemainderToLargestWeight(t *testing.T) {
	// 100 over three equal-ish weights cannot split evenly; the rounding
	// remainder must land on the largest weight and the sum stay exact.
	weights := []decimal.Decimal{d("1.00"), d("1.00"), d("1.01")}
	amounts := AllocateProportionally(d("100.00"), weights)
	require.Len(t, amounts, 3)
	assert.True(t, SumMoney(amounts).Equal(d("100.00")))

	largest := amounts[2]
	assert.True(t, largest.GreaterThanOrEqual(amounts[0]))
	assert.True(t, largest.GreaterThanOrEqual(amounts[1]))
}

func TestAllocateProportionallySumExact(t *testing.T) {
	totals := []decimal.Decimal{d("0.01"), d("0.10"), d("99.99"), d("1000.00"), d("123.45")}
	weightSets := [][]decimal.Decimal{
		{d("1"), d("1"), d("1")},
		{d("3"), d("7")},
		{d("0.01"), d("99.99")},
		{d("250.50"), d("100.25"), d("649.25")},
	}

	for _, total := range totals {
		for _, weights := range weightSets {
			amounts := AllocateProportionally(total, weights)
			assert.True(t, SumMoney(amounts).Equal(total),
				"split of %s over %v must sum exactly, got %v", total, weights, amounts)
		}
	}
}

func TestAllocateProportionallyZeroWeights(t *testing.T) {
	amounts := AllocateProportionally(d("10.00"), []decimal.Decimal{d("0"), d("0")})
	require.Len(t, amounts, 2)
	assert.True(t, amounts[0].IsZero())
	assert.True(t, amounts[1].Equal(d("10.00")))
}

func TestAllocateProportionallyEmptyWeights(t *testing.T) {
	assert.Nil(t, AllocateProportionally(d("10.00"), nil))
}

func TestSumMoney(t *testing.T) {
	assert.True(t, SumMoney(nil).IsZero())
	assert.True(t, SumMoney([]decimal.Decimal{d("1.10"), d("2.20"), d("-0.30")}).Equal(d("3.00")))
}
