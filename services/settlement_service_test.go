package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestComputeFeeBreakdown(t *testing.T) {
	fee, shop := ComputeFeeBreakdown(d("500.00"), d("0.10"))
	assert.True(t, fee.Equal(d("50.00")))
	assert.True(t, shop.Equal(d("450.00")))
}

func TestComputeFeeBreakdownRoundingRemainderToShop(t *testing.T) {
	// 10% of 33.33 rounds to 3.33; the shop side absorbs the difference so
	// the parts still sum to the total.
	fee, shop := ComputeFeeBreakdown(d("33.33"), d("0.10"))
	assert.True(t, fee.Equal(d("3.33")))
	assert.True(t, shop.Equal(d("30.00")))
	assert.True(t, fee.Add(shop).Equal(d("33.33")))
}

func TestComputeFeeBreakdownSumExact(t *testing.T) {
	totals := []string{"0.01", "0.99", "10.00", "33.33", "99.99", "12345.67"}
	percents := []string{"0", "0.05", "0.10", "0.125", "0.333", "1"}

	for _, ts := range totals {
		for _, ps := range percents {
			total := d(ts)
			fee, shop := ComputeFeeBreakdown(total, d(ps))
			assert.True(t, fee.Add(shop).Equal(total),
				"breakdown of %s at %s must sum exactly, got fee %s shop %s", ts, ps, fee, shop)
			assert.False(t, fee.IsNegative())
			assert.False(t, shop.IsNegative())
		}
	}
}

func TestComputeFeeBreakdownFullFee(t *testing.T) {
	fee, shop := ComputeFeeBreakdown(d("100.00"), decimal.NewFromInt(1))
	assert.True(t, fee.Equal(d("100.00")))
	assert.True(t, shop.IsZero())
}

func TestComputeFeeBreakdownZeroFee(t *testing.T) {
	fee, shop := ComputeFeeBreakdown(d("100.00"), decimal.Zero)
	assert.True(t, fee.IsZero())
	assert.True(t, shop.Equal(d("100.00")))
}
