package services

import (
	"testing"

	"github.com/Anand-732/MartLedger/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitRefundProRata(t *testing.T) {
	// A settlement of 450 shop / 50 platform refunds 100 as 90/10.
	shopShare, platformShare := SplitRefund(d("100.00"), d("450.00"), d("50.00"))
	assert.True(t, shopShare.Equal(d("90.00")))
	assert.True(t, platformShare.Equal(d("10.00")))
}

func TestSplitRefundSumExact(t *testing.T) {
	refunds := []string{"0.01", "33.33", "100.00", "499.99"}
	for _, r := range refunds {
		shopShare, platformShare := SplitRefund(d(r), d("450.00"), d("50.00"))
		assert.True(t, shopShare.Add(platformShare).Equal(d(r)),
			"refund split of %s must sum exactly", r)
	}
}

func TestSplitRefundZeroFeeSettlement(t *testing.T) {
	shopShare, platformShare := SplitRefund(d("100.00"), d("500.00"), decimal.Zero)
	assert.True(t, shopShare.Equal(d("100.00")))
	assert.True(t, platformShare.IsZero())
}

func TestRefundWithinRemaining(t *testing.T) {
	// Two requests opened against a 100 order while neither is approved
	// each fit the full total at creation time.
	assert.NoError(t, refundWithinRemaining(d("70.00"), d("100.00"), decimal.Zero))
	assert.NoError(t, refundWithinRemaining(d("60.00"), d("100.00"), decimal.Zero))

	// Once the 70 is approved, approving the 60 would pay out 130 against
	// a 100 order; the approval-time re-check must refuse it.
	err := refundWithinRemaining(d("60.00"), d("100.00"), d("70.00"))
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeStateTransitionInvalid))

	// Exactly the remainder still fits.
	assert.NoError(t, refundWithinRemaining(d("30.00"), d("100.00"), d("70.00")))

	// A fully refunded order accepts nothing further.
	err = refundWithinRemaining(d("0.01"), d("100.00"), d("100.00"))
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeStateTransitionInvalid))
}

func TestRemainingRefundable(t *testing.T) {
	// 1000 order with 400 already approved leaves 600. Rejected requests
	// never count against the order.
	remaining := RemainingRefundable(d("1000.00"), []decimal.Decimal{d("400.00")})
	assert.True(t, remaining.Equal(d("600.00")))

	remaining = RemainingRefundable(d("1000.00"), nil)
	assert.True(t, remaining.Equal(d("1000.00")))

	remaining = RemainingRefundable(d("1000.00"), []decimal.Decimal{d("400.00"), d("600.00")})
	assert.True(t, remaining.IsZero())
}
