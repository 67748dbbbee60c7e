package services

import (
	"testing"
	"time"

	"github.com/Anand-732/MartLedger/models"
	"github.com/Anand-732/MartLedger/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeVoucher() *models.Voucher {
	now := time.Now()
	return &models.Voucher{
		Code:              "SAVE10",
		DiscountType:      models.DiscountTypePercentage,
		DiscountValue:     d("10"),
		UsageLimitPerUser: 1,
		QuantityAvailable: 100,
		StartDate:         now.Add(-time.Hour),
		EndDate:           now.Add(time.Hour),
		IsActive:          true,
	}
}

func rejectionReason(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	appErr := utils.GetAppError(err)
	require.NotNil(t, appErr)
	require.Equal(t, utils.CodeVoucherInvalid, appErr.Code)
	return appErr.Reason
}

func TestValidateVoucherOrdering(t *testing.T) {
	now := time.Now()

	// Inactive wins over every later check.
	v := activeVoucher()
	v.IsActive = false
	v.QuantityAvailable = 0
	assert.Equal(t, utils.VoucherInactive, rejectionReason(t, validateVoucher(v, 5, d("1.00"), now)))

	v = activeVoucher()
	v.StartDate = now.Add(time.Hour)
	v.EndDate = now.Add(2 * time.Hour)
	assert.Equal(t, utils.VoucherNotStarted, rejectionReason(t, validateVoucher(v, 0, d("100.00"), now)))

	v = activeVoucher()
	v.StartDate = now.Add(-2 * time.Hour)
	v.EndDate = now.Add(-time.Hour)
	assert.Equal(t, utils.VoucherExpired, rejectionReason(t, validateVoucher(v, 0, d("100.00"), now)))

	v = activeVoucher()
	v.QuantityAvailable = 0
	assert.Equal(t, utils.VoucherExhausted, rejectionReason(t, validateVoucher(v, 0, d("100.00"), now)))

	v = activeVoucher()
	assert.Equal(t, utils.VoucherLimitReached, rejectionReason(t, validateVoucher(v, 1, d("100.00"), now)))

	v = activeVoucher()
	v.MinOrderAmount = d("500.00")
	assert.Equal(t, utils.VoucherBelowMinOrder, rejectionReason(t, validateVoucher(v, 0, d("499.99"), now)))
}

func TestValidateVoucherPasses(t *testing.T) {
	v := activeVoucher()
	v.MinOrderAmount = d("100.00")
	assert.NoError(t, validateVoucher(v, 0, d("100.00"), time.Now()))
}

func TestValidateVoucherZeroLimitMeansOne(t *testing.T) {
	v := activeVoucher()
	v.UsageLimitPerUser = 0

	assert.NoError(t, validateVoucher(v, 0, d("100.00"), time.Now()))
	assert.Equal(t, utils.VoucherLimitReached,
		rejectionReason(t, validateVoucher(v, 1, d("100.00"), time.Now())))
}

func TestComputeDiscountPercentage(t *testing.T) {
	v := activeVoucher()
	assert.True(t, computeDiscount(v, d("500.00")).Equal(d("50.00")))
}

func TestComputeDiscountMaxCap(t *testing.T) {
	v := activeVoucher()
	v.MaxDiscountAmount = d("30.00")
	assert.True(t, computeDiscount(v, d("500.00")).Equal(d("30.00")))
}

func TestComputeDiscountFixedCappedAtSubtotal(t *testing.T) {
	v := activeVoucher()
	v.DiscountType = models.DiscountTypeFixed
	v.DiscountValue = d("80.00")

	assert.True(t, computeDiscount(v, d("500.00")).Equal(d("80.00")))
	// A fixed discount never exceeds what is payable.
	assert.True(t, computeDiscount(v, d("60.00")).Equal(d("60.00")))
}

func TestDiscountSplitMatchesSubtotals(t *testing.T) {
	// 10% of a 500 basket split 300/200 lands as 30/20.
	total := computeDiscount(activeVoucher(), d("500.00"))
	amounts := utils.AllocateProportionally(total, []decimal.Decimal{d("300.00"), d("200.00")})
	require.Len(t, amounts, 2)
	assert.True(t, amounts[0].Equal(d("30.00")))
	assert.True(t, amounts[1].Equal(d("20.00")))
}
