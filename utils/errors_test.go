package utils

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAppErrorUnwrapsChain(t *testing.T) {
	base := InsufficientFundsError("have 10, need 20")
	wrapped := fmt.Errorf("posting failed: %w", base)

	appErr := GetAppError(wrapped)
	require.NotNil(t, appErr)
	assert.Equal(t, CodeInsufficientFunds, appErr.Code)
}

func TestIsCode(t *testing.T) {
	err := VoucherInvalidError(VoucherExpired, "Voucher has expired")
	assert.True(t, IsCode(err, CodeVoucherInvalid))
	assert.False(t, IsCode(err, CodeValidation))
	assert.False(t, IsCode(fmt.Errorf("plain"), CodeVoucherInvalid))
	assert.Equal(t, VoucherExpired, GetAppError(err).Reason)
}

func TestWrapError(t *testing.T) {
	assert.NoError(t, WrapError(nil, "context"))

	err := WrapError(fmt.Errorf("boom"), "context")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "context")
	assert.Contains(t, err.Error(), "boom")
}
