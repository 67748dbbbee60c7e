package services

import (
	"fmt"
	"testing"

	"github.com/Anand-732/MartLedger/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRetrySucceedsAfterConflict(t *testing.T) {
	calls := 0
	err := WithRetry(3, func() error {
		calls++
		if calls < 3 {
			return utils.ConcurrencyConflictError("stock changed")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetryExhaustionBecomesTransient(t *testing.T) {
	calls := 0
	err := WithRetry(3, func() error {
		calls++
		return utils.ConcurrencyConflictError("stock changed")
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.True(t, utils.IsCode(err, utils.CodeTransientFailure))
}

func TestWithRetryDoesNotRetryOtherErrors(t *testing.T) {
	calls := 0
	err := WithRetry(3, func() error {
		calls++
		return utils.InsufficientFundsError("have 10, need 20")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.True(t, utils.IsCode(err, utils.CodeInsufficientFunds))
}

func TestWithRetryPlainErrorPassesThrough(t *testing.T) {
	boom := fmt.Errorf("boom")
	err := WithRetry(3, func() error { return boom })
	assert.Equal(t, boom, err)
}

func TestWithRetryAtLeastOneAttempt(t *testing.T) {
	calls := 0
	err := WithRetry(0, func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}
