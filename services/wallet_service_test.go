package services

import (
	"testing"

	"github.com/Anand-732/MartLedger/models"
	"github.com/Anand-732/MartLedger/utils"
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

func TestApplyPostingCreditAndDebit(t *testing.T) {
	wallet := &models.Wallet{OwnerKind: models.OwnerKindCustomer, Balance: d("100.00")}

	before, after, err := applyPosting(wallet, Posting{
		Bucket: models.BucketBalance,
		Amount: d("50.00"),
		Reason: models.ReasonRefundCustomer,
	})
	require.NoError(t, err)
	assert.True(t, before.Equal(d("100.00")))
	assert.True(t, after.Equal(d("150.00")))
	assert.True(t, wallet.Balance.Equal(d("150.00")))
	assert.True(t, wallet.TotalRefunded.Equal(d("50.00")))

	before, after, err = applyPosting(wallet, Posting{
		Bucket: models.BucketBalance,
		Amount: d("-30.00"),
		Reason: models.ReasonOrderPayment,
	})
	require.NoError(t, err)
	assert.True(t, before.Equal(d("150.00")))
	assert.True(t, after.Equal(d("120.00")))
	assert.True(t, wallet.TotalSpent.Equal(d("30.00")))
}

func TestApplyPostingRejectsOverdraft(t *testing.T) {
	wallet := &models.Wallet{OwnerKind: models.OwnerKindCustomer, Balance: d("20.00")}

	_, _, err := applyPosting(wallet, Posting{
		Bucket: models.BucketBalance,
		Amount: d("-20.01"),
		Reason: models.ReasonWithdrawalPayout,
	})
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeInsufficientFunds))
	// Nothing applied.
	assert.True(t, wallet.Balance.Equal(d("20.00")))
	assert.True(t, wallet.TotalWithdrawn.IsZero())
}

func TestApplyPostingBucketsAreIndependent(t *testing.T) {
	wallet := &models.Wallet{
		OwnerKind:      models.OwnerKindShop,
		Balance:        d("5.00"),
		PendingBalance: d("90.00"),
	}

	// A pending debit larger than the available balance is fine as long as
	// the pending bucket covers it.
	_, after, err := applyPosting(wallet, Posting{
		Bucket: models.BucketPending,
		Amount: d("-90.00"),
		Reason: models.ReasonRefundShop,
	})
	require.NoError(t, err)
	assert.True(t, after.IsZero())
	assert.True(t, wallet.Balance.Equal(d("5.00")))
}

func TestApplyPostingUnknownBucket(t *testing.T) {
	wallet := &models.Wallet{OwnerKind: models.OwnerKindCustomer}
	_, _, err := applyPosting(wallet, Posting{Bucket: "escrow", Amount: d("1.00")})
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeValidation))
}

func TestResolvePostingAppliesOnce(t *testing.T) {
	wallet := &models.Wallet{ID: 7, OwnerKind: models.OwnerKindCustomer, Balance: d("100.00")}
	p := Posting{
		Bucket:    models.BucketBalance,
		Amount:    d("-40.00"),
		Reason:    models.ReasonOrderPayment,
		Reference: "CHECKOUT-abc",
	}

	entry, replayed, err := resolvePosting(wallet, nil, p)
	require.NoError(t, err)
	assert.False(t, replayed)
	assert.Equal(t, uint(7), entry.WalletID)
	assert.True(t, entry.BalanceBefore.Equal(d("100.00")))
	assert.True(t, entry.BalanceAfter.Equal(d("60.00")))
	assert.True(t, wallet.Balance.Equal(d("60.00")))

	// The same posting arriving again finds the prior entry and leaves the
	// wallet alone.
	entry2, replayed, err := resolvePosting(wallet, entry, p)
	require.NoError(t, err)
	assert.True(t, replayed)
	assert.Same(t, entry, entry2)
	assert.True(t, wallet.Balance.Equal(d("60.00")))
	assert.True(t, wallet.TotalSpent.Equal(d("40.00")))
}

func TestResolvePostingOverdraftLeavesWalletUntouched(t *testing.T) {
	wallet := &models.Wallet{ID: 7, OwnerKind: models.OwnerKindCustomer, Balance: d("10.00")}

	entry, replayed, err := resolvePosting(wallet, nil, Posting{
		Bucket:    models.BucketBalance,
		Amount:    d("-10.01"),
		Reason:    models.ReasonOrderPayment,
		Reference: "CHECKOUT-abc",
	})
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeInsufficientFunds))
	assert.Nil(t, entry)
	assert.False(t, replayed)
	assert.True(t, wallet.Balance.Equal(d("10.00")))
}

func TestReplayBalance(t *testing.T) {
	entries := []models.WalletTransaction{
		{Bucket: models.BucketBalance, Amount: d("100.00")},
		{Bucket: models.BucketBalance, Amount: d("-40.00")},
		{Bucket: models.BucketPending, Amount: d("75.50")},
		{Bucket: models.BucketPending, Amount: d("-25.50")},
		{Bucket: models.BucketBalance, Amount: d("0.01")},
	}

	balance, pending := ReplayBalance(entries)
	assert.True(t, balance.Equal(d("60.01")))
	assert.True(t, pending.Equal(d("50.00")))
}

func TestReplayBalanceEmpty(t *testing.T) {
	balance, pending := ReplayBalance(nil)
	assert.True(t, balance.IsZero())
	assert.True(t, pending.IsZero())
}
