package services

import (
	"testing"

	"github.com/Anand-732/MartLedger/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestComputePaymentSplitWalletCoversPart(t *testing.T) {
	// 200 wallet against a 500 total: wallet first, gateway covers the rest.
	walletUsed, gatewayRequired := ComputePaymentSplit(d("200.00"), d("500.00"))
	assert.True(t, walletUsed.Equal(d("200.00")))
	assert.True(t, gatewayRequired.Equal(d("300.00")))
}

func TestComputePaymentSplitWalletCoversAll(t *testing.T) {
	walletUsed, gatewayRequired := ComputePaymentSplit(d("800.00"), d("500.00"))
	assert.True(t, walletUsed.Equal(d("500.00")))
	assert.True(t, gatewayRequired.IsZero())
}

func TestComputePaymentSplitEmptyWallet(t *testing.T) {
	walletUsed, gatewayRequired := ComputePaymentSplit(d("0"), d("500.00"))
	assert.True(t, walletUsed.IsZero())
	assert.True(t, gatewayRequired.Equal(d("500.00")))
}

func TestComputePaymentSplitNegativeBalanceTreatedAsZero(t *testing.T) {
	walletUsed, gatewayRequired := ComputePaymentSplit(d("-10.00"), d("500.00"))
	assert.True(t, walletUsed.IsZero())
	assert.True(t, gatewayRequired.Equal(d("500.00")))
}

func TestComputePaymentSplitConservation(t *testing.T) {
	balances := []string{"0", "0.01", "199.99", "500.00", "9999.99"}
	for _, b := range balances {
		walletUsed, gatewayRequired := ComputePaymentSplit(d(b), d("500.00"))
		assert.True(t, walletUsed.Add(gatewayRequired).Equal(d("500.00")),
			"split of balance %s must cover the total exactly", b)
	}
}

func TestCheckoutKeyHonorsClientKey(t *testing.T) {
	req := CheckoutRequest{IdempotencyKey: "retry-7f3a"}
	assert.Equal(t, "retry-7f3a", checkoutKey(req))

	// Without a client key every checkout gets its own id.
	first := checkoutKey(CheckoutRequest{})
	second := checkoutKey(CheckoutRequest{})
	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}

func TestGatewayAmountExpected(t *testing.T) {
	orders := []models.Order{
		{Total: d("300.00")},
		{Total: d("200.00")},
	}

	// Wallet covered 150 of the 500, so the gateway was asked for 350.
	expected := gatewayAmountExpected(orders, d("150.00"))
	assert.True(t, expected.Equal(d("350.00")))

	// No wallet leg: the gateway carries the whole total.
	expected = gatewayAmountExpected(orders, decimal.Zero)
	assert.True(t, expected.Equal(d("500.00")))
}
