package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/Anand-732/MartLedger/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signPayload(orderID, paymentID, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(h.Sum(nil))
}

func TestVerifyGatewaySignature(t *testing.T) {
	secret := "test_secret"
	sig := signPayload("order_123", "pay_456", secret)

	assert.True(t, VerifyGatewaySignature("order_123", "pay_456", sig, secret))
	assert.False(t, VerifyGatewaySignature("order_123", "pay_456", sig, "other_secret"))
	assert.False(t, VerifyGatewaySignature("order_999", "pay_456", sig, secret))
	assert.False(t, VerifyGatewaySignature("order_123", "pay_456", "deadbeef", secret))
	assert.False(t, VerifyGatewaySignature("order_123", "pay_456", "", secret))
}

func TestVerifyCallback(t *testing.T) {
	secret := "test_secret"
	g := &razorpayGateway{secret: secret}

	payload := GatewayCallback{
		GatewayOrderID: "order_123",
		PaymentID:      "pay_456",
		Signature:      signPayload("order_123", "pay_456", secret),
		Amount:         d("499.99"),
	}

	result, err := g.VerifyCallback(payload)
	require.NoError(t, err)
	assert.Equal(t, "order_123", result.GatewayOrderID)
	// Status defaults to captured when the gateway omits it.
	assert.Equal(t, GatewayStatusCaptured, result.Status)
	// The captured amount rides along for the settlement cross-check.
	assert.True(t, result.Amount.Equal(d("499.99")))

	payload.Signature = "tampered"
	_, err = g.VerifyCallback(payload)
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeGatewayError))
}

func TestPaymentURLFormat(t *testing.T) {
	g := &razorpayGateway{}
	assert.Equal(t,
		"https://checkout.razorpay.com/v1/checkout?order_id=order_123",
		g.PaymentURL("order_123"))
}
