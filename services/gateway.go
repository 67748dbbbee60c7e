package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/Anand-732/MartLedger/config"
	"github.com/Anand-732/MartLedger/utils"
	razorpay "github.com/razorpay/razorpay-go"
	"github.com/shopspring/decimal"
)

// Gateway callback statuses after signature verification.
const (
	GatewayStatusCaptured = "captured"
	GatewayStatusFailed   = "failed"
)

// PaymentIntent is the gateway-side order a customer is redirected to.
type PaymentIntent struct {
	GatewayOrderID string
	URL            string
}

// GatewayCallback is the raw webhook payload from the gateway.
type GatewayCallback struct {
	GatewayOrderID string          `json:"gateway_order_id" binding:"required"`
	PaymentID      string          `json:"payment_id" binding:"required"`
	Signature      string          `json:"signature" binding:"required"`
	Status         string          `json:"status"`
	Amount         decimal.Decimal `json:"amount"`
}

// CallbackResult is a verified callback. Amount is what the gateway
// captured; callers cross-check it against what they asked for.
type CallbackResult struct {
	GatewayOrderID string
	PaymentID      string
	Status         string
	Amount         decimal.Decimal
}

// PaymentGateway abstracts the external payment collaborator.
type PaymentGateway interface {
	CreatePaymentURL(ctx context.Context, amount decimal.Decimal, referenceID string) (*PaymentIntent, error)
	PaymentURL(gatewayOrderID string) string
	VerifyCallback(payload GatewayCallback) (*CallbackResult, error)
}

type razorpayGateway struct {
	client *razorpay.Client
	secret string
	cfg    *config.Config
}

// NewRazorpayGateway builds the production gateway implementation.
func NewRazorpayGateway(cfg *config.Config) PaymentGateway {
	return &razorpayGateway{
		client: razorpay.NewClient(cfg.RazorpayKey, cfg.RazorpaySecret),
		secret: cfg.RazorpaySecret,
		cfg:    cfg,
	}
}

// CreatePaymentURL creates a gateway order and returns the hosted checkout
// URL. The SDK has no context support, so the call runs under a deadline
// and the result is discarded on timeout.
func (g *razorpayGateway) CreatePaymentURL(ctx context.Context, amount decimal.Decimal, referenceID string) (*PaymentIntent, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.GatewayTimeout)
	defer cancel()

	type result struct {
		order map[string]interface{}
		err   error
	}
	ch := make(chan result, 1)

	go func() {
		// Gateway amounts are in the currency minor unit.
		amountPaise := amount.Mul(decimal.NewFromInt(100)).IntPart()
		order, err := g.client.Order.Create(map[string]interface{}{
			"amount":          amountPaise,
			"currency":        "INR",
			"receipt":         referenceID,
			"payment_capture": 1,
		}, nil)
		ch <- result{order: order, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, utils.GatewayFailure("payment gateway timed out", ctx.Err())
	case res := <-ch:
		if res.err != nil {
			return nil, utils.GatewayFailure("failed to create gateway order", res.err)
		}
		gatewayOrderID := fmt.Sprintf("%v", res.order["id"])
		return &PaymentIntent{
			GatewayOrderID: gatewayOrderID,
			URL:            g.PaymentURL(gatewayOrderID),
		}, nil
	}
}

// PaymentURL returns the hosted checkout URL for an existing gateway
// order.
func (g *razorpayGateway) PaymentURL(gatewayOrderID string) string {
	return fmt.Sprintf("https://checkout.razorpay.com/v1/checkout?order_id=%s", gatewayOrderID)
}

// VerifyCallback checks the webhook signature (HMAC-SHA256 over
// "orderID|paymentID") and normalizes the payload.
func (g *razorpayGateway) VerifyCallback(payload GatewayCallback) (*CallbackResult, error) {
	if !VerifyGatewaySignature(payload.GatewayOrderID, payload.PaymentID, payload.Signature, g.secret) {
		return nil, utils.GatewayFailure("payment signature verification failed", nil)
	}

	status := payload.Status
	if status == "" {
		status = GatewayStatusCaptured
	}
	return &CallbackResult{
		GatewayOrderID: payload.GatewayOrderID,
		PaymentID:      payload.PaymentID,
		Status:         status,
		Amount:         payload.Amount,
	}, nil
}

// VerifyGatewaySignature implements the gateway's HMAC-SHA256 signature
// scheme.
func VerifyGatewaySignature(gatewayOrderID, paymentID, signature, secret string) bool {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(gatewayOrderID + "|" + paymentID))
	expected := hex.EncodeToString(h.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
