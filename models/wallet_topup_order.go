package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Top-up order statuses.
const (
	TopupStatusPending   = "pending"
	TopupStatusCompleted = "completed"
	TopupStatusFailed    = "failed"
)

// WalletTopupOrder tracks a customer top-up through the payment gateway.
// GatewayOrderID doubles as the idempotency reference for the crediting
// ledger entry when the gateway confirms.
type WalletTopupOrder struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	UserID         uint            `json:"user_id" gorm:"index"`
	GatewayOrderID string          `json:"gateway_order_id" gorm:"uniqueIndex"`
	Amount         decimal.Decimal `json:"amount" gorm:"type:numeric(14,2)"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
