package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction status constants
const (
	TransactionStatusPending   = "pending"
	TransactionStatusCompleted = "completed"
	TransactionStatusFailed    = "failed"
)

// Payment methods
const (
	PaymentMethodWallet  = "wallet"
	PaymentMethodGateway = "gateway"
	PaymentMethodMixed   = "mixed"
)

// Transaction records the settlement breakdown for one paid order.
// PlatformFeeAmount + ShopAmount always equals TotalAmount exactly; the
// rounding remainder goes to ShopAmount, never dropped.
type Transaction struct {
	ID      uint  `gorm:"primaryKey" json:"id"`
	OrderID uint  `json:"order_id" gorm:"uniqueIndex;not null"`
	Order   Order `json:"-" gorm:"foreignKey:OrderID"`

	TotalAmount        decimal.Decimal `json:"total_amount" gorm:"type:numeric(14,2)"`
	PlatformFeePercent decimal.Decimal `json:"platform_fee_percent" gorm:"type:numeric(6,4)"`
	PlatformFeeAmount  decimal.Decimal `json:"platform_fee_amount" gorm:"type:numeric(14,2)"`
	ShopAmount         decimal.Decimal `json:"shop_amount" gorm:"type:numeric(14,2)"`

	Status        string `json:"status"`
	PaymentMethod string `json:"payment_method"`
	GatewayRef    string `json:"gateway_ref,omitempty"`

	// PendingReleased marks that ShopAmount has moved from the shop's
	// pending bucket to its available balance.
	PendingReleased bool `json:"pending_released" gorm:"default:false"`

	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
