package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Refund request statuses. Shop approval precedes admin approval; both
// rejections are terminal, as is Refunded.
const (
	RefundStatusPendingShop   = "PendingShop"
	RefundStatusShopApproved  = "ShopApproved"
	RefundStatusShopRejected  = "ShopRejected"
	RefundStatusPendingAdmin  = "PendingAdmin"
	RefundStatusAdminApproved = "AdminApproved"
	RefundStatusAdminRejected = "AdminRejected"
	RefundStatusRefunded      = "Refunded"
)

// Refund reason types
const (
	RefundReasonDamaged     = "damaged"
	RefundReasonNotAsListed = "not_as_listed"
	RefundReasonNotReceived = "not_received"
	RefundReasonChangedMind = "changed_mind"
	RefundReasonOther       = "other"
)

type RefundRequest struct {
	ID      uint  `gorm:"primaryKey" json:"id"`
	OrderID uint  `json:"order_id" gorm:"index;not null"`
	Order   Order `json:"-" gorm:"foreignKey:OrderID"`
	UserID  uint  `json:"user_id" gorm:"index"`

	RefundAmount      decimal.Decimal `json:"refund_amount" gorm:"type:numeric(14,2)"`
	ReasonType        string          `json:"reason_type"`
	ReasonDescription string          `json:"reason_description"`

	Status       string `json:"status" gorm:"index"`
	RejectReason string `json:"reject_reason,omitempty"`

	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	ShopReviewedAt  *time.Time `json:"shop_reviewed_at,omitempty"`
	AdminReviewedAt *time.Time `json:"admin_reviewed_at,omitempty"`
	RefundedAt      *time.Time `json:"refunded_at,omitempty"`
}
