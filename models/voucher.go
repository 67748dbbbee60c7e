package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Voucher discount types
const (
	DiscountTypePercentage = "percentage"
	DiscountTypeFixed      = "fixed"
)

type Voucher struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Code          string          `gorm:"uniqueIndex" json:"code"`
	DiscountType  string          `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value" gorm:"type:numeric(14,2)"`

	// MaxDiscountAmount and MinOrderAmount are optional caps; zero means
	// unset.
	MaxDiscountAmount decimal.Decimal `json:"max_discount_amount" gorm:"type:numeric(14,2);default:0"`
	MinOrderAmount    decimal.Decimal `json:"min_order_amount" gorm:"type:numeric(14,2);default:0"`

	UsageLimitPerUser int `json:"usage_limit_per_user" gorm:"default:1"`

	// QuantityAvailable counts remaining redemptions across all users.
	QuantityAvailable int `json:"quantity_available"`

	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	IsActive  bool      `json:"is_active" gorm:"default:true"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// UserVoucher tracks one user's redemptions of a voucher.
type UserVoucher struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `json:"user_id" gorm:"uniqueIndex:idx_user_voucher"`
	VoucherID uint       `json:"voucher_id" gorm:"uniqueIndex:idx_user_voucher"`
	UseCount  int        `json:"use_count" gorm:"default:0"`
	IsUsed    bool       `json:"is_used" gorm:"default:false"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
}
