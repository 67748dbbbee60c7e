package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Wallet owner kinds
const (
	OwnerKindCustomer = "customer"
	OwnerKindShop     = "shop"
	OwnerKindPlatform = "platform"
)

// Balance buckets. Customer and platform wallets only use BucketBalance;
// shop wallets additionally hold proceeds in BucketPending until the refund
// window has passed.
const (
	BucketBalance = "balance"
	BucketPending = "pending"
)

// Posting reasons recorded on every ledger entry
const (
	ReasonOrderPayment       = "order_payment"
	ReasonPaymentReversal    = "payment_reversal"
	ReasonShopSettlement     = "shop_settlement"
	ReasonPlatformCommission = "platform_commission"
	ReasonPendingRelease     = "pending_release"
	ReasonRefundCustomer     = "refund_customer"
	ReasonRefundShop         = "refund_shop"
	ReasonRefundCommission   = "refund_commission"
	ReasonWithdrawalPayout   = "withdrawal_payout"
	ReasonWalletTopup        = "wallet_topup"
)

// Wallet holds the cached balances for one owner. OwnerID is zero for the
// process-wide platform wallet. The cached buckets always equal the sum of
// all ledger entries posted against them; they are never written directly,
// only through the wallet store's posting path.
type Wallet struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	OwnerKind string `json:"owner_kind" gorm:"uniqueIndex:idx_wallet_owner;not null"`
	OwnerID   uint   `json:"owner_id" gorm:"uniqueIndex:idx_wallet_owner"`

	Balance        decimal.Decimal `json:"balance" gorm:"type:numeric(14,2);default:0"`
	PendingBalance decimal.Decimal `json:"pending_balance" gorm:"type:numeric(14,2);default:0"`

	// Running totals, maintained alongside postings for reporting.
	TotalSpent              decimal.Decimal `json:"total_spent" gorm:"type:numeric(14,2);default:0"`
	TotalRefunded           decimal.Decimal `json:"total_refunded" gorm:"type:numeric(14,2);default:0"`
	TotalWithdrawn          decimal.Decimal `json:"total_withdrawn" gorm:"type:numeric(14,2);default:0"`
	TotalEarned             decimal.Decimal `json:"total_earned" gorm:"type:numeric(14,2);default:0"`
	TotalCommissionEarned   decimal.Decimal `json:"total_commission_earned" gorm:"type:numeric(14,2);default:0"`
	TotalCommissionRefunded decimal.Decimal `json:"total_commission_refunded" gorm:"type:numeric(14,2);default:0"`
	TotalPayout             decimal.Decimal `json:"total_payout" gorm:"type:numeric(14,2);default:0"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// WalletTransaction is an immutable ledger entry for a single balance
// change. Amount is signed: credits positive, debits negative. The unique
// index over (wallet_id, reference, reason) is what makes postings
// idempotent - a second attempt with the same triple returns the prior
// entry instead of double-applying.
type WalletTransaction struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	WalletID uint   `json:"wallet_id" gorm:"uniqueIndex:idx_wallet_txn_ref;not null"`
	Wallet   Wallet `json:"-" gorm:"foreignKey:WalletID"`

	Amount decimal.Decimal `json:"amount" gorm:"type:numeric(14,2);not null"`
	Bucket string          `json:"bucket" gorm:"not null"`

	Reason    string `json:"reason" gorm:"uniqueIndex:idx_wallet_txn_ref;not null"`
	Reference string `json:"reference" gorm:"uniqueIndex:idx_wallet_txn_ref;not null"`
	OrderID   *uint  `json:"order_id"`

	BalanceBefore decimal.Decimal `json:"balance_before" gorm:"type:numeric(14,2)"`
	BalanceAfter  decimal.Decimal `json:"balance_after" gorm:"type:numeric(14,2)"`

	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
