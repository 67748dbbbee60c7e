package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Withdrawal request statuses
const (
	WithdrawalStatusPending   = "Pending"
	WithdrawalStatusApproved  = "Approved"
	WithdrawalStatusRejected  = "Rejected"
	WithdrawalStatusCompleted = "Completed"
)

// WithdrawalRequest extracts value from a customer or shop wallet to a bank
// account. The wallet debit happens at completion, not approval, so funds
// are not locked on a request that may still be rejected.
type WithdrawalRequest struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	OwnerKind string `json:"owner_kind" gorm:"index:idx_withdrawal_owner"`
	OwnerID   uint   `json:"owner_id" gorm:"index:idx_withdrawal_owner"`

	Amount decimal.Decimal `json:"amount" gorm:"type:numeric(14,2)"`

	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	AccountHolder string `json:"account_holder"`
	IFSCCode      string `json:"ifsc_code"`

	Status       string `json:"status" gorm:"index"`
	RejectReason string `json:"reject_reason,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	RejectedAt  *time.Time `json:"rejected_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
