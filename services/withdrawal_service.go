package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/Anand-732/MartLedger/models"
	"github.com/Anand-732/MartLedger/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WithdrawalService drives the payout workflow for customer and shop
// wallets. The wallet debit happens only at completion; approval alone
// never locks funds.
type WithdrawalService struct {
	db      *gorm.DB
	wallets *WalletService
}

func NewWithdrawalService(db *gorm.DB, wallets *WalletService) *WithdrawalService {
	return &WithdrawalService{db: db, wallets: wallets}
}

// BankDetails is the payout destination supplied with a request.
type BankDetails struct {
	BankName      string `json:"bank_name" binding:"required"`
	AccountNumber string `json:"account_number" binding:"required"`
	AccountHolder string `json:"account_holder" binding:"required"`
	IFSCCode      string `json:"ifsc_code" binding:"required"`
}

// RequestWithdrawal opens a payout request for the owner's wallet.
func (s *WithdrawalService) RequestWithdrawal(ownerKind string, ownerID uint, amount decimal.Decimal, bank BankDetails) (*models.WithdrawalRequest, error) {
	if !amount.IsPositive() {
		return nil, utils.ValidationFailed("Withdrawal amount must be positive", nil)
	}
	if ownerKind != models.OwnerKindCustomer && ownerKind != models.OwnerKindShop {
		return nil, utils.ValidationFailed("Withdrawals are only available for customer and shop wallets", nil)
	}

	// Soft balance check for early feedback; the binding check happens at
	// completion, when the debit is actually posted.
	wallet, err := s.wallets.GetOrCreate(nil, ownerKind, ownerID)
	if err != nil {
		return nil, err
	}
	if wallet.Balance.LessThan(amount) {
		return nil, utils.InsufficientFundsError(
			fmt.Sprintf("Available balance %s is less than the requested %s", wallet.Balance, amount))
	}

	withdrawal := models.WithdrawalRequest{
		OwnerKind:     ownerKind,
		OwnerID:       ownerID,
		Amount:        amount,
		BankName:      bank.BankName,
		AccountNumber: bank.AccountNumber,
		AccountHolder: bank.AccountHolder,
		IFSCCode:      bank.IFSCCode,
		Status:        models.WithdrawalStatusPending,
	}
	if err := s.db.Create(&withdrawal).Error; err != nil {
		return nil, err
	}

	utils.LogInfo("Withdrawal request ID: %d created for %s ID: %d, amount %s",
		withdrawal.ID, ownerKind, ownerID, amount)
	return &withdrawal, nil
}

// Approve moves a pending request to Approved.
func (s *WithdrawalService) Approve(withdrawalID uint) (*models.WithdrawalRequest, error) {
	return s.review(withdrawalID, true, "")
}

// Reject terminally rejects a pending request.
func (s *WithdrawalService) Reject(withdrawalID uint, reason string) (*models.WithdrawalRequest, error) {
	if reason == "" {
		return nil, utils.ValidationFailed("Reject reason is required", nil)
	}
	return s.review(withdrawalID, false, reason)
}

func (s *WithdrawalService) review(withdrawalID uint, approve bool, reason string) (*models.WithdrawalRequest, error) {
	var withdrawal *models.WithdrawalRequest
	err := s.db.Transaction(func(tx *gorm.DB) error {
		w, err := lockWithdrawal(tx, withdrawalID)
		if err != nil {
			return err
		}
		if w.Status != models.WithdrawalStatusPending {
			return utils.StateTransitionError(
				fmt.Sprintf("Withdrawal %d is %s, expected %s", w.ID, w.Status, models.WithdrawalStatusPending))
		}

		now := time.Now()
		if approve {
			w.Status = models.WithdrawalStatusApproved
			w.ApprovedAt = &now
		} else {
			w.Status = models.WithdrawalStatusRejected
			w.RejectReason = reason
			w.RejectedAt = &now
		}

		if err := tx.Save(w).Error; err != nil {
			return err
		}
		withdrawal = w
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.LogInfo("Withdrawal ID: %d reviewed, status: %s", withdrawalID, withdrawal.Status)
	return withdrawal, nil
}

// Complete posts the payout debit for an approved request. Balances may
// have moved since approval; a short balance fails with InsufficientFunds
// and leaves both the request and the wallet unchanged.
func (s *WithdrawalService) Complete(withdrawalID uint) (*models.WithdrawalRequest, error) {
	var withdrawal *models.WithdrawalRequest
	err := s.db.Transaction(func(tx *gorm.DB) error {
		w, err := lockWithdrawal(tx, withdrawalID)
		if err != nil {
			return err
		}
		if w.Status != models.WithdrawalStatusApproved {
			return utils.StateTransitionError(
				fmt.Sprintf("Withdrawal %d is %s, expected %s", w.ID, w.Status, models.WithdrawalStatusApproved))
		}

		if _, err := s.wallets.Post(tx, Posting{
			OwnerKind:   w.OwnerKind,
			OwnerID:     w.OwnerID,
			Bucket:      models.BucketBalance,
			Amount:      w.Amount.Neg(),
			Reason:      models.ReasonWithdrawalPayout,
			Reference:   fmt.Sprintf("WITHDRAWAL-%d", w.ID),
			Description: fmt.Sprintf("Payout to %s (%s)", w.AccountHolder, w.BankName),
		}); err != nil {
			return err
		}

		now := time.Now()
		w.Status = models.WithdrawalStatusCompleted
		w.CompletedAt = &now
		if err := tx.Save(w).Error; err != nil {
			return err
		}
		withdrawal = w
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.LogInfo("Withdrawal ID: %d completed, %s paid out", withdrawalID, withdrawal.Amount)
	return withdrawal, nil
}

// ListWithdrawals returns a page of requests, optionally filtered by
// status. Owner filters are applied when ownerKind is non-empty.
func (s *WithdrawalService) ListWithdrawals(ownerKind string, ownerID uint, status string, limit, offset int) ([]models.WithdrawalRequest, int64, error) {
	query := s.db.Model(&models.WithdrawalRequest{})
	if ownerKind != "" {
		query = query.Where("owner_kind = ? AND owner_id = ?", ownerKind, ownerID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var withdrawals []models.WithdrawalRequest
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).
		Find(&withdrawals).Error; err != nil {
		return nil, 0, err
	}
	return withdrawals, total, nil
}

func lockWithdrawal(tx *gorm.DB, withdrawalID uint) (*models.WithdrawalRequest, error) {
	var withdrawal models.WithdrawalRequest
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&withdrawal, withdrawalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundAppError("Withdrawal request not found")
		}
		return nil, err
	}
	return &withdrawal, nil
}
