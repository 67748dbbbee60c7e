package services

import (
	"errors"
	"fmt"

	"github.com/Anand-732/MartLedger/models"
	"github.com/Anand-732/MartLedger/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WalletService is the only mutation path for wallet balances. Every change
// goes through Post, which appends a ledger entry and updates the cached
// balance in the same atomic unit.
type WalletService struct {
	db *gorm.DB
}

func NewWalletService(db *gorm.DB) *WalletService {
	return &WalletService{db: db}
}

// Posting describes one ledger entry to apply. Amount is signed: credits
// positive, debits negative.
type Posting struct {
	OwnerKind   string
	OwnerID     uint
	Bucket      string
	Amount      decimal.Decimal
	Reason      string
	Reference   string
	OrderID     *uint
	Description string
}

// GetOrCreate returns the owner's wallet, creating it lazily on first
// reference. The platform wallet is addressed as (platform, 0).
func (s *WalletService) GetOrCreate(tx *gorm.DB, ownerKind string, ownerID uint) (*models.Wallet, error) {
	if tx == nil {
		tx = s.db
	}

	var wallet models.Wallet
	err := tx.Where("owner_kind = ? AND owner_id = ?", ownerKind, ownerID).First(&wallet).Error
	if err == nil {
		return &wallet, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	wallet = models.Wallet{
		OwnerKind:      ownerKind,
		OwnerID:        ownerID,
		Balance:        decimal.Zero,
		PendingBalance: decimal.Zero,
	}
	if err := tx.Create(&wallet).Error; err != nil {
		// Concurrent first reference; the unique owner index decides the
		// winner, the loser re-reads.
		if ferr := tx.Where("owner_kind = ? AND owner_id = ?", ownerKind, ownerID).First(&wallet).Error; ferr != nil {
			return nil, err
		}
	}
	return &wallet, nil
}

// Post appends a ledger entry and updates the cached balance under a row
// lock. It is idempotent per (walletID, reference, reason): a replay
// returns the prior entry without double-applying. A debit that would drive
// the bucket negative fails with InsufficientFunds and changes nothing.
//
// Post must run inside a caller-supplied transaction when it is one leg of
// a multi-posting sequence.
func (s *WalletService) Post(tx *gorm.DB, p Posting) (*models.WalletTransaction, error) {
	if tx == nil {
		tx = s.db
	}

	wallet, err := s.GetOrCreate(tx, p.OwnerKind, p.OwnerID)
	if err != nil {
		return nil, utils.WrapError(err, "failed to get wallet")
	}

	// Serialize concurrent writers on this wallet.
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(wallet, wallet.ID).Error; err != nil {
		return nil, utils.WrapError(err, "failed to lock wallet")
	}

	var prior *models.WalletTransaction
	var existing models.WalletTransaction
	err = tx.Where("wallet_id = ? AND reference = ? AND reason = ?", wallet.ID, p.Reference, p.Reason).
		First(&existing).Error
	if err == nil {
		prior = &existing
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	entry, replayed, err := resolvePosting(wallet, prior, p)
	if err != nil {
		return nil, err
	}
	if replayed {
		utils.LogInfo("Idempotent replay for wallet ID: %d, reference: %s, reason: %s", wallet.ID, p.Reference, p.Reason)
		return entry, nil
	}

	if err := tx.Save(wallet).Error; err != nil {
		return nil, utils.WrapError(err, "failed to update wallet balance")
	}
	if err := tx.Create(entry).Error; err != nil {
		return nil, utils.WrapError(err, "failed to create wallet transaction")
	}

	utils.LogDebug("Posted %s to wallet ID: %d (%s/%d), bucket: %s, balance: %s -> %s",
		p.Amount, wallet.ID, p.OwnerKind, p.OwnerID, p.Bucket, entry.BalanceBefore, entry.BalanceAfter)
	return entry, nil
}

// resolvePosting decides what a posting does once the wallet row is held:
// a prior entry under the same (reference, reason) wins untouched and the
// wallet stays as it is, otherwise the posting is applied to the wallet
// and the new ledger entry is built. Persisting both is the caller's job.
func resolvePosting(wallet *models.Wallet, prior *models.WalletTransaction, p Posting) (*models.WalletTransaction, bool, error) {
	if prior != nil {
		return prior, true, nil
	}

	before, after, err := applyPosting(wallet, p)
	if err != nil {
		return nil, false, err
	}

	return &models.WalletTransaction{
		WalletID:      wallet.ID,
		Amount:        p.Amount,
		Bucket:        p.Bucket,
		Reason:        p.Reason,
		Reference:     p.Reference,
		OrderID:       p.OrderID,
		BalanceBefore: before,
		BalanceAfter:  after,
		Description:   p.Description,
	}, false, nil
}

// applyPosting computes the new bucket balance and maintains the running
// totals. It mutates the wallet struct but persists nothing.
func applyPosting(wallet *models.Wallet, p Posting) (before, after decimal.Decimal, err error) {
	switch p.Bucket {
	case models.BucketBalance:
		before = wallet.Balance
	case models.BucketPending:
		before = wallet.PendingBalance
	default:
		return decimal.Zero, decimal.Zero, utils.ValidationFailed(fmt.Sprintf("unknown bucket %q", p.Bucket), nil)
	}

	after = before.Add(p.Amount)
	if after.IsNegative() {
		return decimal.Zero, decimal.Zero, utils.InsufficientFundsError(
			fmt.Sprintf("insufficient funds in %s wallet: have %s, need %s", wallet.OwnerKind, before, p.Amount.Neg()))
	}

	if p.Bucket == models.BucketBalance {
		wallet.Balance = after
	} else {
		wallet.PendingBalance = after
	}

	magnitude := p.Amount.Abs()
	switch p.Reason {
	case models.ReasonOrderPayment:
		wallet.TotalSpent = wallet.TotalSpent.Add(magnitude)
	case models.ReasonPaymentReversal:
		wallet.TotalSpent = wallet.TotalSpent.Sub(magnitude)
	case models.ReasonShopSettlement:
		wallet.TotalEarned = wallet.TotalEarned.Add(magnitude)
	case models.ReasonPlatformCommission:
		wallet.TotalCommissionEarned = wallet.TotalCommissionEarned.Add(magnitude)
	case models.ReasonRefundCustomer, models.ReasonRefundShop:
		wallet.TotalRefunded = wallet.TotalRefunded.Add(magnitude)
	case models.ReasonRefundCommission:
		wallet.TotalCommissionRefunded = wallet.TotalCommissionRefunded.Add(magnitude)
	case models.ReasonWithdrawalPayout:
		wallet.TotalWithdrawn = wallet.TotalWithdrawn.Add(magnitude)
		if wallet.OwnerKind == models.OwnerKindPlatform {
			wallet.TotalPayout = wallet.TotalPayout.Add(magnitude)
		}
	}

	return before, after, nil
}

// ReplayBalance reconstructs per-bucket balances from a wallet's full
// ledger. Used by audit checks: the result must match the cached balances
// exactly.
func ReplayBalance(entries []models.WalletTransaction) (balance, pending decimal.Decimal) {
	balance, pending = decimal.Zero, decimal.Zero
	for _, e := range entries {
		if e.Bucket == models.BucketPending {
			pending = pending.Add(e.Amount)
		} else {
			balance = balance.Add(e.Amount)
		}
	}
	return balance, pending
}

// ListTransactions returns a page of the wallet's ledger, newest first.
func (s *WalletService) ListTransactions(walletID uint, limit, offset int) ([]models.WalletTransaction, int64, error) {
	var total int64
	if err := s.db.Model(&models.WalletTransaction{}).Where("wallet_id = ?", walletID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.WalletTransaction
	if err := s.db.Where("wallet_id = ?", walletID).
		Order("created_at DESC").Limit(limit).Offset(offset).
		Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// AuditWallet replays the full ledger and compares it against the cached
// buckets, returning a conservation error on mismatch.
func (s *WalletService) AuditWallet(walletID uint) error {
	var wallet models.Wallet
	if err := s.db.First(&wallet, walletID).Error; err != nil {
		return err
	}

	var entries []models.WalletTransaction
	if err := s.db.Where("wallet_id = ?", walletID).Find(&entries).Error; err != nil {
		return err
	}

	balance, pending := ReplayBalance(entries)
	if !balance.Equal(wallet.Balance) || !pending.Equal(wallet.PendingBalance) {
		utils.LogError("Ledger mismatch for wallet ID: %d - cached %s/%s, replayed %s/%s",
			walletID, wallet.Balance, wallet.PendingBalance, balance, pending)
		return utils.ConservationError(fmt.Sprintf("wallet %d ledger does not reconcile", walletID))
	}
	return nil
}
