package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/Anand-732/MartLedger/config"
	"github.com/Anand-732/MartLedger/models"
	"github.com/Anand-732/MartLedger/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SettlementService splits a paid order's value into platform fee and shop
// proceeds and posts both to the respective wallets.
type SettlementService struct {
	db      *gorm.DB
	wallets *WalletService
	cfg     *config.Config
}

func NewSettlementService(db *gorm.DB, wallets *WalletService, cfg *config.Config) *SettlementService {
	return &SettlementService{db: db, wallets: wallets, cfg: cfg}
}

// ComputeFeeBreakdown splits total into (platformFee, shopAmount).
// platformFee is rounded half-up; shopAmount absorbs the remainder so the
// two always sum to total exactly.
func ComputeFeeBreakdown(total, feePercent decimal.Decimal) (platformFee, shopAmount decimal.Decimal) {
	platformFee = utils.ApplyRate(total, feePercent)
	if platformFee.GreaterThan(total) {
		platformFee = total
	}
	shopAmount = total.Sub(platformFee)
	return platformFee, shopAmount
}

// RecordSettlement posts the fee breakdown for an order that just turned
// Paid: shop proceeds go to the shop wallet's pending bucket, the
// commission to the platform wallet. Both postings carry the transaction id
// as idempotency reference, so a replayed webhook is a no-op. Runs inside
// the caller's transaction.
func (s *SettlementService) RecordSettlement(tx *gorm.DB, order *models.Order, paymentMethod, gatewayRef string) (*models.Transaction, error) {
	if tx == nil {
		tx = s.db
	}

	var existing models.Transaction
	err := tx.Where("order_id = ?", order.ID).First(&existing).Error
	if err == nil {
		utils.LogInfo("Settlement already recorded for order ID: %d, transaction ID: %d", order.ID, existing.ID)
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	platformFee, shopAmount := ComputeFeeBreakdown(order.Total, s.cfg.PlatformFeePercent)
	if !platformFee.Add(shopAmount).Equal(order.Total) {
		utils.LogError("Fee breakdown does not sum for order ID: %d - total %s, fee %s, shop %s",
			order.ID, order.Total, platformFee, shopAmount)
		return nil, utils.ConservationError("fee breakdown does not sum to order total")
	}

	now := time.Now()
	txn := models.Transaction{
		OrderID:            order.ID,
		TotalAmount:        order.Total,
		PlatformFeePercent: s.cfg.PlatformFeePercent,
		PlatformFeeAmount:  platformFee,
		ShopAmount:         shopAmount,
		Status:             models.TransactionStatusCompleted,
		PaymentMethod:      paymentMethod,
		GatewayRef:         gatewayRef,
		CompletedAt:        &now,
	}
	if err := tx.Create(&txn).Error; err != nil {
		return nil, utils.WrapError(err, "failed to create transaction")
	}

	reference := fmt.Sprintf("TXN-%d", txn.ID)
	orderID := order.ID

	if _, err := s.wallets.Post(tx, Posting{
		OwnerKind:   models.OwnerKindShop,
		OwnerID:     order.ShopID,
		Bucket:      models.BucketPending,
		Amount:      shopAmount,
		Reason:      models.ReasonShopSettlement,
		Reference:   reference,
		OrderID:     &orderID,
		Description: fmt.Sprintf("Proceeds for order #%d", order.ID),
	}); err != nil {
		return nil, err
	}

	if _, err := s.wallets.Post(tx, Posting{
		OwnerKind:   models.OwnerKindPlatform,
		OwnerID:     0,
		Bucket:      models.BucketBalance,
		Amount:      platformFee,
		Reason:      models.ReasonPlatformCommission,
		Reference:   reference,
		OrderID:     &orderID,
		Description: fmt.Sprintf("Commission for order #%d", order.ID),
	}); err != nil {
		return nil, err
	}

	utils.LogInfo("Recorded settlement for order ID: %d - total %s, fee %s, shop %s",
		order.ID, order.Total, platformFee, shopAmount)
	return &txn, nil
}

// ReleasePending moves an order's shop proceeds from the pending bucket to
// the available balance once the refund window has elapsed. force skips the
// window check for an explicit release action.
func (s *SettlementService) ReleasePending(orderID uint, force bool) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var txn models.Transaction
		if err := tx.Where("order_id = ?", orderID).First(&txn).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFoundAppError("No settlement found for this order")
			}
			return err
		}
		if txn.PendingReleased {
			return utils.StateTransitionError("Pending balance already released for this order")
		}

		var order models.Order
		if err := tx.First(&order, orderID).Error; err != nil {
			return err
		}

		if !force {
			if order.PaidAt == nil || time.Since(*order.PaidAt) < s.cfg.RefundWindow {
				return utils.StateTransitionError("Refund window has not elapsed for this order")
			}
		}

		// The refunded share never reaches the available balance; release
		// whatever is left of the shop amount.
		releasable := txn.ShopAmount.Sub(refundedShopShare(tx, &txn))
		if releasable.IsNegative() {
			releasable = decimal.Zero
		}

		if releasable.IsPositive() {
			if _, err := s.wallets.Post(tx, Posting{
				OwnerKind:   models.OwnerKindShop,
				OwnerID:     order.ShopID,
				Bucket:      models.BucketPending,
				Amount:      releasable.Neg(),
				Reason:      models.ReasonPendingRelease,
				Reference:   fmt.Sprintf("RELEASE-TXN-%d-OUT", txn.ID),
				OrderID:     &order.ID,
				Description: fmt.Sprintf("Release hold for order #%d", order.ID),
			}); err != nil {
				return err
			}
			if _, err := s.wallets.Post(tx, Posting{
				OwnerKind:   models.OwnerKindShop,
				OwnerID:     order.ShopID,
				Bucket:      models.BucketBalance,
				Amount:      releasable,
				Reason:      models.ReasonPendingRelease,
				Reference:   fmt.Sprintf("RELEASE-TXN-%d-IN", txn.ID),
				OrderID:     &order.ID,
				Description: fmt.Sprintf("Proceeds released for order #%d", order.ID),
			}); err != nil {
				return err
			}
		}

		if err := tx.Model(&txn).Update("pending_released", true).Error; err != nil {
			return err
		}

		utils.LogInfo("Released %s pending for order ID: %d", releasable, orderID)
		return nil
	})
}

// ReleaseDuePending releases every settled order whose refund window has
// elapsed. Intended for a periodic job; returns how many were released.
func (s *SettlementService) ReleaseDuePending() (int, error) {
	cutoff := time.Now().Add(-s.cfg.RefundWindow)

	var orderIDs []uint
	err := s.db.Model(&models.Transaction{}).
		Joins("JOIN orders ON orders.id = transactions.order_id").
		Where("transactions.pending_released = ? AND orders.paid_at <= ?", false, cutoff).
		Pluck("transactions.order_id", &orderIDs).Error
	if err != nil {
		return 0, err
	}

	released := 0
	for _, id := range orderIDs {
		if err := s.ReleasePending(id, false); err != nil {
			utils.LogError("Failed to release pending for order ID: %d: %v", id, err)
			continue
		}
		released++
	}
	return released, nil
}

// refundedShopShare sums the shop-side debits of completed refunds for the
// settled order.
func refundedShopShare(tx *gorm.DB, txn *models.Transaction) decimal.Decimal {
	var entries []models.WalletTransaction
	if err := tx.Where("order_id = ? AND reason = ?", txn.OrderID, models.ReasonRefundShop).
		Find(&entries).Error; err != nil {
		return decimal.Zero
	}

	sum := decimal.Zero
	for _, e := range entries {
		sum = sum.Add(e.Amount.Abs())
	}
	return sum
}
