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

// RefundService drives the two-stage refund approval workflow and posts
// the reversing ledger entries when a refund completes.
type RefundService struct {
	db      *gorm.DB
	wallets *WalletService
}

func NewRefundService(db *gorm.DB, wallets *WalletService) *RefundService {
	return &RefundService{db: db, wallets: wallets}
}

// RequestRefund opens a refund request against a paid order. The amount is
// validated against what is still refundable: the order total minus all
// previously approved refunds.
func (s *RefundService) RequestRefund(userID, orderID uint, amount decimal.Decimal, reasonType, description string) (*models.RefundRequest, error) {
	if !amount.IsPositive() {
		return nil, utils.ValidationFailed("Refund amount must be positive", nil)
	}

	var refund *models.RefundRequest
	err := s.db.Transaction(func(tx *gorm.DB) error {
		order, err := lockOrder(tx, orderID)
		if err != nil {
			return err
		}
		if order.UserID != userID {
			return utils.NotFoundAppError("Order not found")
		}
		if order.PaidAt == nil || order.Status == models.OrderStatusCancelled {
			return utils.StateTransitionError("Only a paid order can be refunded")
		}

		approved, err := approvedRefundTotal(tx, orderID, 0)
		if err != nil {
			return err
		}
		if err := refundWithinRemaining(amount, order.Total, approved); err != nil {
			return err
		}

		refund = &models.RefundRequest{
			OrderID:           orderID,
			UserID:            userID,
			RefundAmount:      amount,
			ReasonType:        reasonType,
			ReasonDescription: description,
			Status:            models.RefundStatusPendingShop,
		}
		return tx.Create(refund).Error
	})
	if err != nil {
		return nil, err
	}

	utils.LogInfo("Refund request ID: %d created for order ID: %d, amount %s", refund.ID, orderID, amount)
	return refund, nil
}

// ShopReview records the shop's decision. Approval forwards the request to
// admin review; rejection is terminal.
func (s *RefundService) ShopReview(shopID, refundID uint, approve bool, rejectReason string) (*models.RefundRequest, error) {
	var refund *models.RefundRequest
	err := s.db.Transaction(func(tx *gorm.DB) error {
		r, order, err := lockRefund(tx, refundID)
		if err != nil {
			return err
		}
		if order.ShopID != shopID {
			return utils.NotFoundAppError("Refund request not found")
		}
		if r.Status != models.RefundStatusPendingShop {
			return utils.StateTransitionError(
				fmt.Sprintf("Refund %d is %s, expected %s", r.ID, r.Status, models.RefundStatusPendingShop))
		}

		now := time.Now()
		r.ShopReviewedAt = &now
		if approve {
			r.Status = models.RefundStatusPendingAdmin
		} else {
			if rejectReason == "" {
				return utils.ValidationFailed("Reject reason is required", nil)
			}
			r.Status = models.RefundStatusShopRejected
			r.RejectReason = rejectReason
		}

		if err := tx.Save(r).Error; err != nil {
			return err
		}
		refund = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.LogInfo("Refund ID: %d shop-reviewed by shop ID: %d, status: %s", refundID, shopID, refund.Status)
	return refund, nil
}

// AdminReview records the admin decision. Approval completes the refund:
// reversing postings against the shop and platform wallets and a credit to
// the customer, all under the refund id as idempotency reference.
func (s *RefundService) AdminReview(refundID uint, approve bool, rejectReason string) (*models.RefundRequest, error) {
	var refund *models.RefundRequest
	err := s.db.Transaction(func(tx *gorm.DB) error {
		r, order, err := lockRefund(tx, refundID)
		if err != nil {
			return err
		}
		if r.Status != models.RefundStatusPendingAdmin {
			return utils.StateTransitionError(
				fmt.Sprintf("Refund %d is %s, expected %s", r.ID, r.Status, models.RefundStatusPendingAdmin))
		}

		now := time.Now()
		r.AdminReviewedAt = &now
		if !approve {
			if rejectReason == "" {
				return utils.ValidationFailed("Reject reason is required", nil)
			}
			r.Status = models.RefundStatusAdminRejected
			r.RejectReason = rejectReason
			if err := tx.Save(r).Error; err != nil {
				return err
			}
			refund = r
			return nil
		}

		// The creation-time check no longer holds once other requests on
		// the same order were approved in between; re-check what is still
		// refundable under the order lock before any posting.
		approved, err := approvedRefundTotal(tx, r.OrderID, r.ID)
		if err != nil {
			return err
		}
		if err := refundWithinRemaining(r.RefundAmount, order.Total, approved); err != nil {
			return err
		}

		if err := s.completeRefund(tx, r, order); err != nil {
			return err
		}
		r.Status = models.RefundStatusRefunded
		r.RefundedAt = &now
		if err := tx.Save(r).Error; err != nil {
			return err
		}
		refund = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.LogInfo("Refund ID: %d admin-reviewed, status: %s", refundID, refund.Status)
	return refund, nil
}

// completeRefund posts the three reversing entries. The refund amount is
// split between shop and platform in the same proportion as the original
// settlement, so commission is returned pro rata. All postings share the
// refund id reference; a retried completion never double-pays.
func (s *RefundService) completeRefund(tx *gorm.DB, refund *models.RefundRequest, order *models.Order) error {
	var txn models.Transaction
	if err := tx.Where("order_id = ?", order.ID).First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.StateTransitionError("Order has no settlement to refund against")
		}
		return err
	}

	shopShare, platformShare := SplitRefund(refund.RefundAmount, txn.ShopAmount, txn.PlatformFeeAmount)
	if !shopShare.Add(platformShare).Equal(refund.RefundAmount) {
		utils.LogError("Refund split does not sum for refund ID: %d - amount %s, shop %s, platform %s",
			refund.ID, refund.RefundAmount, shopShare, platformShare)
		return utils.ConservationError("refund split does not sum to refund amount")
	}

	reference := fmt.Sprintf("REFUND-%d", refund.ID)
	orderID := order.ID

	// Shop proceeds still under the refund-window hold come out of the
	// pending bucket; released proceeds come out of the balance.
	shopBucket := models.BucketPending
	if txn.PendingReleased {
		shopBucket = models.BucketBalance
	}

	if shopShare.IsPositive() {
		if _, err := s.wallets.Post(tx, Posting{
			OwnerKind:   models.OwnerKindShop,
			OwnerID:     order.ShopID,
			Bucket:      shopBucket,
			Amount:      shopShare.Neg(),
			Reason:      models.ReasonRefundShop,
			Reference:   reference,
			OrderID:     &orderID,
			Description: fmt.Sprintf("Refund for order #%d", order.ID),
		}); err != nil {
			return err
		}
	}

	if platformShare.IsPositive() {
		if _, err := s.wallets.Post(tx, Posting{
			OwnerKind:   models.OwnerKindPlatform,
			OwnerID:     0,
			Bucket:      models.BucketBalance,
			Amount:      platformShare.Neg(),
			Reason:      models.ReasonRefundCommission,
			Reference:   reference,
			OrderID:     &orderID,
			Description: fmt.Sprintf("Commission reversal for order #%d", order.ID),
		}); err != nil {
			return err
		}
	}

	if _, err := s.wallets.Post(tx, Posting{
		OwnerKind:   models.OwnerKindCustomer,
		OwnerID:     order.UserID,
		Bucket:      models.BucketBalance,
		Amount:      refund.RefundAmount,
		Reason:      models.ReasonRefundCustomer,
		Reference:   reference,
		OrderID:     &orderID,
		Description: fmt.Sprintf("Refund for order #%d", order.ID),
	}); err != nil {
		return err
	}

	return nil
}

// SplitRefund divides a refund between shop and platform proportionally to
// the original fee split, remainder to the shop side.
func SplitRefund(refundAmount, shopAmount, platformFeeAmount decimal.Decimal) (shopShare, platformShare decimal.Decimal) {
	amounts := utils.AllocateProportionally(refundAmount, []decimal.Decimal{shopAmount, platformFeeAmount})
	return amounts[0], amounts[1]
}

// RemainingRefundable returns how much of the order total has not been
// claimed by approved refunds yet.
func RemainingRefundable(orderTotal decimal.Decimal, approvedRefunds []decimal.Decimal) decimal.Decimal {
	return orderTotal.Sub(utils.SumMoney(approvedRefunds))
}

// refundWithinRemaining guards a refund amount against what is still
// refundable on the order. Several open requests can each pass the
// creation-time check against the full total, so approval runs it again.
func refundWithinRemaining(amount, orderTotal, approvedTotal decimal.Decimal) error {
	remaining := orderTotal.Sub(approvedTotal)
	if amount.GreaterThan(remaining) {
		return utils.StateTransitionError(
			fmt.Sprintf("Refund amount %s exceeds remaining refundable %s", amount, remaining))
	}
	return nil
}

// ListRefundsForShop returns a page of refund requests against a shop's
// orders.
func (s *RefundService) ListRefundsForShop(shopID uint, limit, offset int) ([]models.RefundRequest, int64, error) {
	base := s.db.Model(&models.RefundRequest{}).
		Joins("JOIN orders ON orders.id = refund_requests.order_id").
		Where("orders.shop_id = ?", shopID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var refunds []models.RefundRequest
	if err := base.Order("refund_requests.created_at DESC").Limit(limit).Offset(offset).
		Find(&refunds).Error; err != nil {
		return nil, 0, err
	}
	return refunds, total, nil
}

// ListPendingAdminRefunds returns refund requests awaiting admin review.
func (s *RefundService) ListPendingAdminRefunds(limit, offset int) ([]models.RefundRequest, int64, error) {
	var total int64
	if err := s.db.Model(&models.RefundRequest{}).
		Where("status = ?", models.RefundStatusPendingAdmin).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var refunds []models.RefundRequest
	if err := s.db.Where("status = ?", models.RefundStatusPendingAdmin).
		Order("created_at ASC").Limit(limit).Offset(offset).
		Find(&refunds).Error; err != nil {
		return nil, 0, err
	}
	return refunds, total, nil
}

// approvedRefundTotal sums refunds already granted (or in flight past
// admin approval) for the order, excluding one request when its own
// approval is being decided.
func approvedRefundTotal(tx *gorm.DB, orderID, excludeRefundID uint) (decimal.Decimal, error) {
	query := tx.Where("order_id = ? AND status IN ?", orderID,
		[]string{models.RefundStatusAdminApproved, models.RefundStatusRefunded})
	if excludeRefundID != 0 {
		query = query.Where("id <> ?", excludeRefundID)
	}

	var refunds []models.RefundRequest
	if err := query.Find(&refunds).Error; err != nil {
		return decimal.Zero, err
	}

	sum := decimal.Zero
	for _, r := range refunds {
		sum = sum.Add(r.RefundAmount)
	}
	return sum, nil
}

func lockRefund(tx *gorm.DB, refundID uint) (*models.RefundRequest, *models.Order, error) {
	var refund models.RefundRequest
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&refund, refundID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, utils.NotFoundAppError("Refund request not found")
		}
		return nil, nil, err
	}

	// The order is locked too, so two approvals against the same order
	// serialize and the remaining-refundable check reads a settled sum.
	var order models.Order
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, refund.OrderID).Error; err != nil {
		return nil, nil, err
	}
	return &refund, &order, nil
}
