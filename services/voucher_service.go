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

// VoucherService validates voucher codes and distributes the discount
// across the per-shop orders of a checkout.
type VoucherService struct {
	db *gorm.DB
}

func NewVoucherService(db *gorm.DB) *VoucherService {
	return &VoucherService{db: db}
}

// OrderAmount is one shop group's totals supplied to Preview before the
// orders exist.
type OrderAmount struct {
	ShopID      uint
	Subtotal    decimal.Decimal
	ShippingFee decimal.Decimal
}

// OrderDiscount is one shop group's share of the total discount.
type OrderDiscount struct {
	ShopID   uint
	Discount decimal.Decimal
}

// VoucherApplyResult is the outcome of a successful Preview.
type VoucherApplyResult struct {
	Voucher       *models.Voucher
	TotalDiscount decimal.Decimal
	PerOrder      []OrderDiscount
}

// Preview validates the voucher for this user and basket and computes the
// per-order discount split. It never mutates usage counters; that happens
// in Commit once the orders are durably created, so an abandoned cart does
// not hold a voucher slot.
func (s *VoucherService) Preview(code string, userID uint, orders []OrderAmount) (*VoucherApplyResult, error) {
	if code == "" || len(orders) == 0 {
		return nil, utils.ValidationFailed("voucher code and orders are required", nil)
	}

	var voucher models.Voucher
	if err := s.db.Where("code = ?", code).First(&voucher).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.VoucherInvalidError(utils.VoucherNotFound, "Invalid voucher code")
		}
		return nil, err
	}

	var usage models.UserVoucher
	useCount := 0
	if err := s.db.Where("user_id = ? AND voucher_id = ?", userID, voucher.ID).First(&usage).Error; err == nil {
		useCount = usage.UseCount
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	combinedSubtotal := decimal.Zero
	for _, o := range orders {
		combinedSubtotal = combinedSubtotal.Add(o.Subtotal)
	}

	if err := validateVoucher(&voucher, useCount, combinedSubtotal, time.Now()); err != nil {
		return nil, err
	}

	totalDiscount := computeDiscount(&voucher, combinedSubtotal)

	weights := make([]decimal.Decimal, len(orders))
	for i, o := range orders {
		weights[i] = o.Subtotal
	}
	amounts := utils.AllocateProportionally(totalDiscount, weights)

	perOrder := make([]OrderDiscount, len(orders))
	for i, o := range orders {
		perOrder[i] = OrderDiscount{ShopID: o.ShopID, Discount: amounts[i]}
	}

	if !utils.SumMoney(amounts).Equal(totalDiscount) {
		utils.LogError("Discount allocation does not sum for voucher %s: total %s", voucher.Code, totalDiscount)
		return nil, utils.ConservationError("discount allocation does not sum to total")
	}

	return &VoucherApplyResult{
		Voucher:       &voucher,
		TotalDiscount: totalDiscount,
		PerOrder:      perOrder,
	}, nil
}

// validateVoucher runs the validation chain in order; the first failure
// wins and each maps to a distinct rejection reason.
func validateVoucher(voucher *models.Voucher, useCount int, combinedSubtotal decimal.Decimal, now time.Time) error {
	if !voucher.IsActive {
		return utils.VoucherInvalidError(utils.VoucherInactive, "Voucher is not active")
	}
	if now.Before(voucher.StartDate) {
		return utils.VoucherInvalidError(utils.VoucherNotStarted, "Voucher is not yet valid")
	}
	if now.After(voucher.EndDate) {
		return utils.VoucherInvalidError(utils.VoucherExpired, "Voucher has expired")
	}
	if voucher.QuantityAvailable <= 0 {
		return utils.VoucherInvalidError(utils.VoucherExhausted, "Voucher has been fully redeemed")
	}
	limit := voucher.UsageLimitPerUser
	if limit <= 0 {
		limit = 1
	}
	if useCount >= limit {
		return utils.VoucherInvalidError(utils.VoucherLimitReached, "You have already used this voucher")
	}
	if voucher.MinOrderAmount.IsPositive() && combinedSubtotal.LessThan(voucher.MinOrderAmount) {
		return utils.VoucherInvalidError(utils.VoucherBelowMinOrder,
			fmt.Sprintf("Order total is below the minimum of %s for this voucher", voucher.MinOrderAmount))
	}
	return nil
}

// computeDiscount applies the voucher against the combined subtotal:
// raw value by discount type, capped at MaxDiscountAmount when set, then
// capped at the combined subtotal since a discount can never exceed the
// payable amount.
func computeDiscount(voucher *models.Voucher, combinedSubtotal decimal.Decimal) decimal.Decimal {
	var raw decimal.Decimal
	if voucher.DiscountType == models.DiscountTypePercentage {
		raw = utils.ApplyRate(combinedSubtotal, voucher.DiscountValue.Div(decimal.NewFromInt(100)))
	} else {
		raw = voucher.DiscountValue
	}

	if voucher.MaxDiscountAmount.IsPositive() && raw.GreaterThan(voucher.MaxDiscountAmount) {
		raw = voucher.MaxDiscountAmount
	}
	if raw.GreaterThan(combinedSubtotal) {
		raw = combinedSubtotal
	}
	return utils.RoundMoney(raw)
}

// Commit consumes one voucher slot for the user. The voucher row is locked
// so concurrent checkouts cannot oversell QuantityAvailable, and the
// availability checks are re-run under the lock.
func (s *VoucherService) Commit(tx *gorm.DB, voucherID, userID uint) error {
	if tx == nil {
		tx = s.db
	}

	var voucher models.Voucher
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&voucher, voucherID).Error; err != nil {
		return utils.WrapError(err, "failed to lock voucher")
	}

	if voucher.QuantityAvailable <= 0 {
		return utils.VoucherInvalidError(utils.VoucherExhausted, "Voucher has been fully redeemed")
	}

	var usage models.UserVoucher
	err := tx.Where("user_id = ? AND voucher_id = ?", userID, voucherID).First(&usage).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		usage = models.UserVoucher{UserID: userID, VoucherID: voucherID}
	} else if err != nil {
		return err
	}

	limit := voucher.UsageLimitPerUser
	if limit <= 0 {
		limit = 1
	}
	if usage.UseCount >= limit {
		return utils.VoucherInvalidError(utils.VoucherLimitReached, "You have already used this voucher")
	}

	now := time.Now()
	usage.UseCount++
	usage.IsUsed = true
	usage.UsedAt = &now
	if err := tx.Save(&usage).Error; err != nil {
		return utils.WrapError(err, "failed to record voucher usage")
	}

	if err := tx.Model(&models.Voucher{}).Where("id = ?", voucherID).
		UpdateColumn("quantity_available", gorm.Expr("quantity_available - ?", 1)).Error; err != nil {
		return utils.WrapError(err, "failed to decrement voucher quantity")
	}

	utils.LogInfo("Committed voucher ID: %d for user ID: %d, use count: %d", voucherID, userID, usage.UseCount)
	return nil
}
