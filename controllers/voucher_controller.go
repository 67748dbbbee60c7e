package controllers

import (
	"time"

	"github.com/Anand-732/MartLedger/models"
	"github.com/Anand-732/MartLedger/services"
	"github.com/Anand-732/MartLedger/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// VoucherController exposes voucher preview for customers and voucher
// management for admins.
type VoucherController struct {
	db       *gorm.DB
	vouchers *services.VoucherService
}

func NewVoucherController(db *gorm.DB, vouchers *services.VoucherService) *VoucherController {
	return &VoucherController{db: db, vouchers: vouchers}
}

// PreviewVoucher validates a voucher against a prospective basket and
// returns the discount split without consuming a usage slot.
func (ctl *VoucherController) PreviewVoucher(c *gin.Context) {
	utils.LogInfo("PreviewVoucher called")
	userID, ok := currentUserID(c)
	if !ok {
		utils.Unauthorized(c, "User not found")
		return
	}

	var req struct {
		Code   string `json:"code" binding:"required"`
		Orders []struct {
			ShopID      uint            `json:"shop_id" binding:"required"`
			Subtotal    decimal.Decimal `json:"subtotal" binding:"required"`
			ShippingFee decimal.Decimal `json:"shipping_fee"`
		} `json:"orders" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid voucher preview request for user ID: %d: %v", userID, err)
		utils.BadRequest(c, "Invalid request. Code and orders are required", err.Error())
		return
	}

	amounts := make([]services.OrderAmount, len(req.Orders))
	for i, o := range req.Orders {
		amounts[i] = services.OrderAmount{ShopID: o.ShopID, Subtotal: o.Subtotal, ShippingFee: o.ShippingFee}
	}

	result, err := ctl.vouchers.Preview(req.Code, userID, amounts)
	if err != nil {
		utils.LogError("Voucher preview failed for user ID: %d, code %s: %v", userID, req.Code, err)
		utils.RespondError(c, err)
		return
	}

	utils.LogInfo("Voucher %s previewed for user ID: %d, discount %s", req.Code, userID, result.TotalDiscount)
	utils.Success(c, "Voucher is valid", gin.H{
		"code":           result.Voucher.Code,
		"total_discount": result.TotalDiscount,
		"per_order":      result.PerOrder,
	})
}

// CreateVoucher creates a new voucher. Admin only.
func (ctl *VoucherController) CreateVoucher(c *gin.Context) {
	utils.LogInfo("CreateVoucher called")

	var req struct {
		Code              string          `json:"code" binding:"required"`
		DiscountType      string          `json:"discount_type" binding:"required"`
		DiscountValue     decimal.Decimal `json:"discount_value" binding:"required"`
		MaxDiscountAmount decimal.Decimal `json:"max_discount_amount"`
		MinOrderAmount    decimal.Decimal `json:"min_order_amount"`
		UsageLimitPerUser int             `json:"usage_limit_per_user"`
		QuantityAvailable int             `json:"quantity_available" binding:"required"`
		StartDate         time.Time       `json:"start_date" binding:"required"`
		EndDate           time.Time       `json:"end_date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid voucher creation request: %v", err)
		utils.BadRequest(c, "Invalid request. Code, type, value, quantity and dates are required", err.Error())
		return
	}

	if req.DiscountType != models.DiscountTypePercentage && req.DiscountType != models.DiscountTypeFixed {
		utils.BadRequest(c, "Discount type must be percentage or fixed", nil)
		return
	}
	if !req.DiscountValue.IsPositive() {
		utils.BadRequest(c, "Discount value must be positive", nil)
		return
	}
	if !req.EndDate.After(req.StartDate) {
		utils.BadRequest(c, "End date must be after start date", nil)
		return
	}

	voucher := models.Voucher{
		Code:              req.Code,
		DiscountType:      req.DiscountType,
		DiscountValue:     req.DiscountValue,
		MaxDiscountAmount: req.MaxDiscountAmount,
		MinOrderAmount:    req.MinOrderAmount,
		UsageLimitPerUser: req.UsageLimitPerUser,
		QuantityAvailable: req.QuantityAvailable,
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		IsActive:          true,
	}
	if err := ctl.db.Create(&voucher).Error; err != nil {
		utils.LogError("Failed to create voucher %s: %v", req.Code, err)
		utils.Conflict(c, "A voucher with this code already exists", err.Error())
		return
	}

	utils.LogInfo("Voucher %s created with ID: %d", voucher.Code, voucher.ID)
	utils.Created(c, "Voucher created successfully", voucher)
}

// ListVouchers returns a page of vouchers. Admin only.
func (ctl *VoucherController) ListVouchers(c *gin.Context) {
	utils.LogInfo("ListVouchers called")
	pagination := utils.NewPagination(c)

	var total int64
	if err := ctl.db.Model(&models.Voucher{}).Count(&total).Error; err != nil {
		utils.InternalServerError(c, "Failed to count vouchers", err.Error())
		return
	}

	var vouchers []models.Voucher
	if err := ctl.db.Order("created_at DESC").
		Limit(pagination.Limit).Offset(pagination.Offset).
		Find(&vouchers).Error; err != nil {
		utils.LogError("Failed to fetch vouchers: %v", err)
		utils.InternalServerError(c, "Failed to fetch vouchers", err.Error())
		return
	}

	utils.SuccessWithPagination(c, "Vouchers retrieved successfully", vouchers, total, pagination.Page, pagination.Limit)
}

// DeactivateVoucher turns off a voucher without deleting its usage history.
// Admin only.
func (ctl *VoucherController) DeactivateVoucher(c *gin.Context) {
	utils.LogInfo("DeactivateVoucher called")
	voucherID, ok := idParam(c, "id")
	if !ok {
		utils.BadRequest(c, "Invalid voucher ID", nil)
		return
	}

	res := ctl.db.Model(&models.Voucher{}).Where("id = ?", voucherID).Update("is_active", false)
	if res.Error != nil {
		utils.LogError("Failed to deactivate voucher ID: %d: %v", voucherID, res.Error)
		utils.InternalServerError(c, "Failed to deactivate voucher", res.Error.Error())
		return
	}
	if res.RowsAffected == 0 {
		utils.NotFound(c, "Voucher not found")
		return
	}

	utils.LogInfo("Voucher ID: %d deactivated", voucherID)
	utils.Success(c, "Voucher deactivated successfully", nil)
}
