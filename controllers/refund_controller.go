package controllers

import (
	"github.com/Anand-732/MartLedger/services"
	"github.com/Anand-732/MartLedger/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// RefundController exposes the two-stage refund workflow: customer request,
// shop review, admin review.
type RefundController struct {
	refunds *services.RefundService
}

func NewRefundController(refunds *services.RefundService) *RefundController {
	return &RefundController{refunds: refunds}
}

// RequestRefund opens a refund request against one of the customer's paid
// orders.
func (ctl *RefundController) RequestRefund(c *gin.Context) {
	utils.LogInfo("RequestRefund called")
	userID, ok := currentUserID(c)
	if !ok {
		utils.Unauthorized(c, "User not found")
		return
	}
	orderID, ok := idParam(c, "id")
	if !ok {
		utils.BadRequest(c, "Invalid order ID", nil)
		return
	}

	var req struct {
		Amount      decimal.Decimal `json:"amount" binding:"required"`
		ReasonType  string          `json:"reason_type" binding:"required"`
		Description string          `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid refund request for user ID: %d: %v", userID, err)
		utils.BadRequest(c, "Invalid request. Amount and reason type are required", err.Error())
		return
	}

	refund, err := ctl.refunds.RequestRefund(userID, orderID, req.Amount, req.ReasonType, req.Description)
	if err != nil {
		utils.LogError("Refund request failed for order ID: %d: %v", orderID, err)
		utils.RespondError(c, err)
		return
	}

	utils.Created(c, "Refund request submitted successfully", refund)
}

// ListShopRefunds returns refund requests against the shop's orders.
func (ctl *RefundController) ListShopRefunds(c *gin.Context) {
	utils.LogInfo("ListShopRefunds called")
	shopID, ok := currentShopID(c)
	if !ok {
		utils.Unauthorized(c, "Shop not found")
		return
	}

	pagination := utils.NewPagination(c)
	refunds, total, err := ctl.refunds.ListRefundsForShop(shopID, pagination.Limit, pagination.Offset)
	if err != nil {
		utils.LogError("Failed to fetch refunds for shop ID: %d: %v", shopID, err)
		utils.InternalServerError(c, "Failed to fetch refund requests", err.Error())
		return
	}

	utils.SuccessWithPagination(c, "Refund requests retrieved successfully", refunds, total, pagination.Page, pagination.Limit)
}

// ShopReviewRefund records the shop's approve/reject decision.
func (ctl *RefundController) ShopReviewRefund(c *gin.Context) {
	utils.LogInfo("ShopReviewRefund called")
	shopID, ok := currentShopID(c)
	if !ok {
		utils.Unauthorized(c, "Shop not found")
		return
	}
	refundID, ok := idParam(c, "id")
	if !ok {
		utils.BadRequest(c, "Invalid refund ID", nil)
		return
	}

	var req struct {
		Approve      bool   `json:"approve"`
		RejectReason string `json:"reject_reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request body", err.Error())
		return
	}

	refund, err := ctl.refunds.ShopReview(shopID, refundID, req.Approve, req.RejectReason)
	if err != nil {
		utils.LogError("Shop review failed for refund ID: %d: %v", refundID, err)
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, "Refund request reviewed", refund)
}

// ListPendingAdminRefunds returns refund requests awaiting admin review.
func (ctl *RefundController) ListPendingAdminRefunds(c *gin.Context) {
	utils.LogInfo("ListPendingAdminRefunds called")

	pagination := utils.NewPagination(c)
	refunds, total, err := ctl.refunds.ListPendingAdminRefunds(pagination.Limit, pagination.Offset)
	if err != nil {
		utils.LogError("Failed to fetch pending admin refunds: %v", err)
		utils.InternalServerError(c, "Failed to fetch refund requests", err.Error())
		return
	}

	utils.SuccessWithPagination(c, "Refund requests retrieved successfully", refunds, total, pagination.Page, pagination.Limit)
}

// AdminReviewRefund records the admin decision. Approval posts the three
// reversing ledger entries and marks the request Refunded.
func (ctl *RefundController) AdminReviewRefund(c *gin.Context) {
	utils.LogInfo("AdminReviewRefund called")
	refundID, ok := idParam(c, "id")
	if !ok {
		utils.BadRequest(c, "Invalid refund ID", nil)
		return
	}

	var req struct {
		Approve      bool   `json:"approve"`
		RejectReason string `json:"reject_reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request body", err.Error())
		return
	}

	refund, err := ctl.refunds.AdminReview(refundID, req.Approve, req.RejectReason)
	if err != nil {
		utils.LogError("Admin review failed for refund ID: %d: %v", refundID, err)
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, "Refund request reviewed", refund)
}
