package controllers

import (
	"github.com/Anand-732/MartLedger/models"
	"github.com/Anand-732/MartLedger/services"
	"github.com/Anand-732/MartLedger/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// WithdrawalController exposes the payout workflow for wallet owners and
// the admin review actions.
type WithdrawalController struct {
	withdrawals *services.WithdrawalService
}

func NewWithdrawalController(withdrawals *services.WithdrawalService) *WithdrawalController {
	return &WithdrawalController{withdrawals: withdrawals}
}

type withdrawalRequestBody struct {
	Amount decimal.Decimal      `json:"amount" binding:"required"`
	Bank   services.BankDetails `json:"bank" binding:"required"`
}

// RequestUserWithdrawal opens a payout request for the customer's wallet.
func (ctl *WithdrawalController) RequestUserWithdrawal(c *gin.Context) {
	utils.LogInfo("RequestUserWithdrawal called")
	userID, ok := currentUserID(c)
	if !ok {
		utils.Unauthorized(c, "User not found")
		return
	}
	ctl.request(c, models.OwnerKindCustomer, userID)
}

// RequestShopWithdrawal opens a payout request for the shop's wallet.
func (ctl *WithdrawalController) RequestShopWithdrawal(c *gin.Context) {
	utils.LogInfo("RequestShopWithdrawal called")
	shopID, ok := currentShopID(c)
	if !ok {
		utils.Unauthorized(c, "Shop not found")
		return
	}
	ctl.request(c, models.OwnerKindShop, shopID)
}

func (ctl *WithdrawalController) request(c *gin.Context, ownerKind string, ownerID uint) {
	var req withdrawalRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid withdrawal request for %s ID: %d: %v", ownerKind, ownerID, err)
		utils.BadRequest(c, "Invalid request. Amount and bank details are required", err.Error())
		return
	}

	withdrawal, err := ctl.withdrawals.RequestWithdrawal(ownerKind, ownerID, req.Amount, req.Bank)
	if err != nil {
		utils.LogError("Withdrawal request failed for %s ID: %d: %v", ownerKind, ownerID, err)
		utils.RespondError(c, err)
		return
	}

	utils.Created(c, "Withdrawal request submitted successfully", withdrawal)
}

// ListUserWithdrawals returns the customer's payout requests.
func (ctl *WithdrawalController) ListUserWithdrawals(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.Unauthorized(c, "User not found")
		return
	}
	ctl.list(c, models.OwnerKindCustomer, userID)
}

// ListShopWithdrawals returns the shop's payout requests.
func (ctl *WithdrawalController) ListShopWithdrawals(c *gin.Context) {
	shopID, ok := currentShopID(c)
	if !ok {
		utils.Unauthorized(c, "Shop not found")
		return
	}
	ctl.list(c, models.OwnerKindShop, shopID)
}

// ListAllWithdrawals returns every payout request, optionally filtered by
// status. Admin only.
func (ctl *WithdrawalController) ListAllWithdrawals(c *gin.Context) {
	ctl.list(c, "", 0)
}

func (ctl *WithdrawalController) list(c *gin.Context, ownerKind string, ownerID uint) {
	utils.LogInfo("ListWithdrawals called for %s ID: %d", ownerKind, ownerID)

	pagination := utils.NewPagination(c)
	withdrawals, total, err := ctl.withdrawals.ListWithdrawals(
		ownerKind, ownerID, c.Query("status"), pagination.Limit, pagination.Offset)
	if err != nil {
		utils.LogError("Failed to fetch withdrawals: %v", err)
		utils.InternalServerError(c, "Failed to fetch withdrawal requests", err.Error())
		return
	}

	utils.SuccessWithPagination(c, "Withdrawal requests retrieved successfully", withdrawals, total, pagination.Page, pagination.Limit)
}

// ApproveWithdrawal moves a pending request to Approved. Admin only.
func (ctl *WithdrawalController) ApproveWithdrawal(c *gin.Context) {
	utils.LogInfo("ApproveWithdrawal called")
	withdrawalID, ok := idParam(c, "id")
	if !ok {
		utils.BadRequest(c, "Invalid withdrawal ID", nil)
		return
	}

	withdrawal, err := ctl.withdrawals.Approve(withdrawalID)
	if err != nil {
		utils.LogError("Failed to approve withdrawal ID: %d: %v", withdrawalID, err)
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, "Withdrawal request approved", withdrawal)
}

// RejectWithdrawal terminally rejects a pending request. Admin only.
func (ctl *WithdrawalController) RejectWithdrawal(c *gin.Context) {
	utils.LogInfo("RejectWithdrawal called")
	withdrawalID, ok := idParam(c, "id")
	if !ok {
		utils.BadRequest(c, "Invalid withdrawal ID", nil)
		return
	}

	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Reject reason is required", err.Error())
		return
	}

	withdrawal, err := ctl.withdrawals.Reject(withdrawalID, req.Reason)
	if err != nil {
		utils.LogError("Failed to reject withdrawal ID: %d: %v", withdrawalID, err)
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, "Withdrawal request rejected", withdrawal)
}

// CompleteWithdrawal posts the payout debit for an approved request. Admin
// only.
func (ctl *WithdrawalController) CompleteWithdrawal(c *gin.Context) {
	utils.LogInfo("CompleteWithdrawal called")
	withdrawalID, ok := idParam(c, "id")
	if !ok {
		utils.BadRequest(c, "Invalid withdrawal ID", nil)
		return
	}

	withdrawal, err := ctl.withdrawals.Complete(withdrawalID)
	if err != nil {
		utils.LogError("Failed to complete withdrawal ID: %d: %v", withdrawalID, err)
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, "Withdrawal completed", withdrawal)
}
