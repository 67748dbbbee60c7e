package controllers

import (
	"github.com/Anand-732/MartLedger/models"
	"github.com/Anand-732/MartLedger/services"
	"github.com/Anand-732/MartLedger/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// WalletController exposes wallet balances, the ledger statement and the
// top-up flow.
type WalletController struct {
	wallets *services.WalletService
	topups  *services.TopupService
}

func NewWalletController(wallets *services.WalletService, topups *services.TopupService) *WalletController {
	return &WalletController{wallets: wallets, topups: topups}
}

// GetUserWallet returns the customer's wallet balances and running totals.
func (ctl *WalletController) GetUserWallet(c *gin.Context) {
	utils.LogInfo("GetUserWallet called")
	userID, ok := currentUserID(c)
	if !ok {
		utils.Unauthorized(c, "User not found")
		return
	}
	ctl.respondWallet(c, models.OwnerKindCustomer, userID)
}

// GetShopWallet returns the shop's wallet, including the pending bucket
// holding unreleased order proceeds.
func (ctl *WalletController) GetShopWallet(c *gin.Context) {
	utils.LogInfo("GetShopWallet called")
	shopID, ok := currentShopID(c)
	if !ok {
		utils.Unauthorized(c, "Shop not found")
		return
	}
	ctl.respondWallet(c, models.OwnerKindShop, shopID)
}

func (ctl *WalletController) respondWallet(c *gin.Context, ownerKind string, ownerID uint) {
	wallet, err := ctl.wallets.GetOrCreate(nil, ownerKind, ownerID)
	if err != nil {
		utils.LogError("Failed to get wallet for %s ID: %d: %v", ownerKind, ownerID, err)
		utils.InternalServerError(c, "Failed to get wallet", err.Error())
		return
	}
	utils.Success(c, "Wallet retrieved successfully", wallet)
}

// GetUserWalletStatement returns a page of the customer's ledger.
func (ctl *WalletController) GetUserWalletStatement(c *gin.Context) {
	utils.LogInfo("GetUserWalletStatement called")
	userID, ok := currentUserID(c)
	if !ok {
		utils.Unauthorized(c, "User not found")
		return
	}
	ctl.respondStatement(c, models.OwnerKindCustomer, userID)
}

// GetShopWalletStatement returns a page of the shop's ledger.
func (ctl *WalletController) GetShopWalletStatement(c *gin.Context) {
	utils.LogInfo("GetShopWalletStatement called")
	shopID, ok := currentShopID(c)
	if !ok {
		utils.Unauthorized(c, "Shop not found")
		return
	}
	ctl.respondStatement(c, models.OwnerKindShop, shopID)
}

func (ctl *WalletController) respondStatement(c *gin.Context, ownerKind string, ownerID uint) {
	wallet, err := ctl.wallets.GetOrCreate(nil, ownerKind, ownerID)
	if err != nil {
		utils.LogError("Failed to get wallet for %s ID: %d: %v", ownerKind, ownerID, err)
		utils.InternalServerError(c, "Failed to get wallet", err.Error())
		return
	}

	pagination := utils.NewPagination(c)
	entries, total, err := ctl.wallets.ListTransactions(wallet.ID, pagination.Limit, pagination.Offset)
	if err != nil {
		utils.LogError("Failed to fetch wallet statement for wallet ID: %d: %v", wallet.ID, err)
		utils.InternalServerError(c, "Failed to fetch wallet statement", err.Error())
		return
	}

	utils.SuccessWithPagination(c, "Wallet statement retrieved successfully", gin.H{
		"balance":         wallet.Balance,
		"pending_balance": wallet.PendingBalance,
		"transactions":    entries,
	}, total, pagination.Page, pagination.Limit)
}

// InitiateTopup starts a gateway payment to add money to the customer's
// wallet. The credit lands only after the webhook confirms.
func (ctl *WalletController) InitiateTopup(c *gin.Context) {
	utils.LogInfo("InitiateTopup called")
	userID, ok := currentUserID(c)
	if !ok {
		utils.Unauthorized(c, "User not found")
		return
	}

	var req struct {
		Amount decimal.Decimal `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid topup request for user ID: %d: %v", userID, err)
		utils.BadRequest(c, "Invalid request. Amount is required and must be positive", err.Error())
		return
	}

	result, err := ctl.topups.InitiateTopup(c.Request.Context(), userID, req.Amount)
	if err != nil {
		utils.LogError("Failed to initiate topup for user ID: %d: %v", userID, err)
		utils.RespondError(c, err)
		return
	}

	utils.LogInfo("Topup initiated for user ID: %d, gateway order %s", userID, result.GatewayOrderID)
	utils.Created(c, "Wallet topup order created successfully", result)
}
