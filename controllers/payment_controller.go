package controllers

import (
	"errors"

	"github.com/Anand-732/MartLedger/models"
	"github.com/Anand-732/MartLedger/services"
	"github.com/Anand-732/MartLedger/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// PaymentController handles the gateway webhook for both checkout payments
// and wallet top-ups.
type PaymentController struct {
	db       *gorm.DB
	checkout *services.CheckoutService
	topups   *services.TopupService
	gateway  services.PaymentGateway
}

func NewPaymentController(db *gorm.DB, checkout *services.CheckoutService,
	topups *services.TopupService, gateway services.PaymentGateway) *PaymentController {
	return &PaymentController{db: db, checkout: checkout, topups: topups, gateway: gateway}
}

// GatewayWebhook verifies the callback signature and settles whatever the
// gateway order belongs to: a wallet top-up or a checkout. Replayed
// webhooks are no-ops.
func (ctl *PaymentController) GatewayWebhook(c *gin.Context) {
	utils.LogInfo("GatewayWebhook called")

	var payload services.GatewayCallback
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.LogError("Invalid webhook payload: %v", err)
		utils.BadRequest(c, "Invalid webhook payload", err.Error())
		return
	}

	result, err := ctl.gateway.VerifyCallback(payload)
	if err != nil {
		utils.LogError("Webhook signature verification failed for gateway order %s: %v",
			payload.GatewayOrderID, err)
		utils.RespondError(c, err)
		return
	}
	utils.LogInfo("Webhook verified for gateway order %s, status: %s", result.GatewayOrderID, result.Status)

	// A gateway order id belongs to exactly one flow; top-ups are keyed by
	// it directly, so check those first.
	var topup models.WalletTopupOrder
	err = ctl.db.Where("gateway_order_id = ?", result.GatewayOrderID).First(&topup).Error
	if err == nil {
		settled, err := ctl.topups.ConfirmTopup(result)
		if err != nil {
			utils.LogError("Topup settlement failed for gateway order %s: %v", result.GatewayOrderID, err)
			utils.RespondError(c, err)
			return
		}
		utils.Success(c, "Wallet topup processed", settled)
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.InternalServerError(c, "Failed to process webhook", err.Error())
		return
	}

	orders, err := ctl.checkout.ConfirmGatewayPayment(result)
	if err != nil {
		utils.LogError("Checkout settlement failed for gateway order %s: %v", result.GatewayOrderID, err)
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, "Payment processed", gin.H{"orders": orders})
}
