package controllers

import (
	"github.com/Anand-732/MartLedger/config"
	"github.com/Anand-732/MartLedger/services"
	"github.com/Anand-732/MartLedger/utils"
	"github.com/gin-gonic/gin"
)

// CheckoutController exposes the checkout orchestration.
type CheckoutController struct {
	checkout *services.CheckoutService
	cfg      *config.Config
}

func NewCheckoutController(checkout *services.CheckoutService, cfg *config.Config) *CheckoutController {
	return &CheckoutController{checkout: checkout, cfg: cfg}
}

// Checkout places an order from the submitted cart lines. Stock conflicts
// are retried a bounded number of times before surfacing as a transient
// failure.
func (ctl *CheckoutController) Checkout(c *gin.Context) {
	utils.LogInfo("Checkout called")
	userID, ok := currentUserID(c)
	if !ok {
		utils.Unauthorized(c, "User not found")
		return
	}

	var req services.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid checkout request for user ID: %d: %v", userID, err)
		utils.BadRequest(c, "Invalid request. Items and shipping details are required", err.Error())
		return
	}
	req.UserID = userID
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = c.GetHeader("Idempotency-Key")
	}
	utils.LogInfo("Processing checkout for user ID: %d with %d items", userID, len(req.Items))

	var result *services.CheckoutResult
	err := services.WithRetry(ctl.cfg.MaxRetries, func() error {
		var err error
		result, err = ctl.checkout.Checkout(c.Request.Context(), req)
		return err
	})
	if err != nil {
		utils.LogError("Checkout failed for user ID: %d: %v", userID, err)
		utils.RespondError(c, err)
		return
	}

	utils.LogInfo("Checkout %s created for user ID: %d", result.CheckoutID, userID)
	utils.Created(c, "Checkout completed", result)
}
