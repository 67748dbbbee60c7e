package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Anand-732/MartLedger/config"
	"github.com/Anand-732/MartLedger/models"
	"github.com/Anand-732/MartLedger/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CheckoutService orchestrates a multi-shop checkout: shipping quotes,
// voucher allocation, order creation, the wallet/gateway payment split and
// the compensation path when the gateway leg fails.
type CheckoutService struct {
	db         *gorm.DB
	wallets    *WalletService
	vouchers   *VoucherService
	settlement *SettlementService
	shipping   ShippingProvider
	gateway    PaymentGateway
	cfg        *config.Config
}

func NewCheckoutService(db *gorm.DB, wallets *WalletService, vouchers *VoucherService,
	settlement *SettlementService, shipping ShippingProvider, gateway PaymentGateway,
	cfg *config.Config) *CheckoutService {
	return &CheckoutService{
		db:         db,
		wallets:    wallets,
		vouchers:   vouchers,
		settlement: settlement,
		shipping:   shipping,
		gateway:    gateway,
		cfg:        cfg,
	}
}

// CheckoutItem is one cart line.
type CheckoutItem struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

// CheckoutRequest is the full checkout input. When AllowWithoutVoucher is
// set, a rejected voucher downgrades to a discount-free checkout instead of
// failing. IdempotencyKey lets a client retry a timed-out checkout and get
// the stored outcome instead of a second one.
type CheckoutRequest struct {
	UserID              uint
	IdempotencyKey      string         `json:"idempotency_key"`
	Items               []CheckoutItem `json:"items" binding:"required"`
	ShippingAddress     string         `json:"shipping_address" binding:"required"`
	ShippingPincode     string         `json:"shipping_pincode" binding:"required"`
	VoucherCode         string         `json:"voucher_code"`
	AllowWithoutVoucher bool           `json:"allow_without_voucher"`
}

// CheckoutResult reports the created orders and the payment split.
type CheckoutResult struct {
	CheckoutID            string          `json:"checkout_id"`
	Replayed              bool            `json:"replayed,omitempty"`
	Orders                []models.Order  `json:"orders"`
	GrandTotal            decimal.Decimal `json:"grand_total"`
	TotalDiscount         decimal.Decimal `json:"total_discount"`
	WalletAmountUsed      decimal.Decimal `json:"wallet_amount_used"`
	GatewayAmountRequired decimal.Decimal `json:"gateway_amount_required"`
	PaymentURL            string          `json:"payment_url,omitempty"`
	VoucherRejection      string          `json:"voucher_rejection,omitempty"`
}

// shopGroup is one shop's slice of the cart.
type shopGroup struct {
	shop     models.Shop
	items    []models.OrderDetail
	subtotal decimal.Decimal
	weight   int
	shipping decimal.Decimal
	discount decimal.Decimal
}

// Checkout runs the full orchestration. Order creation and the wallet
// debit are one atomic unit; the gateway call happens after commit and is
// compensated on failure.
func (s *CheckoutService) Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	if len(req.Items) == 0 {
		return nil, utils.ValidationFailed("Cannot checkout an empty cart", nil)
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, utils.ValidationFailed("Item quantity must be positive", nil)
		}
	}

	checkoutID := checkoutKey(req)
	if req.IdempotencyKey != "" {
		prior, err := s.replayCheckout(checkoutID, req.UserID)
		if err != nil {
			return nil, err
		}
		if prior != nil {
			return prior, nil
		}
	}

	groups, err := s.groupByShop(req.Items)
	if err != nil {
		return nil, err
	}

	// Shipping quotes are all-or-nothing: one unavailable shop fails the
	// whole checkout before anything is created.
	for i := range groups {
		quote, err := s.shipping.Quote(ctx, groups[i].shop.OriginPincode, req.ShippingPincode, groups[i].weight)
		if err != nil {
			return nil, err
		}
		groups[i].shipping = quote.Fee
	}

	result := &CheckoutResult{CheckoutID: checkoutID}

	var voucher *models.Voucher
	if req.VoucherCode != "" {
		amounts := make([]OrderAmount, len(groups))
		for i, g := range groups {
			amounts[i] = OrderAmount{ShopID: g.shop.ID, Subtotal: g.subtotal, ShippingFee: g.shipping}
		}
		apply, err := s.vouchers.Preview(req.VoucherCode, req.UserID, amounts)
		if err != nil {
			if !utils.IsCode(err, utils.CodeVoucherInvalid) || !req.AllowWithoutVoucher {
				return nil, err
			}
			// Caller opted to proceed without the discount.
			result.VoucherRejection = utils.GetAppError(err).Reason
			utils.LogInfo("Proceeding without voucher %s for user ID: %d: %s",
				req.VoucherCode, req.UserID, result.VoucherRejection)
		} else {
			voucher = apply.Voucher
			result.TotalDiscount = apply.TotalDiscount
			byShop := make(map[uint]decimal.Decimal, len(apply.PerOrder))
			for _, d := range apply.PerOrder {
				byShop[d.ShopID] = d.Discount
			}
			for i := range groups {
				groups[i].discount = byShop[groups[i].shop.ID]
			}
		}
	}

	grandTotal := decimal.Zero
	for _, g := range groups {
		grandTotal = grandTotal.Add(g.subtotal).Add(g.shipping).Sub(g.discount)
	}
	result.GrandTotal = grandTotal

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.reserveStock(tx, req.Items); err != nil {
			return err
		}

		voucherCode := ""
		if voucher != nil {
			voucherCode = req.VoucherCode
		}
		for _, g := range groups {
			order := models.Order{
				CheckoutID:      result.CheckoutID,
				UserID:          req.UserID,
				ShopID:          g.shop.ID,
				Subtotal:        g.subtotal,
				ShippingFee:     g.shipping,
				Discount:        g.discount,
				Total:           g.subtotal.Add(g.shipping).Sub(g.discount),
				VoucherCode:     voucherCode,
				Status:          models.OrderStatusCreated,
				ShippingAddress: req.ShippingAddress,
				ShippingPincode: req.ShippingPincode,
				OrderDetails:    g.items,
			}
			if err := tx.Create(&order).Error; err != nil {
				return utils.WrapError(err, "failed to create order")
			}
			result.Orders = append(result.Orders, order)
		}

		// Usage counters move only now that the orders are durable.
		if voucher != nil {
			if err := s.vouchers.Commit(tx, voucher.ID, req.UserID); err != nil {
				return err
			}
		}

		walletUsed, gatewayRequired, err := s.splitPayment(tx, req.UserID, grandTotal)
		if err != nil {
			return err
		}
		result.WalletAmountUsed = walletUsed
		result.GatewayAmountRequired = gatewayRequired

		if walletUsed.IsPositive() {
			if _, err := s.wallets.Post(tx, Posting{
				OwnerKind:   models.OwnerKindCustomer,
				OwnerID:     req.UserID,
				Bucket:      models.BucketBalance,
				Amount:      walletUsed.Neg(),
				Reason:      models.ReasonOrderPayment,
				Reference:   checkoutReference(result.CheckoutID),
				Description: fmt.Sprintf("Payment for checkout %s", result.CheckoutID),
			}); err != nil {
				return err
			}
		}

		if gatewayRequired.IsZero() {
			// Fully covered by the wallet: settle immediately.
			for i := range result.Orders {
				if err := s.markPaid(tx, &result.Orders[i], models.PaymentMethodWallet, ""); err != nil {
					return err
				}
			}
		} else {
			method := models.PaymentMethodGateway
			if walletUsed.IsPositive() {
				method = models.PaymentMethodMixed
			}
			for i := range result.Orders {
				result.Orders[i].Status = models.OrderStatusPendingPayment
				result.Orders[i].PaymentMethod = method
				if err := tx.Save(&result.Orders[i]).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.GatewayAmountRequired.IsPositive() {
		intent, err := s.gateway.CreatePaymentURL(ctx, result.GatewayAmountRequired, result.CheckoutID)
		if err != nil {
			// Second saga leg failed: reverse the wallet debit and void
			// the orders before surfacing the gateway error.
			if cerr := s.compensateCheckout(result.CheckoutID, req.UserID, result.WalletAmountUsed); cerr != nil {
				utils.LogError("Compensation failed for checkout %s: %v", result.CheckoutID, cerr)
				return nil, utils.TransientFailureError("checkout compensation failed", cerr)
			}
			return nil, err
		}
		result.PaymentURL = intent.URL

		if err := s.db.Model(&models.Order{}).
			Where("checkout_id = ?", result.CheckoutID).
			Update("gateway_order_id", intent.GatewayOrderID).Error; err != nil {
			return nil, err
		}
		for i := range result.Orders {
			result.Orders[i].GatewayOrderID = intent.GatewayOrderID
		}
	}

	utils.LogInfo("Checkout %s completed for user ID: %d - %d orders, total %s (wallet %s, gateway %s)",
		result.CheckoutID, req.UserID, len(result.Orders), grandTotal,
		result.WalletAmountUsed, result.GatewayAmountRequired)
	return result, nil
}

// checkoutKey returns the client's idempotency key when one was supplied,
// otherwise a fresh server-side id.
func checkoutKey(req CheckoutRequest) string {
	if req.IdempotencyKey != "" {
		return req.IdempotencyKey
	}
	return uuid.New().String()
}

// replayCheckout rebuilds the stored outcome for an idempotency key the
// caller already submitted, or returns nil when the key is new. No stock,
// voucher or wallet movement happens on a replay.
func (s *CheckoutService) replayCheckout(checkoutID string, userID uint) (*CheckoutResult, error) {
	var orders []models.Order
	if err := s.db.Preload("OrderDetails").
		Where("checkout_id = ? AND user_id = ?", checkoutID, userID).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, nil
	}

	result := &CheckoutResult{CheckoutID: checkoutID, Orders: orders, Replayed: true}
	pendingPayment := false
	for _, o := range orders {
		result.GrandTotal = result.GrandTotal.Add(o.Total)
		result.TotalDiscount = result.TotalDiscount.Add(o.Discount)
		if o.Status == models.OrderStatusPendingPayment {
			pendingPayment = true
		}
	}
	result.WalletAmountUsed = s.walletDebitForCheckout(checkoutID, userID)
	if pendingPayment {
		result.GatewayAmountRequired = result.GrandTotal.Sub(result.WalletAmountUsed)
		if orders[0].GatewayOrderID != "" {
			result.PaymentURL = s.gateway.PaymentURL(orders[0].GatewayOrderID)
		}
	}

	utils.LogInfo("Replayed checkout %s for user ID: %d - %d orders", checkoutID, userID, len(orders))
	return result, nil
}

// splitPayment decides the wallet-vs-gateway split under the configured
// policy. The wallet balance is read inside the checkout transaction.
func (s *CheckoutService) splitPayment(tx *gorm.DB, userID uint, grandTotal decimal.Decimal) (walletUsed, gatewayRequired decimal.Decimal, err error) {
	if s.cfg.PaymentPolicy == config.PaymentPolicyGatewayOnly {
		return decimal.Zero, grandTotal, nil
	}

	wallet, err := s.wallets.GetOrCreate(tx, models.OwnerKindCustomer, userID)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	walletUsed, gatewayRequired = ComputePaymentSplit(wallet.Balance, grandTotal)
	if s.cfg.PaymentPolicy == config.PaymentPolicyWalletOnly && gatewayRequired.IsPositive() {
		return decimal.Zero, decimal.Zero, utils.InsufficientFundsError(
			"Insufficient wallet balance. Please top up your wallet.")
	}
	return walletUsed, gatewayRequired, nil
}

// ComputePaymentSplit returns min(balance, total) from the wallet and the
// remainder from the gateway.
func ComputePaymentSplit(walletBalance, grandTotal decimal.Decimal) (walletUsed, gatewayRequired decimal.Decimal) {
	walletUsed = walletBalance
	if walletUsed.GreaterThan(grandTotal) {
		walletUsed = grandTotal
	}
	if walletUsed.IsNegative() {
		walletUsed = decimal.Zero
	}
	return walletUsed, grandTotal.Sub(walletUsed)
}

// ConfirmGatewayPayment handles the verified gateway callback. A captured
// payment settles every pending order of the checkout; a failed one
// triggers the compensation path. Replays are no-ops.
func (s *CheckoutService) ConfirmGatewayPayment(result *CallbackResult) ([]models.Order, error) {
	var orders []models.Order
	if err := s.db.Where("gateway_order_id = ?", result.GatewayOrderID).Find(&orders).Error; err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, utils.NotFoundAppError("No orders found for this payment")
	}

	checkoutID := orders[0].CheckoutID
	userID := orders[0].UserID

	allPaid := true
	for _, o := range orders {
		if o.Status != models.OrderStatusPaid {
			allPaid = false
		}
	}
	if allPaid {
		utils.LogInfo("Replayed gateway callback for checkout %s - already settled", checkoutID)
		return orders, nil
	}

	if result.Status != GatewayStatusCaptured {
		walletUsed := s.walletDebitForCheckout(checkoutID, userID)
		if err := s.compensateCheckout(checkoutID, userID, walletUsed); err != nil {
			return nil, err
		}
		return nil, utils.GatewayFailure("Payment failed at the gateway", nil)
	}

	// A captured amount that differs from what the checkout asked the
	// gateway for must not settle anything.
	if result.Amount.IsPositive() {
		expected := gatewayAmountExpected(orders, s.walletDebitForCheckout(checkoutID, userID))
		if !result.Amount.Equal(expected) {
			utils.LogError("Gateway amount mismatch for checkout %s - captured %s, expected %s",
				checkoutID, result.Amount, expected)
			return nil, utils.GatewayFailure(
				fmt.Sprintf("Captured amount %s does not match the amount due %s", result.Amount, expected), nil)
		}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for i := range orders {
			if orders[i].Status != models.OrderStatusPendingPayment {
				continue
			}
			if err := s.markPaid(tx, &orders[i], orders[i].PaymentMethod, result.GatewayOrderID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.LogInfo("Gateway payment confirmed for checkout %s - %d orders settled", checkoutID, len(orders))
	return orders, nil
}

// markPaid transitions an order to Paid and records its settlement.
func (s *CheckoutService) markPaid(tx *gorm.DB, order *models.Order, paymentMethod, gatewayRef string) error {
	if !models.OrderStatusCanTransition(order.Status, models.OrderStatusPaid) {
		return utils.StateTransitionError(
			fmt.Sprintf("Order %d cannot move from %s to Paid", order.ID, order.Status))
	}

	now := time.Now()
	order.Status = models.OrderStatusPaid
	order.PaidAt = &now
	if paymentMethod != "" {
		order.PaymentMethod = paymentMethod
	}
	if err := tx.Save(order).Error; err != nil {
		return err
	}

	_, err := s.settlement.RecordSettlement(tx, order, order.PaymentMethod, gatewayRef)
	return err
}

// compensateCheckout rolls back the first saga leg: the wallet debit is
// reversed, stock is restored and the checkout's orders are cancelled. All
// postings reuse the checkout reference, so retrying compensation is safe.
func (s *CheckoutService) compensateCheckout(checkoutID string, userID uint, walletUsed decimal.Decimal) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var orders []models.Order
		if err := tx.Preload("OrderDetails").Where("checkout_id = ?", checkoutID).Find(&orders).Error; err != nil {
			return err
		}

		for i := range orders {
			if orders[i].Status == models.OrderStatusCancelled {
				continue
			}
			for _, item := range orders[i].OrderDetails {
				if err := tx.Model(&models.Product{}).Where("id = ?", item.ProductID).
					UpdateColumn("stock", gorm.Expr("stock + ?", item.Quantity)).Error; err != nil {
					return err
				}
			}
			orders[i].Status = models.OrderStatusCancelled
			if err := tx.Save(&orders[i]).Error; err != nil {
				return err
			}
		}

		if walletUsed.IsPositive() {
			if _, err := s.wallets.Post(tx, Posting{
				OwnerKind:   models.OwnerKindCustomer,
				OwnerID:     userID,
				Bucket:      models.BucketBalance,
				Amount:      walletUsed,
				Reason:      models.ReasonPaymentReversal,
				Reference:   checkoutReference(checkoutID),
				Description: fmt.Sprintf("Reversal for checkout %s", checkoutID),
			}); err != nil {
				return err
			}
		}

		utils.LogInfo("Compensated checkout %s - %d orders cancelled, %s returned to wallet",
			checkoutID, len(orders), walletUsed)
		return nil
	})
}

// gatewayAmountExpected is the amount the gateway leg of a checkout was
// asked to collect: the order totals minus what the wallet already paid.
func gatewayAmountExpected(orders []models.Order, walletUsed decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(o.Total)
	}
	return total.Sub(walletUsed)
}

// walletDebitForCheckout looks up how much was debited from the customer's
// wallet for a checkout, for compensation after the fact.
func (s *CheckoutService) walletDebitForCheckout(checkoutID string, userID uint) decimal.Decimal {
	wallet, err := s.wallets.GetOrCreate(nil, models.OwnerKindCustomer, userID)
	if err != nil {
		return decimal.Zero
	}

	var entry models.WalletTransaction
	err = s.db.Where("wallet_id = ? AND reference = ? AND reason = ?",
		wallet.ID, checkoutReference(checkoutID), models.ReasonOrderPayment).First(&entry).Error
	if err != nil {
		return decimal.Zero
	}
	return entry.Amount.Abs()
}

// groupByShop loads the catalog rows for the cart and groups lines per
// shop, snapshotting unit prices.
func (s *CheckoutService) groupByShop(items []CheckoutItem) ([]shopGroup, error) {
	byShop := make(map[uint]*shopGroup)

	for _, item := range items {
		var product models.Product
		if err := s.db.First(&product, item.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, utils.ValidationFailed(fmt.Sprintf("Product %d not found", item.ProductID), nil)
			}
			return nil, err
		}
		if product.Stock < item.Quantity {
			return nil, utils.ValidationFailed(
				fmt.Sprintf("Product %q does not have enough stock. Available: %d, Requested: %d",
					product.Name, product.Stock, item.Quantity), nil)
		}

		group, ok := byShop[product.ShopID]
		if !ok {
			var shop models.Shop
			if err := s.db.First(&shop, product.ShopID).Error; err != nil {
				return nil, utils.ValidationFailed(fmt.Sprintf("Shop %d not found", product.ShopID), nil)
			}
			if !shop.IsActive {
				return nil, utils.ValidationFailed(fmt.Sprintf("Shop %q is not accepting orders", shop.Name), nil)
			}
			group = &shopGroup{shop: shop, subtotal: decimal.Zero}
			byShop[product.ShopID] = group
		}

		lineTotal := product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		group.items = append(group.items, models.OrderDetail{
			ProductID: product.ID,
			Quantity:  item.Quantity,
			UnitPrice: product.Price,
			Total:     lineTotal,
		})
		group.subtotal = group.subtotal.Add(lineTotal)
		group.weight += product.WeightGrams * item.Quantity
	}

	groups := make([]shopGroup, 0, len(byShop))
	for _, g := range byShop {
		groups = append(groups, *g)
	}
	// Deterministic order creation across shops.
	sort.Slice(groups, func(i, j int) bool { return groups[i].shop.ID < groups[j].shop.ID })
	return groups, nil
}

// reserveStock decrements stock with a guard so two concurrent checkouts
// cannot oversell; losing the race is a retryable conflict.
func (s *CheckoutService) reserveStock(tx *gorm.DB, items []CheckoutItem) error {
	for _, item := range items {
		res := tx.Model(&models.Product{}).
			Where("id = ? AND stock >= ?", item.ProductID, item.Quantity).
			UpdateColumn("stock", gorm.Expr("stock - ?", item.Quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return utils.ConcurrencyConflictError(
				fmt.Sprintf("Stock changed for product %d, please retry", item.ProductID))
		}
	}
	return nil
}

// lockOrder fetches an order under a row lock for status transitions.
func lockOrder(tx *gorm.DB, orderID uint) (*models.Order, error) {
	var order models.Order
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundAppError("Order not found")
		}
		return nil, err
	}
	return &order, nil
}

func checkoutReference(checkoutID string) string {
	return "CHECKOUT-" + checkoutID
}
