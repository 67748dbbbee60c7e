package routes

import (
	"github.com/Anand-732/MartLedger/controllers"
	"github.com/Anand-732/MartLedger/utils"
	"github.com/gin-gonic/gin"
)

// Controllers bundles every handler group the router mounts.
type Controllers struct {
	Checkout    *controllers.CheckoutController
	Voucher     *controllers.VoucherController
	Wallet      *controllers.WalletController
	Order       *controllers.OrderController
	Refund      *controllers.RefundController
	Withdrawal  *controllers.WithdrawalController
	Payment     *controllers.PaymentController
	AdminReport *controllers.AdminReportController
	Catalog     *controllers.AdminCatalogController
}

// SetupRouter builds the engine with the shared middleware chain and all
// route groups.
func SetupRouter(ctl Controllers) *gin.Engine {
	r := gin.New()
	r.Use(utils.RecoveryMiddleware())
	r.Use(utils.LoggerMiddleware())
	r.Use(utils.RequestIDMiddleware())
	r.Use(utils.IdentityMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Gateway webhooks authenticate by signature, not identity headers.
	r.POST("/v1/payments/webhook", ctl.Payment.GatewayWebhook)

	user := r.Group("/v1")
	user.Use(utils.RequireUser())
	{
		user.POST("/checkout", ctl.Checkout.Checkout)
		user.POST("/vouchers/preview", ctl.Voucher.PreviewVoucher)

		user.GET("/wallet", ctl.Wallet.GetUserWallet)
		user.GET("/wallet/statement", ctl.Wallet.GetUserWalletStatement)
		user.POST("/wallet/topup", ctl.Wallet.InitiateTopup)

		user.GET("/orders", ctl.Order.ListUserOrders)
		user.GET("/orders/:id", ctl.Order.GetOrder)
		user.GET("/orders/:id/invoice", ctl.Order.DownloadInvoice)
		user.POST("/orders/:id/refund", ctl.Refund.RequestRefund)

		user.POST("/withdrawals", ctl.Withdrawal.RequestUserWithdrawal)
		user.GET("/withdrawals", ctl.Withdrawal.ListUserWithdrawals)
	}

	shop := r.Group("/v1/shop")
	shop.Use(utils.RequireShop())
	{
		shop.GET("/wallet", ctl.Wallet.GetShopWallet)
		shop.GET("/wallet/statement", ctl.Wallet.GetShopWalletStatement)

		shop.GET("/orders", ctl.Order.ListShopOrders)
		shop.PUT("/orders/:id/ship", ctl.Order.MarkShipped)
		shop.PUT("/orders/:id/deliver", ctl.Order.MarkDelivered)

		shop.GET("/refunds", ctl.Refund.ListShopRefunds)
		shop.PUT("/refunds/:id/review", ctl.Refund.ShopReviewRefund)

		shop.POST("/withdrawals", ctl.Withdrawal.RequestShopWithdrawal)
		shop.GET("/withdrawals", ctl.Withdrawal.ListShopWithdrawals)
	}

	admin := r.Group("/v1/admin")
	admin.Use(utils.RequireAdmin())
	{
		admin.POST("/shops", ctl.Catalog.CreateShop)
		admin.PUT("/shops/:id/active", ctl.Catalog.SetShopActive)
		admin.POST("/products", ctl.Catalog.CreateProduct)
		admin.PUT("/shipping-rates", ctl.Catalog.UpsertShippingRate)

		admin.POST("/vouchers", ctl.Voucher.CreateVoucher)
		admin.GET("/vouchers", ctl.Voucher.ListVouchers)
		admin.PUT("/vouchers/:id/deactivate", ctl.Voucher.DeactivateVoucher)

		admin.GET("/refunds/pending", ctl.Refund.ListPendingAdminRefunds)
		admin.PUT("/refunds/:id/review", ctl.Refund.AdminReviewRefund)

		admin.GET("/withdrawals", ctl.Withdrawal.ListAllWithdrawals)
		admin.PUT("/withdrawals/:id/approve", ctl.Withdrawal.ApproveWithdrawal)
		admin.PUT("/withdrawals/:id/reject", ctl.Withdrawal.RejectWithdrawal)
		admin.PUT("/withdrawals/:id/complete", ctl.Withdrawal.CompleteWithdrawal)

		admin.GET("/reports/platform", ctl.AdminReport.PlatformWalletReport)
		admin.GET("/reports/ledger/excel", ctl.AdminReport.DownloadLedgerExcel)
		admin.GET("/wallets/:id/audit", ctl.AdminReport.AuditWallet)
		admin.POST("/settlements/:id/release", ctl.AdminReport.ReleasePending)
		admin.POST("/settlements/release-due", ctl.AdminReport.ReleaseDuePending)
	}

	return r
}
