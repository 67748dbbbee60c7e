package main

import (
	"github.com/Anand-732/MartLedger/config"
	"github.com/Anand-732/MartLedger/controllers"
	"github.com/Anand-732/MartLedger/routes"
	"github.com/Anand-732/MartLedger/services"
	"github.com/Anand-732/MartLedger/utils"
	"github.com/gin-gonic/gin"
)

func main() {
	if err := utils.InitLogger(); err != nil {
		panic(err)
	}
	defer utils.SyncLogger()

	cfg, err := config.LoadConfig()
	if err != nil {
		utils.LogError("Failed to load config: %v", err)
		panic(err)
	}
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		utils.LogError("Failed to initialize database: %v", err)
		panic(err)
	}

	wallets := services.NewWalletService(db)
	vouchers := services.NewVoucherService(db)
	settlement := services.NewSettlementService(db, wallets, cfg)
	shipping := services.NewRateTableShippingProvider(db, cfg)
	gateway := services.NewRazorpayGateway(cfg)
	checkout := services.NewCheckoutService(db, wallets, vouchers, settlement, shipping, gateway, cfg)
	orders := services.NewOrderService(db)
	refunds := services.NewRefundService(db, wallets)
	withdrawals := services.NewWithdrawalService(db, wallets)
	topups := services.NewTopupService(db, wallets, gateway)

	router := routes.SetupRouter(routes.Controllers{
		Checkout:    controllers.NewCheckoutController(checkout, cfg),
		Voucher:     controllers.NewVoucherController(db, vouchers),
		Wallet:      controllers.NewWalletController(wallets, topups),
		Order:       controllers.NewOrderController(db, orders),
		Refund:      controllers.NewRefundController(refunds),
		Withdrawal:  controllers.NewWithdrawalController(withdrawals),
		Payment:     controllers.NewPaymentController(db, checkout, topups, gateway),
		AdminReport: controllers.NewAdminReportController(db, wallets, settlement),
		Catalog:     controllers.NewAdminCatalogController(db),
	})

	utils.LogInfo("Starting server on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		utils.LogError("Server failed: %v", err)
		panic(err)
	}
}
