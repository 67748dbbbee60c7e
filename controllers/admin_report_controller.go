package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Anand-732/MartLedger/models"
	"github.com/Anand-732/MartLedger/services"
	"github.com/Anand-732/MartLedger/utils"
	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"
)

// AdminReportController exposes the platform wallet report, the ledger
// export and the pending-release actions.
type AdminReportController struct {
	db         *gorm.DB
	wallets    *services.WalletService
	settlement *services.SettlementService
}

func NewAdminReportController(db *gorm.DB, wallets *services.WalletService,
	settlement *services.SettlementService) *AdminReportController {
	return &AdminReportController{db: db, wallets: wallets, settlement: settlement}
}

// PlatformWalletReport returns the platform wallet with its commission
// totals, plus settlement counts.
func (ctl *AdminReportController) PlatformWalletReport(c *gin.Context) {
	utils.LogInfo("PlatformWalletReport called")

	wallet, err := ctl.wallets.GetOrCreate(nil, models.OwnerKindPlatform, 0)
	if err != nil {
		utils.LogError("Failed to get platform wallet: %v", err)
		utils.InternalServerError(c, "Failed to get platform wallet", err.Error())
		return
	}

	var settled, released int64
	if err := ctl.db.Model(&models.Transaction{}).Count(&settled).Error; err != nil {
		utils.InternalServerError(c, "Failed to count settlements", err.Error())
		return
	}
	if err := ctl.db.Model(&models.Transaction{}).Where("pending_released = ?", true).Count(&released).Error; err != nil {
		utils.InternalServerError(c, "Failed to count settlements", err.Error())
		return
	}

	utils.Success(c, "Platform report retrieved successfully", gin.H{
		"balance":                   wallet.Balance,
		"total_commission_earned":   wallet.TotalCommissionEarned,
		"total_commission_refunded": wallet.TotalCommissionRefunded,
		"settlements_recorded":      settled,
		"settlements_released":      released,
	})
}

// AuditWallet replays a wallet's ledger against its cached balances.
func (ctl *AdminReportController) AuditWallet(c *gin.Context) {
	utils.LogInfo("AuditWallet called")
	walletID, ok := idParam(c, "id")
	if !ok {
		utils.BadRequest(c, "Invalid wallet ID", nil)
		return
	}

	if err := ctl.wallets.AuditWallet(walletID); err != nil {
		utils.LogError("Wallet audit failed for wallet ID: %d: %v", walletID, err)
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, "Wallet ledger reconciles with cached balances", gin.H{"wallet_id": walletID})
}

// ReleasePending releases one order's shop proceeds from the pending
// bucket, skipping the refund-window check.
func (ctl *AdminReportController) ReleasePending(c *gin.Context) {
	utils.LogInfo("ReleasePending called")
	orderID, ok := idParam(c, "id")
	if !ok {
		utils.BadRequest(c, "Invalid order ID", nil)
		return
	}

	if err := ctl.settlement.ReleasePending(orderID, true); err != nil {
		utils.LogError("Failed to release pending for order ID: %d: %v", orderID, err)
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, "Pending balance released", gin.H{"order_id": orderID})
}

// ReleaseDuePending releases every settlement whose refund window has
// elapsed.
func (ctl *AdminReportController) ReleaseDuePending(c *gin.Context) {
	utils.LogInfo("ReleaseDuePending called")

	released, err := ctl.settlement.ReleaseDuePending()
	if err != nil {
		utils.LogError("Failed to release due pending balances: %v", err)
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, "Due pending balances released", gin.H{"released": released})
}

// DownloadLedgerExcel exports wallet transactions for a period to a
// spreadsheet.
func (ctl *AdminReportController) DownloadLedgerExcel(c *gin.Context) {
	utils.LogInfo("DownloadLedgerExcel called")

	period := c.DefaultQuery("period", "day")
	utils.LogDebug("Generating ledger export for period: %s", period)

	now := time.Now()
	var startDate time.Time
	switch period {
	case "day":
		startDate = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	case "week":
		startDate = now.AddDate(0, 0, -7)
	case "month":
		startDate = now.AddDate(0, -1, 0)
	default:
		utils.LogError("Invalid period specified: %s", period)
		utils.BadRequest(c, "Invalid period", "Period must be day, week, or month")
		return
	}

	var entries []models.WalletTransaction
	if err := ctl.db.Where("created_at >= ?", startDate).
		Order("created_at ASC").Find(&entries).Error; err != nil {
		utils.LogError("Failed to fetch ledger entries: %v", err)
		utils.InternalServerError(c, "Failed to fetch ledger entries", err.Error())
		return
	}
	utils.LogDebug("Retrieved %d ledger entries for export", len(entries))

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Ledger")
	if err != nil {
		utils.LogError("Failed to create Excel sheet: %v", err)
		utils.InternalServerError(c, "Failed to create Excel sheet", err.Error())
		return
	}

	header := sheet.AddRow()
	for _, title := range []string{"ID", "Wallet ID", "Bucket", "Reason", "Reference", "Amount", "Balance Before", "Balance After", "Order ID", "Created At"} {
		cell := header.AddCell()
		cell.Value = title
	}

	for _, e := range entries {
		row := sheet.AddRow()
		row.AddCell().SetInt(int(e.ID))
		row.AddCell().SetInt(int(e.WalletID))
		row.AddCell().Value = e.Bucket
		row.AddCell().Value = e.Reason
		row.AddCell().Value = e.Reference
		row.AddCell().Value = e.Amount.StringFixed(2)
		row.AddCell().Value = e.BalanceBefore.StringFixed(2)
		row.AddCell().Value = e.BalanceAfter.StringFixed(2)
		if e.OrderID != nil {
			row.AddCell().SetInt(int(*e.OrderID))
		} else {
			row.AddCell().Value = ""
		}
		row.AddCell().Value = e.CreatedAt.Format("2006-01-02 15:04:05")
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=ledger-%s.xlsx", period))
	if err := file.Write(c.Writer); err != nil {
		utils.LogError("Failed to write Excel file: %v", err)
		utils.InternalServerError(c, "Failed to write Excel file", err.Error())
		return
	}
	c.Status(http.StatusOK)
	utils.LogInfo("Ledger export completed with %d entries", len(entries))
}
