package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Anand-732/MartLedger/models"
	"github.com/Anand-732/MartLedger/services"
	"github.com/Anand-732/MartLedger/utils"
	"github.com/gin-gonic/gin"
	"github.com/jung-kurt/gofpdf"
	"gorm.io/gorm"
)

// OrderController exposes order listing, the shipment transitions and the
// PDF invoice.
type OrderController struct {
	db     *gorm.DB
	orders *services.OrderService
}

func NewOrderController(db *gorm.DB, orders *services.OrderService) *OrderController {
	return &OrderController{db: db, orders: orders}
}

// ListUserOrders returns a page of the customer's orders.
func (ctl *OrderController) ListUserOrders(c *gin.Context) {
	utils.LogInfo("ListUserOrders called")
	userID, ok := currentUserID(c)
	if !ok {
		utils.Unauthorized(c, "User not found")
		return
	}

	pagination := utils.NewPagination(c)
	orders, total, err := ctl.orders.ListOrdersForUser(userID, pagination.Limit, pagination.Offset)
	if err != nil {
		utils.LogError("Failed to fetch orders for user ID: %d: %v", userID, err)
		utils.InternalServerError(c, "Failed to fetch orders", err.Error())
		return
	}

	utils.SuccessWithPagination(c, "Orders retrieved successfully", orders, total, pagination.Page, pagination.Limit)
}

// ListShopOrders returns a page of the shop's orders.
func (ctl *OrderController) ListShopOrders(c *gin.Context) {
	utils.LogInfo("ListShopOrders called")
	shopID, ok := currentShopID(c)
	if !ok {
		utils.Unauthorized(c, "Shop not found")
		return
	}

	pagination := utils.NewPagination(c)
	orders, total, err := ctl.orders.ListOrdersForShop(shopID, pagination.Limit, pagination.Offset)
	if err != nil {
		utils.LogError("Failed to fetch orders for shop ID: %d: %v", shopID, err)
		utils.InternalServerError(c, "Failed to fetch orders", err.Error())
		return
	}

	utils.SuccessWithPagination(c, "Orders retrieved successfully", orders, total, pagination.Page, pagination.Limit)
}

// GetOrder returns one of the customer's orders with its line items.
func (ctl *OrderController) GetOrder(c *gin.Context) {
	utils.LogInfo("GetOrder called")
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

	order, err := ctl.orders.GetOrder(orderID)
	if err != nil || order.UserID != userID {
		utils.NotFound(c, "Order not found")
		return
	}

	utils.Success(c, "Order retrieved successfully", order)
}

// MarkShipped moves a paid order to Shipped.
func (ctl *OrderController) MarkShipped(c *gin.Context) {
	ctl.transition(c, "shipped")
}

// MarkDelivered moves a shipped order to Delivered.
func (ctl *OrderController) MarkDelivered(c *gin.Context) {
	ctl.transition(c, "delivered")
}

func (ctl *OrderController) transition(c *gin.Context, action string) {
	utils.LogInfo("Order %s transition called", action)
	shopID, ok := currentShopID(c)
	if !ok {
		utils.Unauthorized(c, "Shop not found")
		return
	}
	orderID, ok := idParam(c, "id")
	if !ok {
		utils.BadRequest(c, "Invalid order ID", nil)
		return
	}

	var order *models.Order
	var err error
	if action == "shipped" {
		order, err = ctl.orders.MarkShipped(shopID, orderID)
	} else {
		order, err = ctl.orders.MarkDelivered(shopID, orderID)
	}
	if err != nil {
		utils.LogError("Failed to mark order ID: %d %s: %v", orderID, action, err)
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, "Order updated successfully", order)
}

// DownloadInvoice generates and returns a PDF invoice for a paid order,
// including the settlement breakdown.
func (ctl *OrderController) DownloadInvoice(c *gin.Context) {
	utils.LogInfo("Starting invoice download process")
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

	var order models.Order
	if err := ctl.db.Preload("OrderDetails.Product").Preload("Shop").
		Where("id = ? AND user_id = ?", orderID, userID).First(&order).Error; err != nil {
		utils.LogError("Order not found for invoice download - Order ID: %d, User ID: %d", orderID, userID)
		utils.NotFound(c, "Order not found")
		return
	}
	if order.PaidAt == nil {
		utils.BadRequest(c, "Invoice is only available for paid orders", nil)
		return
	}

	var txn models.Transaction
	if err := ctl.db.Where("order_id = ?", order.ID).First(&txn).Error; err != nil {
		utils.LogError("No settlement found for invoice - Order ID: %d", orderID)
		utils.NotFound(c, "No settlement found for this order")
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(100, 10, "MartLedger")
	pdf.SetFont("Arial", "", 12)
	pdf.Ln(8)
	pdf.Cell(100, 8, "Sold by: "+order.Shop.Name)
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(100, 10, "INVOICE")
	pdf.Ln(12)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(50, 8, "Order ID: "+strconv.Itoa(int(order.ID)))
	pdf.Cell(60, 8, "Paid At: "+order.PaidAt.Format("2006-01-02 15:04:05"))
	pdf.Ln(8)
	pdf.Cell(50, 8, "Payment Method: "+order.PaymentMethod)
	pdf.Cell(60, 8, "Status: "+order.Status)
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(100, 8, "Shipping Address:")
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(100, 8, order.ShippingAddress)
	pdf.Ln(6)
	pdf.Cell(100, 8, "Pincode: "+order.ShippingPincode)
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(70, 8, "Product", "1", 0, "C", false, 0, "")
	pdf.CellFormat(20, 8, "Qty", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 8, "Price", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 8, "Total", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 12)
	for _, item := range order.OrderDetails {
		pdf.CellFormat(70, 8, item.Product.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 8, strconv.Itoa(item.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 8, item.UnitPrice.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 8, item.Total.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(4)
	summaryRow := func(label, value string, bold bool) {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(120, 8, label, "", 0, "L", false, 0, "")
		if bold {
			pdf.SetFont("Arial", "B", 12)
		} else {
			pdf.SetFont("Arial", "", 12)
		}
		pdf.CellFormat(30, 8, value, "", 1, "R", false, 0, "")
	}
	summaryRow("Subtotal:", order.Subtotal.StringFixed(2), false)
	summaryRow("Shipping:", order.ShippingFee.StringFixed(2), false)
	summaryRow("Discount:", order.Discount.Neg().StringFixed(2), false)
	summaryRow("Grand Total:", order.Total.StringFixed(2), true)

	pdf.Ln(4)
	pdf.SetFont("Arial", "I", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Settlement: platform fee %s, shop proceeds %s",
		txn.PlatformFeeAmount.StringFixed(2), txn.ShopAmount.StringFixed(2)))

	pdf.Ln(10)
	pdf.SetFont("Arial", "I", 12)
	pdf.Cell(0, 10, "Thank you for your order!")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		utils.LogError("Failed to generate invoice PDF for order ID: %d: %v", orderID, err)
		utils.InternalServerError(c, "Failed to generate invoice", err.Error())
		return
	}
	utils.LogInfo("PDF invoice generated successfully for order ID: %d", orderID)

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=invoice-%d.pdf", order.ID))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
