package services

import (
	"fmt"

	"github.com/Anand-732/MartLedger/models"
	"github.com/Anand-732/MartLedger/utils"
	"gorm.io/gorm"
)

// OrderService covers the post-payment order lifecycle: listing and the
// Shipped/Delivered transitions.
type OrderService struct {
	db *gorm.DB
}

func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{db: db}
}

// GetOrder loads one order with its line items.
func (s *OrderService) GetOrder(orderID uint) (*models.Order, error) {
	var order models.Order
	if err := s.db.Preload("OrderDetails").Preload("OrderDetails.Product").First(&order, orderID).Error; err != nil {
		return nil, utils.NotFoundAppError("Order not found")
	}
	return &order, nil
}

// ListOrdersForUser returns a page of the user's orders, newest first.
func (s *OrderService) ListOrdersForUser(userID uint, limit, offset int) ([]models.Order, int64, error) {
	return s.listOrders("user_id = ?", userID, limit, offset)
}

// ListOrdersForShop returns a page of the shop's orders, newest first.
func (s *OrderService) ListOrdersForShop(shopID uint, limit, offset int) ([]models.Order, int64, error) {
	return s.listOrders("shop_id = ?", shopID, limit, offset)
}

func (s *OrderService) listOrders(cond string, id uint, limit, offset int) ([]models.Order, int64, error) {
	var total int64
	if err := s.db.Model(&models.Order{}).Where(cond, id).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	if err := s.db.Preload("OrderDetails").Where(cond, id).
		Order("created_at DESC").Limit(limit).Offset(offset).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// MarkShipped moves a paid order to Shipped. Only the owning shop may do
// this.
func (s *OrderService) MarkShipped(shopID, orderID uint) (*models.Order, error) {
	return s.transition(shopID, orderID, models.OrderStatusShipped)
}

// MarkDelivered moves a shipped order to Delivered.
func (s *OrderService) MarkDelivered(shopID, orderID uint) (*models.Order, error) {
	return s.transition(shopID, orderID, models.OrderStatusDelivered)
}

func (s *OrderService) transition(shopID, orderID uint, to string) (*models.Order, error) {
	var updated *models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		order, err := lockOrder(tx, orderID)
		if err != nil {
			return err
		}
		if order.ShopID != shopID {
			return utils.NotFoundAppError("Order not found")
		}
		if !models.OrderStatusCanTransition(order.Status, to) {
			return utils.StateTransitionError(
				fmt.Sprintf("Order %d cannot move from %s to %s", order.ID, order.Status, to))
		}

		order.Status = to
		if err := tx.Save(order).Error; err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.LogInfo("Order ID: %d moved to %s by shop ID: %d", orderID, to, shopID)
	return updated, nil
}
