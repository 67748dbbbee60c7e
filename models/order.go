package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order status constants
const (
	OrderStatusCreated        = "Created"
	OrderStatusPendingPayment = "PendingPayment"
	OrderStatusPaid           = "Paid"
	OrderStatusShipped        = "Shipped"
	OrderStatusDelivered      = "Delivered"
	OrderStatusCancelled      = "Cancelled"
)

var orderTransitions = map[string][]string{
	OrderStatusCreated:        {OrderStatusPendingPayment, OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPendingPayment: {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:           {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:        {OrderStatusDelivered},
}

// OrderStatusCanTransition reports whether an order may move between the
// two statuses.
func OrderStatusCanTransition(from, to string) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Order is one shop's share of a checkout. A checkout that spans several
// shops creates one Order per shop, all linked by CheckoutID.
type Order struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	CheckoutID string `json:"checkout_id" gorm:"index;not null"`
	UserID     uint   `json:"user_id" gorm:"index"`
	ShopID     uint   `json:"shop_id" gorm:"index"`
	Shop       Shop   `json:"-" gorm:"foreignKey:ShopID"`

	Subtotal    decimal.Decimal `json:"subtotal" gorm:"type:numeric(14,2)"`
	ShippingFee decimal.Decimal `json:"shipping_fee" gorm:"type:numeric(14,2)"`
	Discount    decimal.Decimal `json:"discount" gorm:"type:numeric(14,2)"`
	Total       decimal.Decimal `json:"total" gorm:"type:numeric(14,2)"`

	VoucherCode    string `json:"voucher_code,omitempty"`
	PaymentMethod  string `json:"payment_method"`
	Status         string `json:"status" gorm:"index"`
	GatewayOrderID string `json:"gateway_order_id,omitempty" gorm:"index"`

	ShippingAddress string `json:"shipping_address"`
	ShippingPincode string `json:"shipping_pincode"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`

	OrderDetails []OrderDetail `json:"items" gorm:"foreignKey:OrderID"`
}

// OrderDetail is a line item. UnitPrice is snapshotted from the catalog at
// checkout time and immutable afterwards.
type OrderDetail struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   uint            `json:"order_id" gorm:"index"`
	ProductID uint            `json:"product_id"`
	Product   Product         `json:"product" gorm:"foreignKey:ProductID"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price" gorm:"type:numeric(14,2)"`
	Total     decimal.Decimal `json:"total" gorm:"type:numeric(14,2)"`
}
