package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Shop is a seller on the platform. OriginPincode feeds the shipping quote
// for the shop's orders.
type Shop struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Name          string         `json:"name" gorm:"not null"`
	OriginPincode string         `json:"origin_pincode"`
	IsActive      bool           `json:"is_active" gorm:"default:true"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// Product is the read-only slice of the catalog this engine needs: unit
// price and stock at checkout time. Catalog management lives elsewhere.
type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	ShopID      uint            `json:"shop_id" gorm:"index"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price" gorm:"type:numeric(14,2)"`
	Stock       int             `json:"stock"`
	WeightGrams int             `json:"weight_grams"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
