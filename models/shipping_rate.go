package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShippingRate is one row of the carrier rate table keyed by destination
// pincode. PerKgCharge applies on top of the base charge for heavy parcels.
type ShippingRate struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Pincode     string          `json:"pincode" gorm:"uniqueIndex;not null"`
	BaseCharge  decimal.Decimal `json:"base_charge" gorm:"type:numeric(14,2);not null"`
	PerKgCharge decimal.Decimal `json:"per_kg_charge" gorm:"type:numeric(14,2);default:0"`
	EtaDays     int             `json:"eta_days" gorm:"default:5"`
	IsActive    bool            `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
