package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/Anand-732/MartLedger/config"
	"github.com/Anand-732/MartLedger/models"
	"github.com/Anand-732/MartLedger/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ShippingQuote is one shop's delivery fee for a checkout.
type ShippingQuote struct {
	Fee     decimal.Decimal
	EtaDays int
}

// ShippingProvider abstracts the external carrier rate lookup.
type ShippingProvider interface {
	Quote(ctx context.Context, originPincode, destinationPincode string, weightGrams int) (*ShippingQuote, error)
}

var pincodePattern = regexp.MustCompile(`^[1-9][0-9]{5}$`)

// rateTableProvider serves quotes from the carrier rate table synced into
// the shipping_rates table.
type rateTableProvider struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewRateTableShippingProvider(db *gorm.DB, cfg *config.Config) ShippingProvider {
	return &rateTableProvider{db: db, cfg: cfg}
}

func (p *rateTableProvider) Quote(ctx context.Context, originPincode, destinationPincode string, weightGrams int) (*ShippingQuote, error) {
	if !pincodePattern.MatchString(destinationPincode) {
		return nil, utils.ValidationFailed(fmt.Sprintf("invalid destination pincode %q", destinationPincode), nil)
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.ShippingTimeout)
	defer cancel()

	var rate models.ShippingRate
	err := p.db.WithContext(ctx).
		Where("pincode = ? AND is_active = ?", destinationPincode, true).
		First(&rate).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ShippingUnavailableError(
				fmt.Sprintf("no delivery service for pincode %s", destinationPincode), nil)
		}
		return nil, utils.ShippingUnavailableError("shipping rate lookup failed", err)
	}

	fee := rate.BaseCharge
	if weightGrams > 1000 && rate.PerKgCharge.IsPositive() {
		// Whole kilograms above the first, rounded up.
		extraKg := int64((weightGrams - 1) / 1000)
		fee = fee.Add(rate.PerKgCharge.Mul(decimal.NewFromInt(extraKg)))
	}

	return &ShippingQuote{Fee: utils.RoundMoney(fee), EtaDays: rate.EtaDays}, nil
}
