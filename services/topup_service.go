package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Anand-732/MartLedger/models"
	"github.com/Anand-732/MartLedger/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TopupService lets a customer add gateway money to their wallet. The
// credit only lands after a verified gateway callback.
type TopupService struct {
	db      *gorm.DB
	wallets *WalletService
	gateway PaymentGateway
}

func NewTopupService(db *gorm.DB, wallets *WalletService, gateway PaymentGateway) *TopupService {
	return &TopupService{db: db, wallets: wallets, gateway: gateway}
}

// TopupResult is the pending top-up handed back to the client.
type TopupResult struct {
	TopupID        uint            `json:"topup_id"`
	GatewayOrderID string          `json:"gateway_order_id"`
	Amount         decimal.Decimal `json:"amount"`
	PaymentURL     string          `json:"payment_url"`
}

// InitiateTopup creates a gateway order for the amount and records a
// pending top-up keyed by the gateway order id.
func (s *TopupService) InitiateTopup(ctx context.Context, userID uint, amount decimal.Decimal) (*TopupResult, error) {
	if !amount.IsPositive() {
		return nil, utils.ValidationFailed("Top-up amount must be positive", nil)
	}

	reference := "TOPUP-" + uuid.NewString()
	intent, err := s.gateway.CreatePaymentURL(ctx, amount, reference)
	if err != nil {
		return nil, err
	}

	topup := models.WalletTopupOrder{
		UserID:         userID,
		GatewayOrderID: intent.GatewayOrderID,
		Amount:         amount,
		Status:         models.TopupStatusPending,
	}
	if err := s.db.Create(&topup).Error; err != nil {
		return nil, err
	}

	utils.LogInfo("Top-up ID: %d initiated for user ID: %d, amount %s, gateway order %s",
		topup.ID, userID, amount, intent.GatewayOrderID)
	return &TopupResult{
		TopupID:        topup.ID,
		GatewayOrderID: intent.GatewayOrderID,
		Amount:         amount,
		PaymentURL:     intent.URL,
	}, nil
}

// ConfirmTopup settles a verified gateway callback for a top-up order.
// A captured payment credits the wallet; anything else marks the top-up
// failed. Replays of a completed top-up are no-ops.
func (s *TopupService) ConfirmTopup(result *CallbackResult) (*models.WalletTopupOrder, error) {
	var topup *models.WalletTopupOrder
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var t models.WalletTopupOrder
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("gateway_order_id = ?", result.GatewayOrderID).First(&t).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFoundAppError("Top-up order not found")
			}
			return err
		}

		if t.Status == models.TopupStatusCompleted {
			topup = &t
			return nil
		}

		if result.Status != GatewayStatusCaptured {
			t.Status = models.TopupStatusFailed
			if err := tx.Save(&t).Error; err != nil {
				return err
			}
			topup = &t
			return nil
		}

		// The wallet is credited with what the top-up asked for, so a
		// captured amount that disagrees must not credit anything.
		if result.Amount.IsPositive() && !result.Amount.Equal(t.Amount) {
			utils.LogError("Top-up amount mismatch for gateway order %s - captured %s, expected %s",
				t.GatewayOrderID, result.Amount, t.Amount)
			return utils.GatewayFailure(
				fmt.Sprintf("Captured amount %s does not match the top-up amount %s", result.Amount, t.Amount), nil)
		}

		if _, err := s.wallets.Post(tx, Posting{
			OwnerKind:   models.OwnerKindCustomer,
			OwnerID:     t.UserID,
			Bucket:      models.BucketBalance,
			Amount:      t.Amount,
			Reason:      models.ReasonWalletTopup,
			Reference:   fmt.Sprintf("TOPUP-%s", t.GatewayOrderID),
			Description: "Wallet top-up via payment gateway",
		}); err != nil {
			return err
		}

		t.Status = models.TopupStatusCompleted
		if err := tx.Save(&t).Error; err != nil {
			return err
		}
		topup = &t
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.LogInfo("Top-up for gateway order %s settled, status: %s", result.GatewayOrderID, topup.Status)
	return topup, nil
}
