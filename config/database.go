package config

import (
	"fmt"

	"github.com/Anand-732/MartLedger/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// InitDB opens the database connection and migrates the schema. The handle
// is returned to the caller and injected into services; there is no package
// level DB global.
func InitDB(config *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		config.DBHost, config.DBPort, config.DBUser, config.DBPassword, config.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	err = db.AutoMigrate(
		&models.Shop{},
		&models.Product{},
		&models.Wallet{},
		&models.WalletTransaction{},
		&models.Order{},
		&models.OrderDetail{},
		&models.Transaction{},
		&models.Voucher{},
		&models.UserVoucher{},
		&models.RefundRequest{},
		&models.WithdrawalRequest{},
		&models.ShippingRate{},
		&models.WalletTopupOrder{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %v", err)
	}

	return db, nil
}
