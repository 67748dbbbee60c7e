package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Payment split policies for checkout.
const (
	PaymentPolicyWalletFirst = "wallet_first"
	PaymentPolicyGatewayOnly = "gateway_only"
	PaymentPolicyWalletOnly  = "wallet_only"
)

// Config holds all configuration for the application
type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	Port       string
	Env        string

	RazorpayKey    string
	RazorpaySecret string

	// PlatformFeePercent is the commission rate applied to every paid
	// order, as a fraction in [0,1].
	PlatformFeePercent decimal.Decimal

	// RefundWindow is how long shop proceeds stay in PendingBalance
	// before they can be released.
	RefundWindow time.Duration

	PaymentPolicy string

	// Timeouts for external collaborator calls.
	ShippingTimeout time.Duration
	GatewayTimeout  time.Duration

	// MaxRetries bounds internal retries on concurrency conflicts.
	MaxRetries int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// .env is optional outside local development
	_ = godotenv.Load()

	config := &Config{
		DBHost:             os.Getenv("DB_HOST"),
		DBPort:             os.Getenv("DB_PORT"),
		DBUser:             os.Getenv("DB_USER"),
		DBPassword:         os.Getenv("DB_PASSWORD"),
		DBName:             os.Getenv("DB_NAME"),
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		RazorpayKey:        os.Getenv("RAZORPAY_KEY"),
		RazorpaySecret:     os.Getenv("RAZORPAY_SECRET"),
		PaymentPolicy:      getEnv("PAYMENT_POLICY", PaymentPolicyWalletFirst),
		ShippingTimeout:    getEnvDuration("SHIPPING_TIMEOUT", 5*time.Second),
		GatewayTimeout:     getEnvDuration("GATEWAY_TIMEOUT", 10*time.Second),
		RefundWindow:       getEnvDuration("REFUND_WINDOW", 7*24*time.Hour),
		MaxRetries:         getEnvInt("MAX_RETRIES", 3),
		PlatformFeePercent: decimal.NewFromFloat(0.10),
	}

	if v := os.Getenv("PLATFORM_FEE_PERCENT"); v != "" {
		fee, err := decimal.NewFromString(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PLATFORM_FEE_PERCENT: %v", err)
		}
		if fee.IsNegative() || fee.GreaterThan(decimal.NewFromInt(1)) {
			return nil, fmt.Errorf("PLATFORM_FEE_PERCENT must be in [0,1], got %s", fee)
		}
		config.PlatformFeePercent = fee
	}

	switch config.PaymentPolicy {
	case PaymentPolicyWalletFirst, PaymentPolicyGatewayOnly, PaymentPolicyWalletOnly:
	default:
		return nil, fmt.Errorf("invalid PAYMENT_POLICY: %s", config.PaymentPolicy)
	}

	return config, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
