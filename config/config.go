// Package config handles loading and managing application configuration.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	// Server configuration
	Server ServerConfig

	// Payment orchestration settings
	Payment PaymentConfig

	// Provider credentials
	SumUp    SumUpConfig
	ApplePay ApplePayConfig
	QR       QRConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port    string
	GinMode string // "debug", "release", or "test"
}

// PaymentConfig holds the orchestrator settings.
type PaymentConfig struct {
	EnabledMethods      []string // ordered allow-list of method ids
	DefaultMethod       string
	AutoRetry           bool
	MaxRetries          int
	RetryDelay          time.Duration
	RequireCustomerInfo bool
	EnableTips          bool
	EnableSplitPayment  bool
	PlatformFeeDefault  float64 // percent, per-method overrides come via the API
}

// SumUpConfig holds SumUp API credentials.
type SumUpConfig struct {
	APIKey       string
	BaseURL      string
	MerchantCode string
}

// ApplePayConfig holds Apple Pay merchant configuration.
type ApplePayConfig struct {
	MerchantID string
}

// QRConfig holds the QR payment backend configuration.
type QRConfig struct {
	BaseURL      string
	APIKey       string
	PollInterval time.Duration
	Timeout      time.Duration
}

// Load reads configuration from environment variables.
// Returns a Config struct with all settings populated.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:    getEnv("PORT", "8080"),
			GinMode: getEnv("GIN_MODE", "debug"),
		},
		Payment: PaymentConfig{
			EnabledMethods:      getEnvList("PAYMENT_ENABLED_METHODS", []string{"cash", "sumup", "apple_pay", "qr_code"}),
			DefaultMethod:       getEnv("PAYMENT_DEFAULT_METHOD", "sumup"),
			AutoRetry:           getEnvBool("PAYMENT_AUTO_RETRY", true),
			MaxRetries:          getEnvInt("PAYMENT_MAX_RETRIES", 2),
			RetryDelay:          getEnvDuration("PAYMENT_RETRY_DELAY_MS", 1500*time.Millisecond),
			RequireCustomerInfo: getEnvBool("PAYMENT_REQUIRE_CUSTOMER_INFO", false),
			EnableTips:          getEnvBool("PAYMENT_ENABLE_TIPS", true),
			EnableSplitPayment:  getEnvBool("PAYMENT_ENABLE_SPLIT", false),
			PlatformFeeDefault:  getEnvFloat("PAYMENT_PLATFORM_FEE", 1.0),
		},
		SumUp: SumUpConfig{
			APIKey:       getEnv("SUMUP_API_KEY", ""),
			BaseURL:      getEnv("SUMUP_API_URL", ""),
			MerchantCode: getEnv("SUMUP_MERCHANT_CODE", ""),
		},
		ApplePay: ApplePayConfig{
			MerchantID: getEnv("APPLE_PAY_MERCHANT_ID", ""),
		},
		QR: QRConfig{
			BaseURL:      getEnv("QR_PAYMENT_URL", ""),
			APIKey:       getEnv("QR_PAYMENT_API_KEY", ""),
			PollInterval: getEnvDuration("QR_POLL_INTERVAL_MS", 2*time.Second),
			Timeout:      getEnvDuration("QR_TIMEOUT_MS", 2*time.Minute),
		},
	}
}

// getEnv retrieves an environment variable with a fallback default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an environment variable as an integer with a fallback.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvBool retrieves an environment variable as a boolean with a fallback.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// getEnvFloat retrieves an environment variable as a float with a fallback.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

// getEnvDuration retrieves a millisecond-valued environment variable as a
// duration with a fallback.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if ms, err := strconv.Atoi(value); err == nil && ms >= 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return defaultValue
}

// getEnvList retrieves a comma-separated environment variable as a slice.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
