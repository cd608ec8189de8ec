// Fynlo Payments Service
//
// This is the main entry point for the payment orchestration service.
// It wires up all dependencies and starts the HTTP server.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Lucid-Directions/cashapp-fynlo-sub009/config"
	"github.com/Lucid-Directions/cashapp-fynlo-sub009/internal/adapters/applepay"
	"github.com/Lucid-Directions/cashapp-fynlo-sub009/internal/adapters/cash"
	"github.com/Lucid-Directions/cashapp-fynlo-sub009/internal/adapters/qrcode"
	"github.com/Lucid-Directions/cashapp-fynlo-sub009/internal/adapters/sumup"
	"github.com/Lucid-Directions/cashapp-fynlo-sub009/internal/api"
	"github.com/Lucid-Directions/cashapp-fynlo-sub009/internal/domain"
	"github.com/Lucid-Directions/cashapp-fynlo-sub009/internal/orchestrator"
)

func main() {
	log.Println("Starting Fynlo Payments Service...")

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment as-is")
	}

	// Load configuration
	cfg := config.Load()
	log.Printf("Configuration loaded: Port=%s, EnabledMethods=%v", cfg.Server.Port, cfg.Payment.EnabledMethods)

	if err := validateConfig(cfg); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Wire up dependencies (manual dependency injection)
	//
	// Provider adapters
	sumupClient := sumup.NewClient(cfg.SumUp.BaseURL, cfg.SumUp.APIKey)
	qrClient := qrcode.NewClient(cfg.QR.BaseURL, cfg.QR.APIKey)

	providers := []domain.Provider{
		cash.New(),
		sumup.New(sumupClient, cfg.SumUp.MerchantCode),
		// The wallet bridge lives in the POS app; headless runs keep the
		// method registered but unavailable.
		applepay.New(nil, cfg.ApplePay.MerchantID),
		qrcode.New(qrClient, cfg.QR.PollInterval, cfg.QR.Timeout),
	}

	// Orchestrator (composition-root owned, no global instance)
	orch := orchestrator.New(paymentConfig(cfg), providers...)

	startupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := orch.RefreshAvailability(startupCtx); err != nil {
		log.Printf("Initial availability check incomplete: %v", err)
	}
	cancel()

	// API Layer
	handler := api.NewHandler(orch)
	router := api.SetupRouter(handler, cfg.Server.GinMode)

	// Start server in a goroutine
	serverAddr := fmt.Sprintf(":%s", cfg.Server.Port)
	go func() {
		log.Printf("Server listening on %s", serverAddr)
		if err := router.Run(serverAddr); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
}

// paymentConfig maps the env-level payment settings onto the domain config.
func paymentConfig(cfg *config.Config) domain.Config {
	enabled := make([]domain.MethodID, 0, len(cfg.Payment.EnabledMethods))
	for _, raw := range cfg.Payment.EnabledMethods {
		id := domain.MethodID(raw)
		if !id.Valid() {
			log.Printf("Ignoring unknown payment method in PAYMENT_ENABLED_METHODS: %s", raw)
			continue
		}
		enabled = append(enabled, id)
	}

	rates := make(map[domain.MethodID]float64, len(enabled))
	for _, id := range enabled {
		if id == domain.MethodCash {
			continue
		}
		rates[id] = cfg.Payment.PlatformFeeDefault
	}

	return domain.Config{
		EnabledMethods:      enabled,
		DefaultMethod:       domain.MethodID(cfg.Payment.DefaultMethod),
		AutoRetry:           cfg.Payment.AutoRetry,
		MaxRetries:          cfg.Payment.MaxRetries,
		RetryDelay:          cfg.Payment.RetryDelay,
		RequireCustomerInfo: cfg.Payment.RequireCustomerInfo,
		EnableTips:          cfg.Payment.EnableTips,
		EnableSplitPayment:  cfg.Payment.EnableSplitPayment,
		PlatformFees:        rates,
	}
}

// validateConfig checks that required configuration values are set.
func validateConfig(cfg *config.Config) error {
	if len(cfg.Payment.EnabledMethods) == 0 {
		return fmt.Errorf("PAYMENT_ENABLED_METHODS must list at least one method")
	}
	if cfg.SumUp.APIKey == "" {
		log.Println("Warning: SUMUP_API_KEY not set, card payments will be unavailable")
	}
	if cfg.QR.BaseURL == "" {
		log.Println("Warning: QR_PAYMENT_URL not set, QR payments will be unavailable")
	}
	return nil
}
