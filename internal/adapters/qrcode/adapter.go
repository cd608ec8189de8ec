package qrcode

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/Lucid-Directions/cashapp-fynlo-sub009/internal/domain"
)

// processingRate is the nominal QR / open-banking percentage.
const processingRate = 1.2

// Default polling policy. The adapter owns its timeout; the orchestrator
// deliberately imposes none.
const (
	DefaultPollInterval = 2 * time.Second
	DefaultTimeout      = 2 * time.Minute
)

// Adapter implements domain.Provider for QR-code payments.
type Adapter struct {
	client       *Client
	pollInterval time.Duration
	timeout      time.Duration
}

// New creates a QR-code adapter. Non-positive intervals fall back to the
// package defaults.
func New(client *Client, pollInterval, timeout time.Duration) *Adapter {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Adapter{
		client:       client,
		pollInterval: pollInterval,
		timeout:      timeout,
	}
}

// Method returns the qr_code method id.
func (a *Adapter) Method() domain.MethodID {
	return domain.MethodQRCode
}

// Describe returns the display metadata for QR payments.
func (a *Adapter) Describe() domain.PaymentMethod {
	return domain.PaymentMethod{
		ID:            domain.MethodQRCode,
		Name:          "QR Code",
		Icon:          "qrcode-scan",
		Color:         "#6A1B9A",
		ProcessingFee: processingRate,
	}
}

// CheckAvailability reports whether a backend is configured. No network call:
// availability checks must stay fast.
func (a *Adapter) CheckAvailability(ctx context.Context) (bool, error) {
	return a.client.Configured(), nil
}

// Checkout creates the QR payment and polls until it settles, expires, or the
// context is done.
func (a *Adapter) Checkout(ctx context.Context, req domain.CheckoutRequest) (*domain.PaymentResult, error) {
	if !a.client.Configured() {
		return domain.FailedResult(domain.MethodQRCode, req.Amount, req.Currency,
			domain.NewPaymentError(domain.CodeQRCodeError, "QR payments are not configured", false)), nil
	}

	reference := req.Reference
	if reference == "" {
		reference = uuid.NewString()
	}

	payment, err := a.client.CreatePayment(ctx, req.Amount, req.Currency, reference)
	if err != nil {
		return domain.FailedResult(domain.MethodQRCode, req.Amount, req.Currency,
			domain.NewPaymentError(domain.CodeQRCodeError,
				fmt.Sprintf("failed to create QR payment: %v", err), true)), nil
	}

	return a.awaitSettlement(ctx, payment, req)
}

// awaitSettlement polls the backend until the payment reaches a final status.
func (a *Adapter) awaitSettlement(ctx context.Context, payment *QRPayment, req domain.CheckoutRequest) (*domain.PaymentResult, error) {
	deadline := time.Now().Add(a.timeout)
	ticker := time.NewTicker(a.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return domain.FailedResult(domain.MethodQRCode, req.Amount, req.Currency,
				domain.NewPaymentError(domain.CodeQRCodeError,
					"QR payment interrupted: "+ctx.Err().Error(), true)), nil
		case <-ticker.C:
		}

		current, err := a.client.PaymentStatus(ctx, payment.ID)
		if err != nil {
			// Transient poll failures are retried until the deadline.
			log.Printf("Failed to poll QR payment %s: %v", payment.ID, err)
		} else {
			switch current.Status {
			case StatusPaid:
				return &domain.PaymentResult{
					Success:       true,
					Method:        domain.MethodQRCode,
					Amount:        req.Amount,
					Currency:      req.Currency,
					Timestamp:     time.Now(),
					TransactionID: current.TransactionID,
					Metadata: map[string]string{
						"qr_payment_id": payment.ID,
						"qr_payload":    payment.QRPayload,
						"reference":     req.Reference,
					},
				}, nil
			case StatusExpired:
				return domain.FailedResult(domain.MethodQRCode, req.Amount, req.Currency,
					domain.NewPaymentError(domain.CodeQRCodeExpired,
						"QR code expired before the customer paid", true).
						WithAction("generate a new QR code")), nil
			case StatusFailed:
				return domain.FailedResult(domain.MethodQRCode, req.Amount, req.Currency,
					domain.NewPaymentError(domain.CodeQRCodeError,
						"QR payment failed at the provider", true)), nil
			}
		}

		if time.Now().After(deadline) {
			return domain.FailedResult(domain.MethodQRCode, req.Amount, req.Currency,
				domain.NewPaymentError(domain.CodeQRCodeExpired,
					"customer did not complete the QR payment in time", true).
					WithAction("generate a new QR code")), nil
		}
	}
}

// CalculateFee returns the QR processing fee for the amount.
func (a *Adapter) CalculateFee(amount float64) float64 {
	return amount * processingRate / 100
}
