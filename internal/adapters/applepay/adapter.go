// Package applepay implements the Apple Pay payment provider. The PassKit
// sheet lives in the POS app; the adapter talks to it through the WalletBridge
// port, so the orchestrator never touches platform wallet APIs directly.
package applepay

import (
	"context"
	"fmt"
	"time"

	"github.com/Lucid-Directions/cashapp-fynlo-sub009/internal/domain"
)

// processingRate is the nominal Apple Pay processing percentage.
const processingRate = 1.69

// Authorization is the outcome of a wallet authorization.
type Authorization struct {
	TransactionID string
	CardLast4     string
	Network       string // "visa", "mastercard", "amex"
}

// WalletBridge is the port to the device wallet layer.
type WalletBridge interface {
	// CanMakePayments reports whether the device wallet is set up with a card.
	CanMakePayments(ctx context.Context) (bool, error)

	// Authorize presents the payment sheet and returns the authorization.
	// It suspends until the user approves, declines, or the sheet times out.
	Authorize(ctx context.Context, req domain.CheckoutRequest) (*Authorization, error)
}

// Adapter implements domain.Provider for Apple Pay.
type Adapter struct {
	bridge     WalletBridge
	merchantID string
}

// New creates an Apple Pay adapter. A nil bridge leaves the method permanently
// unavailable, which is how the headless service runs.
func New(bridge WalletBridge, merchantID string) *Adapter {
	return &Adapter{
		bridge:     bridge,
		merchantID: merchantID,
	}
}

// Method returns the apple_pay method id.
func (a *Adapter) Method() domain.MethodID {
	return domain.MethodApplePay
}

// Describe returns the display metadata for Apple Pay.
func (a *Adapter) Describe() domain.PaymentMethod {
	return domain.PaymentMethod{
		ID:               domain.MethodApplePay,
		Name:             "Apple Pay",
		Icon:             "apple",
		Color:            "#000000",
		RequiresHardware: true, // NFC entitlement on the device
		ProcessingFee:    processingRate,
	}
}

// CheckAvailability reports whether a merchant id is configured and the
// wallet can make payments.
func (a *Adapter) CheckAvailability(ctx context.Context) (bool, error) {
	if a.bridge == nil || a.merchantID == "" {
		return false, nil
	}
	return a.bridge.CanMakePayments(ctx)
}

// Checkout runs the wallet authorization for the request.
func (a *Adapter) Checkout(ctx context.Context, req domain.CheckoutRequest) (*domain.PaymentResult, error) {
	if a.bridge == nil || a.merchantID == "" {
		return domain.FailedResult(domain.MethodApplePay, req.Amount, req.Currency,
			domain.NewPaymentError(domain.CodeApplePayError, "Apple Pay is not configured", false)), nil
	}

	auth, err := a.bridge.Authorize(ctx, req)
	if err != nil {
		return domain.FailedResult(domain.MethodApplePay, req.Amount, req.Currency,
			domain.NewPaymentError(domain.CodeApplePayError,
				fmt.Sprintf("wallet authorization failed: %v", err), true)), nil
	}

	return &domain.PaymentResult{
		Success:       true,
		Method:        domain.MethodApplePay,
		Amount:        req.Amount,
		Currency:      req.Currency,
		Timestamp:     time.Now(),
		TransactionID: auth.TransactionID,
		Metadata: map[string]string{
			"card_last4": auth.CardLast4,
			"network":    auth.Network,
			"reference":  req.Reference,
		},
	}, nil
}

// CalculateFee returns the Apple Pay processing fee for the amount.
func (a *Adapter) CalculateFee(amount float64) float64 {
	return amount * processingRate / 100
}
