// Package cash implements the cash payment provider. Cash has no vendor SDK:
// checkout is a zero-latency acknowledgment that the drawer took the money.
package cash

import (
	"context"
	"fmt"
	"time"

	"github.com/Lucid-Directions/cashapp-fynlo-sub009/internal/domain"
)

// Adapter implements domain.Provider for cash payments.
type Adapter struct{}

// New creates a cash adapter.
func New() *Adapter {
	return &Adapter{}
}

// Method returns the cash method id.
func (a *Adapter) Method() domain.MethodID {
	return domain.MethodCash
}

// Describe returns the display metadata for cash.
func (a *Adapter) Describe() domain.PaymentMethod {
	return domain.PaymentMethod{
		ID:            domain.MethodCash,
		Name:          "Cash",
		Icon:          "cash-multiple",
		Color:         "#00A651",
		RequiresAuth:  true, // drawer access needs a manager-approved till
		ProcessingFee: 0,
	}
}

// CheckAvailability always succeeds; a till can always take cash.
func (a *Adapter) CheckAvailability(ctx context.Context) (bool, error) {
	return true, nil
}

// Checkout acknowledges the cash payment with a synthetic transaction id.
func (a *Adapter) Checkout(ctx context.Context, req domain.CheckoutRequest) (*domain.PaymentResult, error) {
	now := time.Now()
	return &domain.PaymentResult{
		Success:       true,
		Method:        domain.MethodCash,
		Amount:        req.Amount,
		Currency:      req.Currency,
		Timestamp:     now,
		TransactionID: fmt.Sprintf("CASH-%d", now.UnixMilli()),
		Metadata: map[string]string{
			"tender":    "cash",
			"reference": req.Reference,
		},
	}, nil
}

// CalculateFee is always zero for cash.
func (a *Adapter) CalculateFee(amount float64) float64 {
	return 0
}
