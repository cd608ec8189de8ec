package sumup

import (
	"context"
	"fmt"
	"time"

	"github.com/Lucid-Directions/cashapp-fynlo-sub009/internal/domain"
)

// processingRate is SumUp's nominal contactless rate, in percent.
const processingRate = 0.69

// Adapter implements domain.Provider for SumUp / Tap-to-Pay payments.
type Adapter struct {
	client       *Client
	merchantCode string
}

// New creates a SumUp adapter.
func New(client *Client, merchantCode string) *Adapter {
	return &Adapter{
		client:       client,
		merchantCode: merchantCode,
	}
}

// Method returns the sumup method id.
func (a *Adapter) Method() domain.MethodID {
	return domain.MethodSumUp
}

// Describe returns the display metadata for SumUp.
func (a *Adapter) Describe() domain.PaymentMethod {
	return domain.PaymentMethod{
		ID:               domain.MethodSumUp,
		Name:             "Card (SumUp)",
		Icon:             "contactless-payment",
		Color:            "#0070BA",
		RequiresHardware: true,
		ProcessingFee:    processingRate,
	}
}

// CheckAvailability reports whether the API is configured and the merchant has
// a paired Tap-to-Pay reader.
func (a *Adapter) CheckAvailability(ctx context.Context) (bool, error) {
	if !a.client.Configured() || a.merchantCode == "" {
		return false, nil
	}
	return a.client.PairedReader(ctx, a.merchantCode)
}

// Checkout runs a SumUp checkout for the request. A reachable API without a
// paired reader fails with SUMUP_FALLBACK_REQUIRED, pointing the client at the
// manual card entry screen.
func (a *Adapter) Checkout(ctx context.Context, req domain.CheckoutRequest) (*domain.PaymentResult, error) {
	if !a.client.Configured() || a.merchantCode == "" {
		return domain.FailedResult(domain.MethodSumUp, req.Amount, req.Currency,
			domain.NewPaymentError(domain.CodeSumUpError, "SumUp is not configured", false)), nil
	}

	paired, err := a.client.PairedReader(ctx, a.merchantCode)
	if err != nil {
		return domain.FailedResult(domain.MethodSumUp, req.Amount, req.Currency,
			domain.NewPaymentError(domain.CodeSumUpError,
				fmt.Sprintf("failed to query reader state: %v", err), true)), nil
	}
	if !paired {
		return domain.FailedResult(domain.MethodSumUp, req.Amount, req.Currency,
			domain.NewPaymentError(domain.CodeSumUpFallbackRequired,
				"no paired card reader for this merchant", false).
				WithAction("open the manual card entry screen")), nil
	}

	checkout, err := a.client.CreateCheckout(ctx, a.merchantCode, req.Reference, req.Amount, req.Currency)
	if err != nil {
		return domain.FailedResult(domain.MethodSumUp, req.Amount, req.Currency,
			domain.NewPaymentError(domain.CodeSumUpError,
				fmt.Sprintf("checkout failed: %v", err), true)), nil
	}

	if checkout.Status != "PAID" {
		return domain.FailedResult(domain.MethodSumUp, req.Amount, req.Currency,
			domain.NewPaymentError(domain.CodeSumUpError,
				fmt.Sprintf("checkout finished with status %s", checkout.Status), true)), nil
	}

	return &domain.PaymentResult{
		Success:       true,
		Method:        domain.MethodSumUp,
		Amount:        req.Amount,
		Currency:      req.Currency,
		Timestamp:     time.Now(),
		TransactionID: checkout.TransactionCode,
		Metadata: map[string]string{
			"checkout_id": checkout.ID,
			"reference":   req.Reference,
		},
	}, nil
}

// CalculateFee returns the SumUp processing fee for the amount.
func (a *Adapter) CalculateFee(amount float64) float64 {
	return amount * processingRate / 100
}
