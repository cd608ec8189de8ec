// Package domain contains the core business entities and interfaces for the
// payment orchestrator.
package domain

import "context"

// Provider is the port every payment adapter implements. This is the whole
// contract between the orchestrator and a payment channel - vendor SDK details
// stay behind the adapter.
type Provider interface {
	// Method returns the channel this provider handles.
	Method() MethodID

	// Describe returns the static display metadata for the channel. The
	// orchestrator fills in Enabled and Available when building its registry.
	Describe() PaymentMethod

	// CheckAvailability reports whether the channel can take a payment right
	// now (SDK configured, hardware paired, wallet present). It must be fast
	// and must not move money.
	CheckAvailability(ctx context.Context) (bool, error)

	// Checkout performs the actual money movement. Recoverable failures are
	// reported inside the PaymentResult; a non-nil error is reserved for
	// programmer-level faults and is converted to a generic failure by the
	// orchestrator.
	Checkout(ctx context.Context, req CheckoutRequest) (*PaymentResult, error)

	// CalculateFee returns the processing fee for the given amount, in the
	// same currency unit. Pure and synchronous.
	CalculateFee(amount float64) float64
}
