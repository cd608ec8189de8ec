// Package domain contains the core business entities and interfaces for the
// payment orchestrator. This is the innermost layer of the Clean Architecture -
// it has no dependencies on external frameworks or infrastructure.
package domain

import "time"

// MethodID identifies a payment channel. The set is fixed; adding a channel
// means adding a constant here and registering a provider for it.
type MethodID string

const (
	MethodCash     MethodID = "cash"
	MethodSumUp    MethodID = "sumup"
	MethodApplePay MethodID = "apple_pay"
	MethodQRCode   MethodID = "qr_code"
	MethodSquare   MethodID = "square"
	MethodStripe   MethodID = "stripe"
)

// AllMethods lists every known method id in canonical order.
var AllMethods = []MethodID{
	MethodCash,
	MethodSumUp,
	MethodApplePay,
	MethodQRCode,
	MethodSquare,
	MethodStripe,
}

// Valid reports whether the id is one of the known payment methods.
func (m MethodID) Valid() bool {
	for _, known := range AllMethods {
		if m == known {
			return true
		}
	}
	return false
}

// PaymentMethod describes a payment channel as presented to the POS client.
type PaymentMethod struct {
	ID               MethodID `json:"id"`
	Name             string   `json:"name"`
	Icon             string   `json:"icon"`
	Color            string   `json:"color"`
	Enabled          bool     `json:"enabled"`           // administrator toggle
	Available        bool     `json:"available"`         // runtime capability check result
	RequiresAuth     bool     `json:"requires_auth"`     // manager PIN gate
	RequiresHardware bool     `json:"requires_hardware"` // physical reader / NFC
	ProcessingFee    float64  `json:"processing_fee"`    // nominal percentage, for display and quoting
}

// Usable reports whether the method can actually take a payment right now.
func (m PaymentMethod) Usable() bool {
	return m.Enabled && m.Available
}

// SessionState is the lifecycle state of a payment session.
type SessionState string

const (
	StateIdle         SessionState = "idle"
	StateInitializing SessionState = "initializing"
	StateReady        SessionState = "ready"
	StateProcessing   SessionState = "processing"
	StateConfirming   SessionState = "confirming"
	StateCompleted    SessionState = "completed"
	StateFailed       SessionState = "failed"
	StateCancelled    SessionState = "cancelled"
)

// Active reports whether the state occupies the single payment slot.
// At most one session may be in an active state at any time.
func (s SessionState) Active() bool {
	switch s {
	case StateInitializing, StateProcessing, StateConfirming:
		return true
	default:
		return false
	}
}

// Terminal reports whether the session can no longer change state.
func (s SessionState) Terminal() bool {
	switch s {
	case StateCompleted, StateFailed, StateCancelled:
		return true
	default:
		return false
	}
}

// PaymentSession is one attempt to collect payment for an order. It is created
// by StartPayment and mutated only by the orchestrator.
type PaymentSession struct {
	ID          string        `json:"id"`
	State       SessionState  `json:"state"`
	Method      MethodID      `json:"method,omitempty"`
	Amount      float64       `json:"amount"`
	Currency    string        `json:"currency"`
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
	Attempts    int           `json:"attempts"`
	LastError   *PaymentError `json:"last_error,omitempty"`
}

// CustomerInfo carries optional customer details through to the provider.
type CustomerInfo struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// CheckoutRequest is the input to a single provider checkout attempt.
type CheckoutRequest struct {
	Amount    float64       `json:"amount"`
	Currency  string        `json:"currency"`
	Reference string        `json:"reference"`
	Customer  *CustomerInfo `json:"customer,omitempty"`
}

// PaymentResult is the outcome of a checkout attempt. TransactionID is set
// when the provider produced one; Error is set iff Success is false.
type PaymentResult struct {
	Success       bool              `json:"success"`
	Method        MethodID          `json:"method"`
	Amount        float64           `json:"amount"`
	Currency      string            `json:"currency"`
	Timestamp     time.Time         `json:"timestamp"`
	TransactionID string            `json:"transaction_id,omitempty"`
	Error         *PaymentError     `json:"error,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// FailedResult builds a failure result for the given request parameters.
func FailedResult(method MethodID, amount float64, currency string, err *PaymentError) *PaymentResult {
	return &PaymentResult{
		Success:   false,
		Method:    method,
		Amount:    amount,
		Currency:  currency,
		Timestamp: time.Now(),
		Error:     err,
	}
}

// Config is the process-wide payment configuration. It is set once at startup
// and replaced wholesale via UpdateConfig.
type Config struct {
	EnabledMethods      []MethodID           `json:"enabled_methods"` // ordered allow-list
	DefaultMethod       MethodID             `json:"default_method"`
	AutoRetry           bool                 `json:"auto_retry"`
	MaxRetries          int                  `json:"max_retries"` // additional attempts after the first
	RetryDelay          time.Duration        `json:"retry_delay"`
	RequireCustomerInfo bool                 `json:"require_customer_info"`
	EnableTips          bool                 `json:"enable_tips"`
	EnableSplitPayment  bool                 `json:"enable_split_payment"`
	PlatformFees        map[MethodID]float64 `json:"platform_fees,omitempty"` // percentage overrides per method
}

// MethodEnabled reports whether the method is on the allow-list.
func (c Config) MethodEnabled(id MethodID) bool {
	for _, m := range c.EnabledMethods {
		if m == id {
			return true
		}
	}
	return false
}
