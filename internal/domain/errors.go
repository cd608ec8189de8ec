// Package domain contains the core business entities and interfaces for the
// payment orchestrator.
package domain

// Error codes understood by the POS client. Provider adapters may add their
// own codes; the orchestrator passes them through untouched.
const (
	// CodePaymentInProgress is returned when StartPayment is called while
	// another session holds the single payment slot. Retrying does not help;
	// the caller must wait for the active session to finish.
	CodePaymentInProgress = "PAYMENT_IN_PROGRESS"

	// CodeMethodNotAvailable is returned when the requested method is not
	// registered, disabled by configuration, or failed its capability check.
	CodeMethodNotAvailable = "METHOD_NOT_AVAILABLE"

	// CodeInvalidAmount is returned when the requested amount is not positive.
	CodeInvalidAmount = "INVALID_AMOUNT"

	// CodePaymentFailed is the generic failure code, used when an adapter
	// fails without a more specific code or returns a programmer-level error.
	CodePaymentFailed = "PAYMENT_FAILED"

	// Provider-specific codes.
	CodeSumUpError            = "SUMUP_ERROR"
	CodeSumUpFallbackRequired = "SUMUP_FALLBACK_REQUIRED"
	CodeApplePayError         = "APPLE_PAY_ERROR"
	CodeQRCodeError           = "QR_CODE_ERROR"
	CodeQRCodeExpired         = "QR_CODE_EXPIRED"
)

// PaymentError describes a payment failure in terms the POS client can act on.
// Recoverable is set conservatively: false only when retrying cannot fix the
// condition.
type PaymentError struct {
	Code            string `json:"code"`
	Message         string `json:"message"`
	Recoverable     bool   `json:"recoverable"`
	SuggestedAction string `json:"suggested_action,omitempty"`
}

// Error implements the error interface.
func (e *PaymentError) Error() string {
	return e.Code + ": " + e.Message
}

// NewPaymentError creates a PaymentError with the given code and message.
func NewPaymentError(code, message string, recoverable bool) *PaymentError {
	return &PaymentError{
		Code:        code,
		Message:     message,
		Recoverable: recoverable,
	}
}

// WithAction attaches a UI hint and returns the same error for chaining.
func (e *PaymentError) WithAction(action string) *PaymentError {
	e.SuggestedAction = action
	return e
}
