// Package api contains the HTTP handlers and routing for the payment
// orchestrator. Handlers are thin maps from JSON to orchestrator calls; all
// payment semantics live in internal/orchestrator.
package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Lucid-Directions/cashapp-fynlo-sub009/internal/domain"
	"github.com/Lucid-Directions/cashapp-fynlo-sub009/internal/orchestrator"
)

// Handler contains the HTTP handlers for the payment API.
type Handler struct {
	orch *orchestrator.Orchestrator
}

// NewHandler creates a new API handler over the orchestrator.
func NewHandler(orch *orchestrator.Orchestrator) *Handler {
	return &Handler{orch: orch}
}

// StartPaymentRequest is the JSON body for POST /api/v1/payments.
type StartPaymentRequest struct {
	Method    string               `json:"method" binding:"required"`
	Amount    float64              `json:"amount" binding:"required,gt=0"`
	Currency  string               `json:"currency" binding:"required"`
	Reference string               `json:"reference"`
	Customer  *domain.CustomerInfo `json:"customer"`
}

// ErrorResponse is the envelope for request-level errors.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
}

// StartPayment handles POST /api/v1/payments.
// The response body is always the PaymentResult; the status code mirrors the
// error code for clients that only look at statuses.
func (h *Handler) StartPayment(c *gin.Context) {
	var req StartPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Success: false,
			Error:   "Invalid request body: " + err.Error(),
			Code:    "VALIDATION_ERROR",
		})
		return
	}

	result := h.orch.StartPayment(c.Request.Context(),
		domain.MethodID(req.Method), req.Amount, req.Currency, req.Reference, req.Customer)

	c.JSON(statusForResult(result), result)
}

// CancelPayment handles POST /api/v1/payments/cancel.
func (h *Handler) CancelPayment(c *gin.Context) {
	h.orch.CancelPayment()
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

// RefreshMethods handles POST /api/v1/payments/methods/refresh.
func (h *Handler) RefreshMethods(c *gin.Context) {
	if err := h.orch.RefreshAvailability(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Success: false,
			Error:   "availability refresh interrupted: " + err.Error(),
			Code:    "REFRESH_INTERRUPTED",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "refreshed",
		"methods": h.orch.AvailableMethods(),
	})
}

// ListMethods handles GET /api/v1/payments/methods.
func (h *Handler) ListMethods(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"methods":     h.orch.AvailableMethods(),
		"recommended": h.orch.RecommendedMethod(),
	})
}

// GetMethod handles GET /api/v1/payments/methods/:id.
func (h *Handler) GetMethod(c *gin.Context) {
	id := domain.MethodID(c.Param("id"))
	if !id.Valid() {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Success: false,
			Error:   "unknown payment method: " + c.Param("id"),
			Code:    "UNKNOWN_METHOD",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"method":    id,
		"available": h.orch.IsMethodAvailable(id),
	})
}

// GetSession handles GET /api/v1/payments/session.
func (h *Handler) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"session":     h.orch.CurrentSession(),
		"in_progress": h.orch.IsPaymentInProgress(),
	})
}

// QuoteFees handles GET /api/v1/payments/fees?amount=12.50.
func (h *Handler) QuoteFees(c *gin.Context) {
	amount, err := strconv.ParseFloat(c.Query("amount"), 64)
	if err != nil || amount <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Success: false,
			Error:   "amount must be a positive number",
			Code:    "VALIDATION_ERROR",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"amount": amount,
		"quotes": h.orch.QuoteFees(amount),
	})
}

// UpdateConfig handles PUT /api/v1/payments/config.
func (h *Handler) UpdateConfig(c *gin.Context) {
	var cfg domain.Config
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Success: false,
			Error:   "Invalid config body: " + err.Error(),
			Code:    "VALIDATION_ERROR",
		})
		return
	}
	h.orch.UpdateConfig(cfg)
	c.JSON(http.StatusOK, h.orch.Config())
}

// GetConfig handles GET /api/v1/payments/config.
func (h *Handler) GetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, h.orch.Config())
}

// Health handles GET /health.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "fynlo-payments",
	})
}

// statusForResult maps a payment result to an HTTP status.
func statusForResult(result *domain.PaymentResult) int {
	if result.Success {
		return http.StatusOK
	}
	if result.Error == nil {
		return http.StatusInternalServerError
	}
	switch result.Error.Code {
	case domain.CodePaymentInProgress:
		return http.StatusConflict
	case domain.CodeMethodNotAvailable:
		return http.StatusUnprocessableEntity
	case domain.CodeInvalidAmount:
		return http.StatusBadRequest
	default:
		return http.StatusPaymentRequired
	}
}
