package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lucid-Directions/cashapp-fynlo-sub009/internal/domain"
	"github.com/Lucid-Directions/cashapp-fynlo-sub009/internal/orchestrator"
)

// stubProvider is a minimal always-succeeding provider for handler tests.
type stubProvider struct {
	method domain.MethodID
	fee    float64
}

func (s *stubProvider) Method() domain.MethodID { return s.method }

func (s *stubProvider) Describe() domain.PaymentMethod {
	return domain.PaymentMethod{ID: s.method, Name: string(s.method), ProcessingFee: s.fee}
}

func (s *stubProvider) CheckAvailability(ctx context.Context) (bool, error) { return true, nil }

func (s *stubProvider) Checkout(ctx context.Context, req domain.CheckoutRequest) (*domain.PaymentResult, error) {
	return &domain.PaymentResult{
		Success:       true,
		Method:        s.method,
		Amount:        req.Amount,
		Currency:      req.Currency,
		Timestamp:     time.Now(),
		TransactionID: "TXN-API-1",
	}, nil
}

func (s *stubProvider) CalculateFee(amount float64) float64 { return amount * s.fee / 100 }

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	orch := orchestrator.New(
		domain.Config{EnabledMethods: []domain.MethodID{domain.MethodCash, domain.MethodQRCode}},
		&stubProvider{method: domain.MethodCash},
		&stubProvider{method: domain.MethodQRCode, fee: 1.2},
	)
	require.NoError(t, orch.RefreshAvailability(context.Background()))
	return SetupRouter(NewHandler(orch), gin.TestMode)
}

func do(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestStartPaymentHandler(t *testing.T) {
	router := newTestRouter(t)

	t.Run("successful payment", func(t *testing.T) {
		w := do(router, http.MethodPost, "/api/v1/payments",
			`{"method":"cash","amount":25.50,"currency":"GBP","reference":"order-1"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		var result domain.PaymentResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.True(t, result.Success)
		assert.Equal(t, domain.MethodCash, result.Method)
		assert.Equal(t, "TXN-API-1", result.TransactionID)
	})

	t.Run("unavailable method maps to 422", func(t *testing.T) {
		w := do(router, http.MethodPost, "/api/v1/payments",
			`{"method":"sumup","amount":10,"currency":"GBP"}`)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		var result domain.PaymentResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.Equal(t, domain.CodeMethodNotAvailable, result.Error.Code)
	})

	t.Run("malformed body maps to 400", func(t *testing.T) {
		w := do(router, http.MethodPost, "/api/v1/payments", `{"method":"cash","amount":-4}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestMethodHandlers(t *testing.T) {
	router := newTestRouter(t)

	t.Run("list methods with recommendation", func(t *testing.T) {
		w := do(router, http.MethodGet, "/api/v1/payments/methods", "")
		assert.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Methods     []domain.PaymentMethod `json:"methods"`
			Recommended *domain.PaymentMethod  `json:"recommended"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Len(t, body.Methods, 2)
		require.NotNil(t, body.Recommended)
		assert.Equal(t, domain.MethodQRCode, body.Recommended.ID)
	})

	t.Run("single method lookup", func(t *testing.T) {
		w := do(router, http.MethodGet, "/api/v1/payments/methods/cash", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"available":true`)
	})

	t.Run("unknown method id maps to 404", func(t *testing.T) {
		w := do(router, http.MethodGet, "/api/v1/payments/methods/bitcoin", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("refresh", func(t *testing.T) {
		w := do(router, http.MethodPost, "/api/v1/payments/methods/refresh", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestSessionAndFeeHandlers(t *testing.T) {
	router := newTestRouter(t)

	t.Run("empty session", func(t *testing.T) {
		w := do(router, http.MethodGet, "/api/v1/payments/session", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"in_progress":false`)
	})

	t.Run("fee quotes", func(t *testing.T) {
		w := do(router, http.MethodGet, "/api/v1/payments/fees?amount=100", "")
		assert.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Quotes []orchestrator.MethodQuote `json:"quotes"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Len(t, body.Quotes, 2)
	})

	t.Run("fee quote without amount maps to 400", func(t *testing.T) {
		w := do(router, http.MethodGet, "/api/v1/payments/fees", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("cancel without session is still 200", func(t *testing.T) {
		w := do(router, http.MethodPost, "/api/v1/payments/cancel", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestConfigHandlers(t *testing.T) {
	router := newTestRouter(t)

	w := do(router, http.MethodPut, "/api/v1/payments/config",
		`{"enabled_methods":["qr_code"],"auto_retry":true,"max_retries":2}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(router, http.MethodGet, "/api/v1/payments/methods/cash", "")
	assert.Contains(t, w.Body.String(), `"available":false`)

	w = do(router, http.MethodGet, "/api/v1/payments/config", "")
	var cfg domain.Config
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cfg))
	assert.True(t, cfg.AutoRetry)
	assert.Equal(t, 2, cfg.MaxRetries)
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)
	w := do(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "fynlo-payments")
}
