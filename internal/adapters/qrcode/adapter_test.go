package qrcode

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lucid-Directions/cashapp-fynlo-sub009/internal/domain"
)

// fakeBackend simulates the restaurant backend's QR endpoints. The payment
// reports "pending" until polls reaches paidAfter, then finalStatus.
type fakeBackend struct {
	finalStatus string
	paidAfter   int32
	polls       atomic.Int32
}

func (f *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/qr-payments", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		json.NewEncoder(w).Encode(QRPayment{
			ID:        "qr_1",
			QRPayload: "fynlopay://qr_1",
			Status:    StatusPending,
		})
	})
	mux.HandleFunc("GET /api/v1/qr-payments/", func(w http.ResponseWriter, r *http.Request) {
		status := StatusPending
		if f.polls.Add(1) >= f.paidAfter {
			status = f.finalStatus
		}
		json.NewEncoder(w).Encode(QRPayment{
			ID:            "qr_1",
			Status:        status,
			TransactionID: "TXN-QR-1",
		})
	})
	return mux
}

func newTestAdapter(t *testing.T, f *fakeBackend, timeout time.Duration) *Adapter {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)
	return New(NewClient(srv.URL, "test-key"), 5*time.Millisecond, timeout)
}

func TestCheckout(t *testing.T) {
	req := domain.CheckoutRequest{Amount: 30, Currency: "GBP", Reference: "order-3"}

	t.Run("settles after a few polls", func(t *testing.T) {
		a := newTestAdapter(t, &fakeBackend{finalStatus: StatusPaid, paidAfter: 3}, time.Second)
		result, err := a.Checkout(context.Background(), req)
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, "TXN-QR-1", result.TransactionID)
		assert.Equal(t, "fynlopay://qr_1", result.Metadata["qr_payload"])
	})

	t.Run("expired code reports QR_CODE_EXPIRED", func(t *testing.T) {
		a := newTestAdapter(t, &fakeBackend{finalStatus: StatusExpired, paidAfter: 1}, time.Second)
		result, err := a.Checkout(context.Background(), req)
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, domain.CodeQRCodeExpired, result.Error.Code)
		assert.True(t, result.Error.Recoverable)
	})

	t.Run("deadline exceeded while pending", func(t *testing.T) {
		a := newTestAdapter(t, &fakeBackend{finalStatus: StatusPending, paidAfter: 1}, 20*time.Millisecond)
		result, err := a.Checkout(context.Background(), req)
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, domain.CodeQRCodeExpired, result.Error.Code)
	})

	t.Run("context cancellation interrupts polling", func(t *testing.T) {
		a := newTestAdapter(t, &fakeBackend{finalStatus: StatusPending, paidAfter: 1}, time.Minute)
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Millisecond)
		defer cancel()
		result, err := a.Checkout(ctx, req)
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, domain.CodeQRCodeError, result.Error.Code)
	})

	t.Run("unconfigured adapter fails fast", func(t *testing.T) {
		a := New(NewClient("", ""), 0, 0)
		result, err := a.Checkout(context.Background(), req)
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.False(t, result.Error.Recoverable)
	})
}

func TestCheckAvailability(t *testing.T) {
	configured := New(NewClient("http://backend", ""), 0, 0)
	available, err := configured.CheckAvailability(context.Background())
	require.NoError(t, err)
	assert.True(t, available)

	unconfigured := New(NewClient("", ""), 0, 0)
	available, err = unconfigured.CheckAvailability(context.Background())
	require.NoError(t, err)
	assert.False(t, available)
}
