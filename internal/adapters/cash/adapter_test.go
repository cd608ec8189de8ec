package cash

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lucid-Directions/cashapp-fynlo-sub009/internal/domain"
)

func TestCheckout(t *testing.T) {
	a := New()

	result, err := a.Checkout(context.Background(), domain.CheckoutRequest{
		Amount:    25.50,
		Currency:  "GBP",
		Reference: "order-42",
	})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, domain.MethodCash, result.Method)
	assert.Equal(t, 25.50, result.Amount)
	assert.Equal(t, "GBP", result.Currency)
	assert.True(t, strings.HasPrefix(result.TransactionID, "CASH-"))
	assert.Equal(t, "order-42", result.Metadata["reference"])
}

func TestAlwaysAvailableAndFree(t *testing.T) {
	a := New()

	available, err := a.CheckAvailability(context.Background())
	require.NoError(t, err)
	assert.True(t, available)
	assert.Equal(t, 0.0, a.CalculateFee(999.99))
}
