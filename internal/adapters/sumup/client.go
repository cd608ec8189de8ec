// Package sumup implements the SumUp / Tap-to-Pay payment provider by talking
// to the SumUp REST API. The native reader SDK lives in the POS app; this side
// drives checkouts and inspects reader pairing state.
package sumup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultBaseURL is the production SumUp API endpoint.
const DefaultBaseURL = "https://api.sumup.com"

// Client is a thin HTTP client for the SumUp API endpoints the adapter needs.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a SumUp API client. An empty baseURL falls back to the
// production endpoint.
func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Configured reports whether the client has credentials to call the API.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// checkoutRequest is the JSON body for POST /v0.1/checkouts.
type checkoutRequest struct {
	CheckoutReference string  `json:"checkout_reference"`
	Amount            float64 `json:"amount"`
	Currency          string  `json:"currency"`
	MerchantCode      string  `json:"merchant_code"`
	Description       string  `json:"description,omitempty"`
}

// CheckoutResult is the relevant slice of the SumUp checkout response.
type CheckoutResult struct {
	ID              string `json:"id"`
	Status          string `json:"status"` // "PENDING", "PAID", "FAILED"
	TransactionCode string `json:"transaction_code"`
}

// CreateCheckout creates a checkout and returns its outcome.
func (c *Client) CreateCheckout(ctx context.Context, merchantCode string, reference string, amount float64, currency string) (*CheckoutResult, error) {
	body, err := json.Marshal(checkoutRequest{
		CheckoutReference: reference,
		Amount:            amount,
		Currency:          currency,
		MerchantCode:      merchantCode,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal checkout request: %w", err)
	}

	url := fmt.Sprintf("%s/v0.1/checkouts", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("checkout request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("sumup returned status %d: %s", resp.StatusCode, string(raw))
	}

	var result CheckoutResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode checkout response: %w", err)
	}
	return &result, nil
}

// readerListResponse is the JSON body of GET /v0.1/merchants/{code}/readers.
type readerListResponse struct {
	Items []struct {
		ID     string `json:"id"`
		Status string `json:"status"` // "paired", "expired", "processing"
	} `json:"items"`
}

// PairedReader reports whether the merchant has at least one paired reader.
// This is the Tap-to-Pay capability check.
func (c *Client) PairedReader(ctx context.Context, merchantCode string) (bool, error) {
	url := fmt.Sprintf("%s/v0.1/merchants/%s/readers", c.baseURL, merchantCode)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("reader list request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("sumup returned status %d listing readers", resp.StatusCode)
	}

	var readers readerListResponse
	if err := json.NewDecoder(resp.Body).Decode(&readers); err != nil {
		return false, fmt.Errorf("failed to decode reader list: %w", err)
	}
	for _, r := range readers.Items {
		if r.Status == "paired" {
			return true, nil
		}
	}
	return false, nil
}
