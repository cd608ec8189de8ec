// Package qrcode implements the QR-code payment provider. The restaurant
// backend issues a pay-by-link payload the customer scans; the adapter then
// polls the backend until the payment settles or the code expires.
package qrcode

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// QR payment statuses reported by the backend.
const (
	StatusPending = "pending"
	StatusPaid    = "paid"
	StatusExpired = "expired"
	StatusFailed  = "failed"
)

// QRPayment is a QR payment record as returned by the backend.
type QRPayment struct {
	ID            string  `json:"id"`
	QRPayload     string  `json:"qr_payload"` // deep-link encoded into the QR image
	Status        string  `json:"status"`
	TransactionID string  `json:"transaction_id,omitempty"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
}

// Client talks to the restaurant backend's QR payment endpoints.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a QR payment client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Configured reports whether the client has a backend to talk to.
func (c *Client) Configured() bool {
	return c.baseURL != ""
}

// createRequest is the JSON body for POST /api/v1/qr-payments.
type createRequest struct {
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	Reference string  `json:"reference"`
}

// CreatePayment registers a new QR payment and returns its payload.
func (c *Client) CreatePayment(ctx context.Context, amount float64, currency, reference string) (*QRPayment, error) {
	body, err := json.Marshal(createRequest{Amount: amount, Currency: currency, Reference: reference})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal QR payment request: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/qr-payments", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("QR payment request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("backend returned status %d: %s", resp.StatusCode, string(raw))
	}

	var payment QRPayment
	if err := json.NewDecoder(resp.Body).Decode(&payment); err != nil {
		return nil, fmt.Errorf("failed to decode QR payment: %w", err)
	}
	return &payment, nil
}

// PaymentStatus fetches the current state of a QR payment.
func (c *Client) PaymentStatus(ctx context.Context, id string) (*QRPayment, error) {
	url := fmt.Sprintf("%s/api/v1/qr-payments/%s", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("QR status request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("backend returned status %d", resp.StatusCode)
	}

	var payment QRPayment
	if err := json.NewDecoder(resp.Body).Decode(&payment); err != nil {
		return nil, fmt.Errorf("failed to decode QR status: %w", err)
	}
	return &payment, nil
}

func (c *Client) setHeaders(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Content-Type", "application/json")
}
