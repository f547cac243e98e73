// Package flutterwave is a minimal client for the Flutterwave v3 API,
// covering transaction verification by reference.
package flutterwave

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://api.flutterwave.com"

// Transaction is the subset of gateway transaction data the billing
// service cares about.
type Transaction struct {
	TxRef    string  `json:"tx_ref"`
	FlwRef   string  `json:"flw_ref"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Status   string  `json:"status"`
}

// Successful reports whether the gateway settled the transaction.
func (t Transaction) Successful() bool { return t.Status == "successful" }

type verifyResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    Transaction `json:"data"`
}

// Verifier is what the billing service depends on; tests substitute a fake.
type Verifier interface {
	VerifyByReference(ctx context.Context, txRef string) (*Transaction, error)
}

type Client struct {
	baseURL   string
	secretKey string
	client    *http.Client
}

func NewClient(baseURL, secretKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:   baseURL,
		secretKey: secretKey,
		client:    &http.Client{Timeout: timeout},
	}
}

// VerifyByReference looks up a transaction by its client-generated tx_ref.
func (c *Client) VerifyByReference(ctx context.Context, txRef string) (*Transaction, error) {
	endpoint := fmt.Sprintf("%s/v3/transactions/verify_by_reference?tx_ref=%s",
		c.baseURL, url.QueryEscape(txRef))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build verify request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("verify transaction %s: %w", txRef, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("verify transaction %s: gateway returned %d", txRef, resp.StatusCode)
	}

	var body verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode verify response: %w", err)
	}
	if body.Status != "success" {
		return nil, fmt.Errorf("verify transaction %s: %s", txRef, body.Message)
	}
	return &body.Data, nil
}

var _ Verifier = (*Client)(nil)
