package momo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Gateway is the mobile money capability used by the engines
type Gateway interface {
	RequestPayment(ctx context.Context, req PaymentRequest) (*PaymentResult, error)
	DisburseWinnings(ctx context.Context, req DisbursementRequest) (*PaymentResult, error)
}

// PaymentRequest asks a subscriber to approve a debit
type PaymentRequest struct {
	Phone     string  `json:"phone"`
	Amount    float64 `json:"amount"`
	Provider  string  `json:"provider"`
	Reference string  `json:"reference"`
}

// DisbursementRequest credits a winner
type DisbursementRequest struct {
	Phone     string  `json:"phone"`
	Amount    float64 `json:"amount"`
	Provider  string  `json:"provider"`
	Reference string  `json:"reference"`
}

// PaymentResult is the gateway's verdict on a collection or disbursement
type PaymentResult struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transactionId"`
	Message       string `json:"message,omitempty"`
}

// Client represents a mobile money API client
type Client struct {
	BaseURL   string
	APIKey    string
	APISecret string
	MockAPI   bool

	mockSuccessRate float64
	mockLatency     time.Duration
	client          *http.Client

	mu  sync.Mutex
	rnd *rand.Rand
}

// Option customises a Client
type Option func(*Client)

// WithMockBehaviour sets the simulated collection success rate and network delay
func WithMockBehaviour(successRate float64, latency time.Duration) Option {
	return func(c *Client) {
		c.mockSuccessRate = successRate
		c.mockLatency = latency
	}
}

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithRand fixes the random source of the mock
func WithRand(r *rand.Rand) Option {
	return func(c *Client) { c.rnd = r }
}

// NewClient creates a new mobile money client
func NewClient(baseURL, apiKey, apiSecret string, mockAPI bool, opts ...Option) *Client {
	c := &Client{
		BaseURL:         baseURL,
		APIKey:          apiKey,
		APISecret:       apiSecret,
		MockAPI:         mockAPI,
		mockSuccessRate: 0.95,
		client:          &http.Client{Timeout: 60 * time.Second},
		rnd:             rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RequestPayment pushes a debit prompt to the subscriber's handset
func (c *Client) RequestPayment(ctx context.Context, req PaymentRequest) (*PaymentResult, error) {
	if c.MockAPI {
		return c.mockCall(ctx, c.mockSuccessRate)
	}
	return c.post(ctx, "/collections", req)
}

// DisburseWinnings sends a prize to the winner's wallet
func (c *Client) DisburseWinnings(ctx context.Context, req DisbursementRequest) (*PaymentResult, error) {
	if c.MockAPI {
		return c.mockCall(ctx, 1)
	}
	return c.post(ctx, "/disbursements", req)
}

func (c *Client) mockCall(ctx context.Context, successRate float64) (*PaymentResult, error) {
	if c.mockLatency > 0 {
		timer := time.NewTimer(c.mockLatency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	c.mu.Lock()
	roll := c.rnd.Float64()
	c.mu.Unlock()

	return &PaymentResult{
		Success:       roll < successRate,
		TransactionID: "TX-" + uuid.NewString()[:8],
	}, nil
}

func (c *Client) post(ctx context.Context, path string, body interface{}) (*PaymentResult, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.APIKey)
	req.Header.Set("Authorization", "Bearer "+c.APISecret)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	// A declined payment is a 4xx with a result body; anything else is an error
	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var result PaymentResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		result.Success = false
	}
	return &result, nil
}
