package smsgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/exp/slog"
)

// Gateway represents an SMS gateway interface
type Gateway interface {
	SendSMS(ctx context.Context, msisdn, message string) (string, error)
}

// HTTPGateway posts messages to a JSON SMS API
type HTTPGateway struct {
	BaseURL    string
	APIKey     string
	SenderID   string
	httpClient *http.Client
}

// MockGateway represents a mock SMS gateway for testing
type MockGateway struct {
	Name string
}

// NewHTTPGateway creates a new HTTPGateway
func NewHTTPGateway(baseURL, apiKey, senderID string) *HTTPGateway {
	return &HTTPGateway{
		BaseURL:  baseURL,
		APIKey:   apiKey,
		SenderID: senderID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewMockGateway creates a new Mock SMS gateway
func NewMockGateway(name string) *MockGateway {
	return &MockGateway{Name: name}
}

// SendSMS logs the message instead of sending it
func (g *MockGateway) SendSMS(_ context.Context, msisdn, message string) (string, error) {
	msgID := fmt.Sprintf("%s-MOCK-MSG-%d", g.Name, time.Now().UnixNano())
	slog.Info("Mock SMS sent", "gateway", g.Name, "messageId", msgID, "length", len(message))
	return msgID, nil
}

// SendSMS sends an SMS through the HTTP gateway
func (g *HTTPGateway) SendSMS(ctx context.Context, msisdn, message string) (string, error) {
	requestBody := map[string]interface{}{
		"phoneNumber": msisdn,
		"message":     message,
		"sender":      g.SenderID,
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.BaseURL+"/messages", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", g.APIKey))

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var response struct {
		MessageID string `json:"messageId"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	return response.MessageID, nil
}
