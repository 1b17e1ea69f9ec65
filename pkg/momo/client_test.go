package momo

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMock_AlwaysFailsAtZeroRate(t *testing.T) {
	c := NewClient("", "", "", true, WithMockBehaviour(0, 0), WithRand(rand.New(rand.NewSource(1))))

	res, err := c.RequestPayment(context.Background(), PaymentRequest{Phone: "0241234567", Amount: 5})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.TransactionID)
}

func TestMock_DisbursementSucceeds(t *testing.T) {
	c := NewClient("", "", "", true, WithMockBehaviour(0, 0))

	res, err := c.DisburseWinnings(context.Background(), DisbursementRequest{Phone: "0241234567", Amount: 100})
	require.NoError(t, err)
	assert.True(t, res.Success)
}

func TestMock_HonoursContext(t *testing.T) {
	c := NewClient("", "", "", true, WithMockBehaviour(1, time.Hour))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := c.RequestPayment(ctx, PaymentRequest{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHTTP_Collection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/collections", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("X-API-Key"))

		var req PaymentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "PAY-1", req.Reference)

		_ = json.NewEncoder(w).Encode(PaymentResult{Success: true, TransactionID: "TX-9"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key", "secret", false)
	res, err := c.RequestPayment(context.Background(), PaymentRequest{Phone: "0241234567", Amount: 5, Reference: "PAY-1"})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "TX-9", res.TransactionID)
}

func TestHTTP_DeclinedAndServerError(t *testing.T) {
	status := http.StatusPaymentRequired
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"success":true,"message":"insufficient funds"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key", "secret", false)
	res, err := c.DisburseWinnings(context.Background(), DisbursementRequest{})
	require.NoError(t, err)
	assert.False(t, res.Success)

	status = http.StatusBadGateway
	_, err = c.DisburseWinnings(context.Background(), DisbursementRequest{})
	assert.Error(t, err)
}
