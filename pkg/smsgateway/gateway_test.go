package smsgateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPGateway_SendSMS(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "0241234567", body["phoneNumber"])
		assert.Equal(t, "HomeRadio", body["sender"])

		_, _ = w.Write([]byte(`{"messageId":"M-1"}`))
	}))
	defer srv.Close()

	id, err := NewHTTPGateway(srv.URL, "key", "HomeRadio").SendSMS(context.Background(), "0241234567", "You won")
	require.NoError(t, err)
	assert.Equal(t, "M-1", id)
}

func TestHTTPGateway_Failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewHTTPGateway(srv.URL, "bad", "HomeRadio").SendSMS(context.Background(), "0241234567", "You won")
	assert.ErrorContains(t, err, "status 401")
}

func TestMockGateway(t *testing.T) {
	id, err := NewMockGateway("TEST").SendSMS(context.Background(), "0241234567", "hi")
	require.NoError(t, err)
	assert.Contains(t, id, "TEST-MOCK-MSG-")
}
