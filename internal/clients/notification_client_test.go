package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tm-acme-shop/acme-shop-pos-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/middleware"
)

func TestHTTPNotificationClient_SendSMS(t *testing.T) {
	var got SMSRequest
	var auth, requestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/notifications/sms", r.URL.Path)
		auth = r.Header.Get("Authorization")
		requestID = r.Header.Get(middleware.HeaderRequestID)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	client := NewHTTPNotificationClient(config.ServiceConfig{BaseURL: srv.URL, APIKey: "k", Timeout: time.Second}, logging.NewNopLogger())
	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-1")

	err := client.SendSMS(ctx, &SMSRequest{To: "98765", Message: "hi", Reference: "o1"})
	require.NoError(t, err)
	assert.Equal(t, "98765", got.To)
	assert.Equal(t, "Bearer k", auth)
	assert.Equal(t, "req-1", requestID)
}

func TestHTTPNotificationClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewHTTPNotificationClient(config.ServiceConfig{BaseURL: srv.URL, Timeout: time.Second}, logging.NewNopLogger())
	err := client.SendSMS(context.Background(), &SMSRequest{To: "1", Message: "x"})
	assert.ErrorContains(t, err, "502")
}
