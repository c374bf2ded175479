package external

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendEmail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/email", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req EmailRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "customer@example.com", req.To)
		assert.Equal(t, "booking_confirmed", req.Template)

		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(DeliveryResponse{Accepted: true, MessageID: "msg-1"})
	}))
	defer server.Close()

	nc := NewNotifyClient(NotifyConfig{BaseURL: server.URL, APIKey: "test-key"})
	resp, err := nc.SendEmail("customer@example.com", "booking_confirmed", map[string]string{"booking_number": "HH-20250601-00042"})
	require.NoError(t, err)

	assert.True(t, resp.Accepted)
	assert.Equal(t, "msg-1", resp.MessageID)
}

func TestSendSMS(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/sms", r.URL.Path)

		var req SMSRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "+27821234567", req.To)
		assert.Contains(t, req.Message, "verification code")

		json.NewEncoder(w).Encode(DeliveryResponse{Accepted: true, MessageID: "msg-2"})
	}))
	defer server.Close()

	nc := NewNotifyClient(NotifyConfig{BaseURL: server.URL, APIKey: "test-key"})
	resp, err := nc.SendSMS("+27821234567", "Your HelperHive verification code is 123456")
	require.NoError(t, err)
	assert.True(t, resp.Accepted)
}

func TestSendRejectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	nc := NewNotifyClient(NotifyConfig{BaseURL: server.URL, APIKey: "test-key"})
	_, err := nc.SendSMS("+27821234567", "hello")
	assert.Error(t, err)
}
