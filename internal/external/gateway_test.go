package external

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) *GatewayClient {
	return NewGatewayClient(GatewayConfig{
		BaseURL:    baseURL,
		MerchantID: "merchant-1",
		SecretKey:  "secret-1",
	})
}

func TestGenerateToken(t *testing.T) {
	gc := newTestClient("http://unused")

	token := gc.generateToken(map[string]string{
		"Amount":    "55000",
		"Currency":  "ZAR",
		"Reference": "HH-20250601-00042",
	})

	// Keys sorted: Amount, Currency, MerchantId, Reference, SecretKey.
	expected := sha256.Sum256([]byte("55000" + "ZAR" + "merchant-1" + "HH-20250601-00042" + "secret-1"))
	assert.Equal(t, hex.EncodeToString(expected[:]), token)
}

func TestCreateIntent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/intents/create", r.URL.Path)

		var req IntentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "merchant-1", req.MerchantID)
		assert.Equal(t, int64(55000), req.Amount)
		assert.Equal(t, "ZAR", req.Currency)
		assert.NotEmpty(t, req.Token)

		json.NewEncoder(w).Encode(IntentResponse{
			Success:      true,
			IntentID:     "pi_123",
			ClientSecret: "cs_123",
			Status:       IntentProcessing,
			Amount:       req.Amount,
			Currency:     req.Currency,
		})
	}))
	defer server.Close()

	gc := newTestClient(server.URL)
	resp, err := gc.CreateIntent(55000, "ZAR", "HH-20250601-00042", "HelperHive booking", nil)
	require.NoError(t, err)

	assert.Equal(t, "pi_123", resp.IntentID)
	assert.Equal(t, "cs_123", resp.ClientSecret)
	assert.Equal(t, IntentProcessing, resp.Status)
}

func TestCreateIntentDeclined(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(IntentResponse{Success: false})
	}))
	defer server.Close()

	gc := newTestClient(server.URL)
	_, err := gc.CreateIntent(55000, "ZAR", "HH-20250601-00042", "", nil)
	assert.Error(t, err)
}

func TestRetrieveIntent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/intents/retrieve", r.URL.Path)

		var req RetrieveRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "pi_123", req.IntentID)

		json.NewEncoder(w).Encode(IntentResponse{
			Success:  true,
			IntentID: req.IntentID,
			Status:   IntentSucceeded,
		})
	}))
	defer server.Close()

	gc := newTestClient(server.URL)
	resp, err := gc.RetrieveIntent("pi_123")
	require.NoError(t, err)
	assert.Equal(t, IntentSucceeded, resp.Status)
}

func TestCreateRefund(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/refunds/create", r.URL.Path)

		var req RefundGatewayRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "pi_123", req.IntentID)
		assert.Equal(t, int64(27500), req.Amount)

		json.NewEncoder(w).Encode(RefundGatewayResponse{
			Success:  true,
			RefundID: "re_456",
			IntentID: req.IntentID,
			Amount:   req.Amount,
			Status:   "completed",
		})
	}))
	defer server.Close()

	gc := newTestClient(server.URL)
	resp, err := gc.CreateRefund("pi_123", 27500, "customer cancelled")
	require.NoError(t, err)

	assert.Equal(t, "re_456", resp.RefundID)
	assert.Equal(t, int64(27500), resp.Amount)
}

func TestGatewayUnreachable(t *testing.T) {
	gc := newTestClient("http://127.0.0.1:1")
	_, err := gc.CreateIntent(1000, "ZAR", "ref", "", nil)
	assert.Error(t, err)
}
