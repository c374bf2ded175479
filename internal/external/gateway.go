package external

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"
)

// GatewayClient talks to the card payment gateway. All amounts are in minor
// units of the given currency.
type GatewayClient struct {
	baseURL    string
	merchantID string
	secretKey  string
	httpClient *http.Client
}

type GatewayConfig struct {
	BaseURL    string
	MerchantID string
	SecretKey  string
	Timeout    time.Duration
}

// Gateway intent statuses.
const (
	IntentSucceeded  = "succeeded"
	IntentProcessing = "processing"
	IntentFailed     = "failed"
)

type IntentRequest struct {
	MerchantID  string            `json:"merchantId"`
	Token       string            `json:"token"`
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Reference   string            `json:"reference"`
	Description string            `json:"description,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type IntentResponse struct {
	Success      bool   `json:"success"`
	IntentID     string `json:"intentId"`
	ClientSecret string `json:"clientSecret"`
	Status       string `json:"status"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	CreatedAt    string `json:"createdAt"`
}

type RetrieveRequest struct {
	MerchantID string `json:"merchantId"`
	Token      string `json:"token"`
	IntentID   string `json:"intentId"`
}

type RefundGatewayRequest struct {
	MerchantID string `json:"merchantId"`
	Token      string `json:"token"`
	IntentID   string `json:"intentId"`
	Amount     int64  `json:"amount"`
	Reason     string `json:"reason,omitempty"`
}

type RefundGatewayResponse struct {
	Success  bool   `json:"success"`
	RefundID string `json:"refundId"`
	IntentID string `json:"intentId"`
	Amount   int64  `json:"amount"`
	Status   string `json:"status"`
}

func NewGatewayClient(cfg GatewayConfig) *GatewayClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &GatewayClient{
		baseURL:    cfg.BaseURL,
		merchantID: cfg.MerchantID,
		secretKey:  cfg.SecretKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// generateToken signs a request: merchant id and secret are mixed in, the
// parameters are sorted by key, their values concatenated and hashed.
func (gc *GatewayClient) generateToken(params map[string]string) string {
	params["MerchantId"] = gc.merchantID
	params["SecretKey"] = gc.secretKey

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var tokenString string
	for _, key := range keys {
		tokenString += params[key]
	}

	hash := sha256.Sum256([]byte(tokenString))
	return hex.EncodeToString(hash[:])
}

// CreateIntent opens a payment intent for a booking total.
func (gc *GatewayClient) CreateIntent(amount int64, currency, reference, description string, metadata map[string]string) (*IntentResponse, error) {
	token := gc.generateToken(map[string]string{
		"Amount":    strconv.FormatInt(amount, 10),
		"Currency":  currency,
		"Reference": reference,
	})

	req := IntentRequest{
		MerchantID:  gc.merchantID,
		Token:       token,
		Amount:      amount,
		Currency:    currency,
		Reference:   reference,
		Description: description,
		Metadata:    metadata,
	}

	var result IntentResponse
	if err := gc.post("/api/v1/intents/create", req, &result); err != nil {
		return nil, err
	}

	if !result.Success {
		return nil, fmt.Errorf("intent creation failed for reference %s", reference)
	}

	return &result, nil
}

// RetrieveIntent fetches the current gateway-side status of an intent.
func (gc *GatewayClient) RetrieveIntent(intentID string) (*IntentResponse, error) {
	token := gc.generateToken(map[string]string{
		"IntentId": intentID,
	})

	req := RetrieveRequest{
		MerchantID: gc.merchantID,
		Token:      token,
		IntentID:   intentID,
	}

	var result IntentResponse
	if err := gc.post("/api/v1/intents/retrieve", req, &result); err != nil {
		return nil, err
	}

	if !result.Success {
		return nil, fmt.Errorf("intent retrieve failed for %s", intentID)
	}

	return &result, nil
}

// CreateRefund refunds part or all of a captured intent.
func (gc *GatewayClient) CreateRefund(intentID string, amount int64, reason string) (*RefundGatewayResponse, error) {
	token := gc.generateToken(map[string]string{
		"Amount":   strconv.FormatInt(amount, 10),
		"IntentId": intentID,
	})

	req := RefundGatewayRequest{
		MerchantID: gc.merchantID,
		Token:      token,
		IntentID:   intentID,
		Amount:     amount,
		Reason:     reason,
	}

	var result RefundGatewayResponse
	if err := gc.post("/api/v1/refunds/create", req, &result); err != nil {
		return nil, err
	}

	if !result.Success {
		return nil, fmt.Errorf("refund failed for intent %s", intentID)
	}

	return &result, nil
}

func (gc *GatewayClient) post(path string, body, out interface{}) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := gc.httpClient.Post(gc.baseURL+path, "application/json", bytes.NewBuffer(jsonBody))
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode gateway response: %w", err)
	}

	return nil
}
