package external

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// NotifyClient delivers emails and SMS through the notification provider.
type NotifyClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type NotifyConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type EmailRequest struct {
	To       string            `json:"to"`
	Template string            `json:"template"`
	Params   map[string]string `json:"params,omitempty"`
}

type SMSRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

type DeliveryResponse struct {
	Accepted  bool   `json:"accepted"`
	MessageID string `json:"message_id"`
}

func NewNotifyClient(cfg NotifyConfig) *NotifyClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}

	return &NotifyClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

func (nc *NotifyClient) SendEmail(to, template string, params map[string]string) (*DeliveryResponse, error) {
	return nc.send("/api/v1/email", EmailRequest{To: to, Template: template, Params: params})
}

func (nc *NotifyClient) SendSMS(to, message string) (*DeliveryResponse, error) {
	return nc.send("/api/v1/sms", SMSRequest{To: to, Message: message})
}

func (nc *NotifyClient) send(path string, body interface{}) (*DeliveryResponse, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, nc.baseURL+path, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+nc.apiKey)

	resp, err := nc.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("notification request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var result DeliveryResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}
