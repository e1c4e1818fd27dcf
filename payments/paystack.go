package payments

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"protector-server/store"
)

const defaultBaseURL = "https://api.paystack.co"

// PaystackClient talks to the payment gateway's transaction API. It carries
// the amount it is given; it never derives amounts itself.
type PaystackClient struct {
	secretKey string
	baseURL   string
	client    *http.Client
}

// NewPaystackClient creates a gateway client. baseURL is overridable for tests.
func NewPaystackClient(secretKey, baseURL string) *PaystackClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &PaystackClient{
		secretKey: secretKey,
		baseURL:   baseURL,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

// InitializeInput is the charge-initiation request. Amount is in minor
// currency units, as the gateway expects.
type InitializeInput struct {
	Email       string `json:"email"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Reference   string `json:"reference"`
	CallbackURL string `json:"callback_url,omitempty"`
}

// Authorization is the gateway's answer to a successful initialization
type Authorization struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// VerifyResult reports the settled state of a transaction
type VerifyResult struct {
	Status   string `json:"status"` // "success", "failed", "abandoned", ...
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type initializeResponse struct {
	Status  bool          `json:"status"`
	Message string        `json:"message"`
	Data    Authorization `json:"data"`
}

type verifyResponse struct {
	Status  bool         `json:"status"`
	Message string       `json:"message"`
	Data    VerifyResult `json:"data"`
}

// InitializeTransaction opens a payment session and returns the hosted
// authorization URL
func (c *PaystackClient) InitializeTransaction(in InitializeInput) (*Authorization, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encoding initialize request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building initialize request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrTransport, err)
	}
	defer resp.Body.Close()

	var decoded initializeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding initialize response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || !decoded.Status {
		return nil, fmt.Errorf("payment gateway rejected initialization: %s", decoded.Message)
	}

	return &decoded.Data, nil
}

// VerifyTransaction confirms the settled state of a previously initialized
// transaction by its reference
func (c *PaystackClient) VerifyTransaction(reference string) (*VerifyResult, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+"/transaction/verify/"+reference, nil)
	if err != nil {
		return nil, fmt.Errorf("building verify request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrTransport, err)
	}
	defer resp.Body.Close()

	var decoded verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding verify response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || !decoded.Status {
		return nil, fmt.Errorf("payment gateway rejected verification: %s", decoded.Message)
	}

	return &decoded.Data, nil
}
