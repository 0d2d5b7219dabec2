package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"jobscout/internal/config"
	"jobscout/internal/domain/billing"

	"github.com/google/uuid"
)

// Client talks to the hosted payment gateway. Only outbound payload
// construction lives here; settlement is the gateway's problem.
type Client struct {
	apiKey     string
	publicKey  string
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg config.PaymentsConfig) *Client {
	return &Client{
		apiKey:     cfg.APIKey,
		publicKey:  cfg.PublicKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// CheckoutRequest creates a hosted checkout session for a subscription
// purchase. Metadata round-trips through the gateway and comes back on the
// webhook.
type CheckoutRequest struct {
	UserID       uuid.UUID
	Email        string
	FirstName    string
	LastName     string
	Plan         billing.Plan
	Cycle        billing.Cycle
	Currency     string
	RedirectURL  string
	APIReference string
}

type CheckoutSession struct {
	ID     string  `json:"id"`
	URL    string  `json:"url"`
	Amount float64 `json:"amount"`
}

func (c *Client) CreateCheckout(ctx context.Context, req CheckoutRequest) (CheckoutSession, error) {
	amount, err := Price(req.Plan, req.Cycle)
	if err != nil {
		return CheckoutSession{}, err
	}
	currency := req.Currency
	if currency == "" {
		currency = "KES"
	}

	payload := map[string]any{
		"public_key":   c.publicKey,
		"amount":       amount,
		"currency":     currency,
		"email":        req.Email,
		"first_name":   req.FirstName,
		"last_name":    req.LastName,
		"redirect_url": req.RedirectURL,
		"api_ref":      req.APIReference,
		"metadata": map[string]string{
			"user_id":       req.UserID.String(),
			"plan":          string(req.Plan),
			"billing_cycle": string(req.Cycle),
		},
	}

	var session CheckoutSession
	if err := c.post(ctx, "/checkout/", payload, &session); err != nil {
		return CheckoutSession{}, err
	}
	return session, nil
}

// CreateCustomer registers the user with the gateway ahead of recurring
// billing.
func (c *Client) CreateCustomer(ctx context.Context, userID uuid.UUID, email, firstName, lastName string) (string, error) {
	payload := map[string]any{
		"email":      email,
		"first_name": firstName,
		"last_name":  lastName,
		"api_ref":    userID.String(),
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := c.post(ctx, "/customers/", payload, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// CreateSubscription attaches a recurring plan to an existing gateway
// customer.
func (c *Client) CreateSubscription(ctx context.Context, customerID string, plan billing.Plan, cycle billing.Cycle) (string, error) {
	amount, err := Price(plan, cycle)
	if err != nil {
		return "", err
	}
	payload := map[string]any{
		"customer_id": customerID,
		"plan":        string(plan),
		"cycle":       string(cycle),
		"amount":      amount,
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := c.post(ctx, "/subscriptions/", payload, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payment payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("create payment request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("payment request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read payment response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("payment gateway returned status %d: %s", resp.StatusCode, truncate(string(respBody), 256))
	}
	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode payment response: %w", err)
		}
	}
	return nil
}

// WebhookEvent is the inbound gateway callback. Metadata carries what we
// sent at checkout; the webhook usecase trusts it on SUCCESS.
type WebhookEvent struct {
	InvoiceID string            `json:"invoice_id"`
	State     string            `json:"state"`
	Value     float64           `json:"value"`
	APIRef    string            `json:"api_ref"`
	Metadata  map[string]string `json:"metadata"`
}

func (e WebhookEvent) Successful() bool {
	return strings.EqualFold(e.State, "COMPLETE") || strings.EqualFold(e.State, "SUCCESS")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
