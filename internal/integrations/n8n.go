package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var ErrNotConfigured = errors.New("integration not configured")

const (
	EventPaymentReported = "PAYMENT_REPORTED"
	EventPaymentVerified = "PAYMENT_VERIFIED"
	EventPaymentRejected = "PAYMENT_REJECTED"
)

// WebhookEvent is the body posted to a tenant's n8n workflow.
type WebhookEvent struct {
	Event       string    `json:"event"`
	TenantID    string    `json:"tenantId"`
	CompanyName string    `json:"companyName"`
	Payload     any       `json:"payload"`
	Timestamp   time.Time `json:"timestamp"`
}

type N8nClient struct {
	httpClient *http.Client
}

func NewN8nClient(httpClient *http.Client) *N8nClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &N8nClient{httpClient: httpClient}
}

func (c *N8nClient) Trigger(ctx context.Context, webhookURL string, ev WebhookEvent) error {
	if webhookURL == "" {
		return ErrNotConfigured
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("n8n %s: %w", ev.Event, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("n8n %s: status %d", ev.Event, resp.StatusCode)
	}
	return nil
}
