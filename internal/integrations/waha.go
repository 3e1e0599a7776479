package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// WahaClient talks to a WAHA (WhatsApp HTTP API) instance. The base URL and
// token are per call because every tenant may run its own instance.
type WahaClient struct {
	httpClient *http.Client
	session    string
}

func NewWahaClient(httpClient *http.Client) *WahaClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &WahaClient{httpClient: httpClient, session: "default"}
}

type sendTextRequest struct {
	ChatID  string `json:"chatId"`
	Text    string `json:"text"`
	Session string `json:"session"`
}

// ChatID turns a phone number into a WhatsApp chat id (digits@c.us).
func ChatID(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String() + "@c.us"
}

func (c *WahaClient) SendText(ctx context.Context, baseURL, token, phone, text string) error {
	if baseURL == "" {
		return ErrNotConfigured
	}
	body, err := json.Marshal(sendTextRequest{ChatID: ChatID(phone), Text: text, Session: c.session})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(baseURL, "/")+"/api/sendText", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("waha sendText: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("waha sendText: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}
