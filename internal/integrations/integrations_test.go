package integrations

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"aurum_leasing/internal/models"
)

type captured struct {
	mu       sync.Mutex
	requests []*http.Request
	bodies   []map[string]any
}

func (c *captured) server(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		c.mu.Lock()
		c.requests = append(c.requests, r)
		c.bodies = append(c.bodies, body)
		c.mu.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestChatID(t *testing.T) {
	if got := ChatID("+52 (55) 1234-5678"); got != "525512345678@c.us" {
		t.Fatalf("ChatID = %q", got)
	}
}

func TestWahaSendText(t *testing.T) {
	var c captured
	srv := c.server(t, http.StatusCreated)

	err := NewWahaClient(srv.Client()).SendText(context.Background(), srv.URL+"/", "secret", "5215512345678", "hola")
	if err != nil {
		t.Fatalf("SendText: %v", err)
	}
	r := c.requests[0]
	if r.URL.Path != "/api/sendText" || r.Header.Get("Authorization") != "Bearer secret" {
		t.Fatalf("request = %s %s", r.URL.Path, r.Header.Get("Authorization"))
	}
	body := c.bodies[0]
	if body["chatId"] != "5215512345678@c.us" || body["text"] != "hola" || body["session"] != "default" {
		t.Fatalf("body = %v", body)
	}
}

func TestWahaErrors(t *testing.T) {
	var c captured
	srv := c.server(t, http.StatusUnauthorized)
	client := NewWahaClient(srv.Client())

	if err := client.SendText(context.Background(), srv.URL, "", "1", "x"); err == nil {
		t.Fatal("expected error on 401")
	}
	if err := client.SendText(context.Background(), "", "", "1", "x"); err != ErrNotConfigured {
		t.Fatalf("empty url: %v", err)
	}
}

func TestN8nTrigger(t *testing.T) {
	var c captured
	srv := c.server(t, http.StatusOK)

	err := NewN8nClient(srv.Client()).Trigger(context.Background(), srv.URL+"/webhook/aurum", WebhookEvent{
		Event:       EventPaymentReported,
		TenantID:    "t1",
		CompanyName: "Aurum",
		Payload:     map[string]string{"paymentId": "p1"},
	})
	if err != nil {
		t.Fatalf("Trigger: %v", err)
	}
	body := c.bodies[0]
	if body["event"] != EventPaymentReported || body["tenantId"] != "t1" || body["companyName"] != "Aurum" {
		t.Fatalf("body = %v", body)
	}
	if _, ok := body["timestamp"]; !ok {
		t.Fatal("timestamp missing")
	}
}

func TestDispatcherUsesTenantSettingsWithFallback(t *testing.T) {
	var hooks, waha captured
	hookSrv := hooks.server(t, http.StatusOK)
	wahaSrv := waha.server(t, http.StatusOK)

	d := NewDispatcher(nil, models.IntegrationSettings{WahaURL: wahaSrv.URL, WahaToken: "global"}, time.Second)
	tenant := models.Tenant{
		ID:                  "t1",
		CompanyName:         "Aurum Leasing Demo",
		IntegrationSettings: datatypes.NewJSONType(models.IntegrationSettings{N8nWebhook: hookSrv.URL}),
	}
	driver := models.Driver{ID: "d1", Name: "Chofer Demo", Phone: "5215512345678", Balance: decimal.NewFromInt(500)}
	p := models.Payment{ID: "pay-1", DriverID: "d1", TenantID: "t1", Amount: decimal.NewFromInt(350), Type: models.PaymentRent, Status: models.PaymentVerified}

	d.PaymentVerified(context.Background(), tenant, driver, p)
	d.Wait()

	if len(hooks.bodies) != 1 || hooks.bodies[0]["event"] != EventPaymentVerified {
		t.Fatalf("webhook bodies = %v", hooks.bodies)
	}
	payload := hooks.bodies[0]["payload"].(map[string]any)
	if payload["amount"] != "350.00" || payload["balance"] != "500.00" {
		t.Fatalf("payload = %v", payload)
	}
	if len(waha.requests) != 1 || waha.requests[0].Header.Get("Authorization") != "Bearer global" {
		t.Fatalf("waha requests = %d", len(waha.requests))
	}
}

func TestDispatcherReportedIsWebhookOnly(t *testing.T) {
	var hooks, waha captured
	hookSrv := hooks.server(t, http.StatusInternalServerError)
	wahaSrv := waha.server(t, http.StatusOK)

	d := NewDispatcher(nil, models.IntegrationSettings{WahaURL: wahaSrv.URL, N8nWebhook: hookSrv.URL}, time.Second)
	d.PaymentReported(context.Background(), models.Tenant{ID: "t1"}, models.Driver{ID: "d1", Phone: "1"}, models.Payment{ID: "p"})
	d.Wait()

	if len(hooks.requests) != 1 {
		t.Fatalf("webhook calls = %d", len(hooks.requests))
	}
	if len(waha.requests) != 0 {
		t.Fatalf("reported payments must not message the driver, got %d", len(waha.requests))
	}
}
