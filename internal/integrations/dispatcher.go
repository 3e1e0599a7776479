package integrations

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	logrus "github.com/sirupsen/logrus"

	"aurum_leasing/internal/metrics"
	"aurum_leasing/internal/models"
)

// PaymentPayload is the payload of every payment webhook event.
type PaymentPayload struct {
	PaymentID  string               `json:"paymentId"`
	DriverID   string               `json:"driverId"`
	DriverName string               `json:"driverName"`
	Amount     string               `json:"amount"`
	Type       models.PaymentType   `json:"type"`
	Status     models.PaymentStatus `json:"status"`
	Balance    string               `json:"balance,omitempty"`
	Reason     string               `json:"reason,omitempty"`
}

// Dispatcher fans ledger events out to WAHA and n8n on background goroutines.
// Failures are logged and counted, never returned.
type Dispatcher struct {
	waha     *WahaClient
	n8n      *N8nClient
	defaults models.IntegrationSettings
	timeout  time.Duration
	wg       sync.WaitGroup
}

func NewDispatcher(httpClient *http.Client, defaults models.IntegrationSettings, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Dispatcher{
		waha:     NewWahaClient(httpClient),
		n8n:      NewN8nClient(httpClient),
		defaults: defaults,
		timeout:  timeout,
	}
}

func (d *Dispatcher) PaymentReported(ctx context.Context, tenant models.Tenant, driver models.Driver, p models.Payment) {
	d.dispatch(ctx, EventPaymentReported, tenant, driver, p, "")
}

func (d *Dispatcher) PaymentVerified(ctx context.Context, tenant models.Tenant, driver models.Driver, p models.Payment) {
	msg := fmt.Sprintf("Hola %s, tu pago de $%s fue verificado. Saldo actual: $%s.",
		driver.Name, p.Amount.StringFixed(2), driver.Balance.StringFixed(2))
	d.dispatch(ctx, EventPaymentVerified, tenant, driver, p, msg)
}

func (d *Dispatcher) PaymentRejected(ctx context.Context, tenant models.Tenant, driver models.Driver, p models.Payment) {
	msg := fmt.Sprintf("Hola %s, tu pago de $%s fue rechazado.", driver.Name, p.Amount.StringFixed(2))
	if reason := p.Metadata().RejectionReason; reason != "" {
		msg += " Motivo: " + reason
	}
	d.dispatch(ctx, EventPaymentRejected, tenant, driver, p, msg)
}

// Wait blocks until every in-flight delivery has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) dispatch(ctx context.Context, event string, tenant models.Tenant, driver models.Driver, p models.Payment, whatsapp string) {
	settings := tenant.Integrations().Merge(d.defaults)
	ctx = context.WithoutCancel(ctx)
	log := logrus.WithFields(logrus.Fields{
		"event":      event,
		"tenant_id":  tenant.ID,
		"payment_id": p.ID,
	})

	ev := WebhookEvent{
		Event:       event,
		TenantID:    tenant.ID,
		CompanyName: tenant.CompanyName,
		Payload: PaymentPayload{
			PaymentID:  p.ID,
			DriverID:   driver.ID,
			DriverName: driver.Name,
			Amount:     p.Amount.StringFixed(2),
			Type:       p.Type,
			Status:     p.Status,
			Balance:    driver.Balance.StringFixed(2),
			Reason:     p.Metadata().RejectionReason,
		},
		Timestamp: time.Now().UTC(),
	}
	d.goDeliver(ctx, log, "n8n", func(ctx context.Context) error {
		return d.n8n.Trigger(ctx, settings.N8nWebhook, ev)
	})

	if whatsapp != "" && driver.Phone != "" {
		d.goDeliver(ctx, log, "waha", func(ctx context.Context) error {
			return d.waha.SendText(ctx, settings.WahaURL, settings.WahaToken, driver.Phone, whatsapp)
		})
	}
}

func (d *Dispatcher) goDeliver(ctx context.Context, log *logrus.Entry, integration string, send func(context.Context) error) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(ctx, d.timeout)
		defer cancel()

		err := send(ctx)
		switch {
		case errors.Is(err, ErrNotConfigured):
			metrics.IntegrationDeliveries.WithLabelValues(integration, "skipped").Inc()
			log.WithField("integration", integration).Debug("integration not configured")
		case err != nil:
			metrics.IntegrationDeliveries.WithLabelValues(integration, "failed").Inc()
			log.WithError(err).WithField("integration", integration).Warn("integration delivery failed")
		default:
			metrics.IntegrationDeliveries.WithLabelValues(integration, "ok").Inc()
			log.WithField("integration", integration).Debug("integration delivered")
		}
	}()
}
