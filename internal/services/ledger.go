package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	logrus "github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"aurum_leasing/internal/metrics"
	"aurum_leasing/internal/models"
	"aurum_leasing/internal/storage"
)

// Notifier receives ledger events after their transaction has committed.
// Implementations must not block the caller.
type Notifier interface {
	PaymentReported(ctx context.Context, tenant models.Tenant, driver models.Driver, p models.Payment)
	PaymentVerified(ctx context.Context, tenant models.Tenant, driver models.Driver, p models.Payment)
	PaymentRejected(ctx context.Context, tenant models.Tenant, driver models.Driver, p models.Payment)
}

type NopNotifier struct{}

func (NopNotifier) PaymentReported(context.Context, models.Tenant, models.Driver, models.Payment) {}
func (NopNotifier) PaymentVerified(context.Context, models.Tenant, models.Driver, models.Payment) {}
func (NopNotifier) PaymentRejected(context.Context, models.Tenant, models.Driver, models.Payment) {}

// Ledger owns the payment lifecycle. It is the only writer of driver balances.
type Ledger struct {
	store          storage.IStorage
	notifier       Notifier
	notifyOnReject bool
}

func NewLedger(store storage.IStorage, notifier Notifier, notifyOnReject bool) *Ledger {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Ledger{store: store, notifier: notifier, notifyOnReject: notifyOnReject}
}

type ReportInput struct {
	DriverID string
	TenantID string
	Amount   decimal.Decimal
	Type     string
	Metadata models.PaymentMetadata
	Scope    models.Scope
}

func (in ReportInput) validate() (models.PaymentType, error) {
	v := &models.ValidationError{}
	if strings.TrimSpace(in.DriverID) == "" {
		v.Add("driver_id", "is required")
	}
	if strings.TrimSpace(in.TenantID) == "" {
		v.Add("tenant_id", "is required")
	}
	if !in.Amount.IsPositive() {
		v.Add("amount", "must be greater than zero")
	}
	typ, err := models.ParsePaymentType(in.Type)
	if err != nil {
		v.Add("type", err.Error())
	}
	return typ, v.OrNil()
}

// ReportPayment records a pending payment and tells the tenant's lessors about it.
// Both rows are written in one transaction.
func (l *Ledger) ReportPayment(ctx context.Context, in ReportInput) (*models.Payment, error) {
	typ, err := in.validate()
	if err != nil {
		return nil, err
	}
	if !in.Scope.AllowsDriver(in.TenantID, in.DriverID) {
		return nil, fmt.Errorf("report for driver %s: %w", in.DriverID, models.ErrForbidden)
	}

	p := &models.Payment{
		ID:       uuid.NewString(),
		DriverID: in.DriverID,
		TenantID: in.TenantID,
		Amount:   in.Amount,
		Type:     typ,
		Status:   models.PaymentPending,
		Data:     datatypes.NewJSONType(in.Metadata),
	}

	var (
		tenant *models.Tenant
		driver *models.Driver
	)
	err = l.store.WithTx(ctx, func(tx storage.IStorage) error {
		var err error
		if tenant, err = tx.Tenant().GetByID(ctx, in.TenantID); err != nil {
			return err
		}
		if tenant.Status == models.TenantSuspended {
			return models.ErrTenantSuspended
		}
		if driver, err = tx.Driver().GetByID(ctx, in.DriverID); err != nil {
			return err
		}
		if driver.TenantID != in.TenantID {
			return models.NewValidationError("driver_id", "driver does not belong to tenant")
		}

		if err := tx.Payment().Create(ctx, p); err != nil {
			return err
		}
		role := string(models.RoleArrendador)
		return tx.Notification().Create(ctx, &models.Notification{
			ID:         uuid.NewString(),
			TenantID:   &in.TenantID,
			RoleTarget: &role,
			Title:      "Nuevo pago reportado",
			Message:    fmt.Sprintf("%s reportó un pago de %s (%s)", driver.Name, formatMoney(p.Amount), p.Type),
			Type:       models.NotificationPayment,
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.PaymentTransitions.WithLabelValues(string(models.PaymentPending)).Inc()
	logrus.WithFields(logrus.Fields{
		"payment_id": p.ID,
		"driver_id":  p.DriverID,
		"tenant_id":  p.TenantID,
		"amount":     p.Amount.String(),
	}).Info("payment reported")

	l.notifier.PaymentReported(context.WithoutCancel(ctx), *tenant, *driver, *p)
	return p, nil
}

type VerifyInput struct {
	PaymentID string
	DriverID  string
	Amount    decimal.Decimal
	Scope     models.Scope
}

// VerifyPayment moves a pending payment to verified, credits the driver by the
// stored amount and notifies the driver, all or nothing.
func (l *Ledger) VerifyPayment(ctx context.Context, in VerifyInput) (*models.Payment, error) {
	v := &models.ValidationError{}
	if in.PaymentID == "" {
		v.Add("payment_id", "is required")
	}
	if in.DriverID == "" {
		v.Add("driver_id", "is required")
	}
	if !in.Amount.IsPositive() {
		v.Add("amount", "must be greater than zero")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	var (
		p      *models.Payment
		tenant *models.Tenant
		driver *models.Driver
	)
	err := l.store.WithTx(ctx, func(tx storage.IStorage) error {
		var err error
		if p, err = l.loadPending(ctx, tx, in.PaymentID, in.Scope); err != nil {
			return err
		}
		if p.DriverID != in.DriverID {
			return models.NewValidationError("driver_id", "does not match the reported payment")
		}
		if !p.Amount.Equal(in.Amount) {
			return models.NewValidationError("amount", "does not match the reported payment")
		}

		ok, err := tx.Payment().Transition(ctx, p, models.PaymentPending, models.PaymentVerified)
		if err != nil {
			return err
		}
		if !ok {
			return models.ErrPaymentNotPending
		}
		if err := tx.Driver().Credit(ctx, p.DriverID, p.Amount); err != nil {
			return err
		}

		if driver, err = tx.Driver().GetByID(ctx, p.DriverID); err != nil {
			return err
		}
		if tenant, err = tx.Tenant().GetByID(ctx, p.TenantID); err != nil {
			return err
		}
		return tx.Notification().Create(ctx, &models.Notification{
			ID:       uuid.NewString(),
			TenantID: &p.TenantID,
			UserID:   &p.DriverID,
			Title:    "Pago verificado",
			Message: fmt.Sprintf("Tu pago de %s fue verificado. Saldo actual: %s",
				formatMoney(p.Amount), formatMoney(driver.Balance)),
			Type: models.NotificationPayment,
		})
	})
	if err != nil {
		l.countConflict("verify", err)
		return nil, err
	}

	metrics.PaymentTransitions.WithLabelValues(string(models.PaymentVerified)).Inc()
	logrus.WithFields(logrus.Fields{
		"payment_id": p.ID,
		"driver_id":  p.DriverID,
		"amount":     p.Amount.String(),
		"balance":    driver.Balance.String(),
	}).Info("payment verified")

	l.notifier.PaymentVerified(context.WithoutCancel(ctx), *tenant, *driver, *p)
	return p, nil
}

type RejectInput struct {
	PaymentID string
	Reason    string
	Scope     models.Scope
}

// RejectPayment closes a pending payment without touching the balance.
func (l *Ledger) RejectPayment(ctx context.Context, in RejectInput) (*models.Payment, error) {
	if in.PaymentID == "" {
		return nil, models.NewValidationError("payment_id", "is required")
	}

	var (
		p      *models.Payment
		tenant *models.Tenant
		driver *models.Driver
	)
	err := l.store.WithTx(ctx, func(tx storage.IStorage) error {
		var err error
		if p, err = l.loadPending(ctx, tx, in.PaymentID, in.Scope); err != nil {
			return err
		}

		meta := p.Metadata()
		meta.RejectionReason = strings.TrimSpace(in.Reason)
		p.Data = datatypes.NewJSONType(meta)

		ok, err := tx.Payment().Transition(ctx, p, models.PaymentPending, models.PaymentRejected)
		if err != nil {
			return err
		}
		if !ok {
			return models.ErrPaymentNotPending
		}

		if driver, err = tx.Driver().GetByID(ctx, p.DriverID); err != nil {
			return err
		}
		if tenant, err = tx.Tenant().GetByID(ctx, p.TenantID); err != nil {
			return err
		}
		if !l.notifyOnReject {
			return nil
		}
		msg := fmt.Sprintf("Tu pago de %s fue rechazado.", formatMoney(p.Amount))
		if meta.RejectionReason != "" {
			msg += " Motivo: " + meta.RejectionReason
		}
		return tx.Notification().Create(ctx, &models.Notification{
			ID:       uuid.NewString(),
			TenantID: &p.TenantID,
			UserID:   &p.DriverID,
			Title:    "Pago rechazado",
			Message:  msg,
			Type:     models.NotificationAlert,
		})
	})
	if err != nil {
		l.countConflict("reject", err)
		return nil, err
	}

	metrics.PaymentTransitions.WithLabelValues(string(models.PaymentRejected)).Inc()
	logrus.WithFields(logrus.Fields{
		"payment_id": p.ID,
		"driver_id":  p.DriverID,
		"reason":     p.Metadata().RejectionReason,
	}).Info("payment rejected")

	l.notifier.PaymentRejected(context.WithoutCancel(ctx), *tenant, *driver, *p)
	return p, nil
}

// loadPending loads a payment for review and fails fast when it is out of
// scope or already terminal. The guarded Transition still decides races.
func (l *Ledger) loadPending(ctx context.Context, tx storage.IStorage, id string, scope models.Scope) (*models.Payment, error) {
	p, err := tx.Payment().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !scope.AllowsTenant(p.TenantID) {
		return nil, fmt.Errorf("payment %s: %w", id, models.ErrForbidden)
	}
	if p.Status != models.PaymentPending {
		return nil, fmt.Errorf("payment %s is %s: %w", id, p.Status, models.ErrPaymentNotPending)
	}
	return p, nil
}

func (l *Ledger) countConflict(op string, err error) {
	if errors.Is(err, models.ErrConflict) {
		metrics.LedgerConflicts.WithLabelValues(op).Inc()
	}
}

func (l *Ledger) GetDriver(ctx context.Context, driverID string, scope models.Scope) (*models.Driver, error) {
	d, err := l.store.Driver().GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if !scope.AllowsDriver(d.TenantID, d.ID) {
		return nil, fmt.Errorf("driver %s: %w", driverID, models.ErrForbidden)
	}
	return d, nil
}

// GetDriverLedger returns the driver's payments, newest first.
func (l *Ledger) GetDriverLedger(ctx context.Context, driverID string, scope models.Scope) ([]models.Payment, error) {
	if _, err := l.GetDriver(ctx, driverID, scope); err != nil {
		return nil, err
	}
	return l.store.Payment().ListByDriver(ctx, driverID)
}

func (l *Ledger) GetDriverBalance(ctx context.Context, driverID string, scope models.Scope) (decimal.Decimal, error) {
	d, err := l.GetDriver(ctx, driverID, scope)
	if err != nil {
		return decimal.Zero, err
	}
	return d.Balance, nil
}

// ListPending is the lessor review queue. A tenant-scoped caller only ever sees
// its own tenant.
func (l *Ledger) ListPending(ctx context.Context, tenantID string, scope models.Scope) ([]models.Payment, error) {
	if scope.TenantID != "" {
		if tenantID != "" && tenantID != scope.TenantID {
			return nil, fmt.Errorf("tenant %s: %w", tenantID, models.ErrForbidden)
		}
		tenantID = scope.TenantID
	}
	return l.store.Payment().ListPending(ctx, tenantID)
}

// Reconciliation compares a stored balance with the ledger it should equal.
type Reconciliation struct {
	DriverID      string          `json:"driver_id"`
	TenantID      string          `json:"tenant_id"`
	Balance       decimal.Decimal `json:"balance"`
	VerifiedTotal decimal.Decimal `json:"verified_total"`
	Drift         decimal.Decimal `json:"drift"`
	Consistent    bool            `json:"consistent"`
	CheckedAt     time.Time       `json:"checked_at"`
}

func (l *Ledger) Reconcile(ctx context.Context, driverID string, scope models.Scope) (*Reconciliation, error) {
	var rec *Reconciliation
	err := l.store.WithTx(ctx, func(tx storage.IStorage) error {
		d, err := tx.Driver().GetByID(ctx, driverID)
		if err != nil {
			return err
		}
		if !scope.AllowsDriver(d.TenantID, d.ID) {
			return fmt.Errorf("driver %s: %w", driverID, models.ErrForbidden)
		}
		rec, err = reconcile(ctx, tx, *d)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ReconcileTenant checks every driver of the tenant, or every driver when
// tenantID is empty and the scope allows it.
func (l *Ledger) ReconcileTenant(ctx context.Context, tenantID string, scope models.Scope) ([]Reconciliation, error) {
	if scope.TenantID != "" {
		if tenantID != "" && tenantID != scope.TenantID {
			return nil, fmt.Errorf("tenant %s: %w", tenantID, models.ErrForbidden)
		}
		tenantID = scope.TenantID
	}

	out := []Reconciliation{}
	err := l.store.WithTx(ctx, func(tx storage.IStorage) error {
		drivers, err := tx.Driver().List(ctx, tenantID)
		if err != nil {
			return err
		}
		for _, d := range drivers {
			rec, err := reconcile(ctx, tx, d)
			if err != nil {
				return err
			}
			out = append(out, *rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	drifting := 0
	for _, rec := range out {
		if !rec.Consistent {
			drifting++
			logrus.WithFields(logrus.Fields{
				"driver_id": rec.DriverID,
				"balance":   rec.Balance.String(),
				"verified":  rec.VerifiedTotal.String(),
			}).Warn("driver balance drifted from ledger")
		}
	}
	metrics.LedgerDrift.Set(float64(drifting))
	return out, nil
}

func reconcile(ctx context.Context, tx storage.IStorage, d models.Driver) (*Reconciliation, error) {
	sum, err := tx.Payment().SumVerified(ctx, d.ID)
	if err != nil {
		return nil, err
	}
	drift := d.Balance.Sub(sum)
	return &Reconciliation{
		DriverID:      d.ID,
		TenantID:      d.TenantID,
		Balance:       d.Balance,
		VerifiedTotal: sum,
		Drift:         drift,
		Consistent:    drift.IsZero(),
		CheckedAt:     time.Now().UTC(),
	}, nil
}

func formatMoney(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
