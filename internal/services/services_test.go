package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"aurum_leasing/internal/models"
	"aurum_leasing/internal/storage"
	"aurum_leasing/internal/storage/memory"
)

var (
	lessor = models.NewSession(2, models.RoleArrendador, "t1", "")
	driver = models.NewSession(3, models.RoleArrendatario, "t1", "d1")
	admin  = models.NewSession(1, models.RoleSuperAdmin, "", "")
)

type event struct {
	kind      string
	paymentID string
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []event
}

func (r *recordingNotifier) add(kind string, p models.Payment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event{kind: kind, paymentID: p.ID})
}

func (r *recordingNotifier) PaymentReported(_ context.Context, _ models.Tenant, _ models.Driver, p models.Payment) {
	r.add("reported", p)
}

func (r *recordingNotifier) PaymentVerified(_ context.Context, _ models.Tenant, _ models.Driver, p models.Payment) {
	r.add("verified", p)
}

func (r *recordingNotifier) PaymentRejected(_ context.Context, _ models.Tenant, _ models.Driver, p models.Payment) {
	r.add("rejected", p)
}

// faultyStore injects failures into the repositories it hands out, including
// inside transactions.
type faultyStore struct {
	storage.IStorage
	creditErr error
	notifyErr error
	// stale makes every payment read see the row as still pending
	stale bool
}

type faultyDrivers struct {
	storage.IDriverStorage
	err error
}

func (d faultyDrivers) Credit(context.Context, string, decimal.Decimal) error { return d.err }

type faultyNotifications struct {
	storage.INotificationStorage
	err error
}

func (n faultyNotifications) Create(context.Context, *models.Notification) error { return n.err }

type stalePayments struct {
	storage.IPaymentStorage
}

func (p stalePayments) GetByID(ctx context.Context, id string) (*models.Payment, error) {
	got, err := p.IPaymentStorage.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	old := *got
	old.Status = models.PaymentPending
	return &old, nil
}

func (f *faultyStore) Driver() storage.IDriverStorage {
	if f.creditErr == nil {
		return f.IStorage.Driver()
	}
	return faultyDrivers{IDriverStorage: f.IStorage.Driver(), err: f.creditErr}
}

func (f *faultyStore) Notification() storage.INotificationStorage {
	if f.notifyErr == nil {
		return f.IStorage.Notification()
	}
	return faultyNotifications{INotificationStorage: f.IStorage.Notification(), err: f.notifyErr}
}

func (f *faultyStore) Payment() storage.IPaymentStorage {
	if !f.stale {
		return f.IStorage.Payment()
	}
	return stalePayments{IPaymentStorage: f.IStorage.Payment()}
}

func (f *faultyStore) WithTx(ctx context.Context, fn func(tx storage.IStorage) error) error {
	return f.IStorage.WithTx(ctx, func(tx storage.IStorage) error {
		inner := *f
		inner.IStorage = tx
		return fn(&inner)
	})
}

func newStore(t *testing.T) *memory.Store {
	t.Helper()
	s, err := memory.NewSeeded()
	if err != nil {
		t.Fatalf("NewSeeded: %v", err)
	}
	return s
}

func amount(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func report(t *testing.T, l *Ledger, v int64) *models.Payment {
	t.Helper()
	p, err := l.ReportPayment(context.Background(), ReportInput{
		DriverID: "d1",
		TenantID: "t1",
		Amount:   amount(v),
		Type:     "renta",
		Scope:    driver.Scope(),
	})
	if err != nil {
		t.Fatalf("ReportPayment: %v", err)
	}
	return p
}

func balance(t *testing.T, s storage.IStorage) decimal.Decimal {
	t.Helper()
	d, err := s.Driver().GetByID(context.Background(), "d1")
	if err != nil {
		t.Fatalf("get driver: %v", err)
	}
	return d.Balance
}

func TestReportVerifyAndReverify(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	rec := &recordingNotifier{}
	l := NewLedger(store, rec, true)

	p := report(t, l, 350)
	if p.Status != models.PaymentPending || p.Type != models.PaymentRent {
		t.Fatalf("reported payment = %+v", p)
	}

	inbox, err := NewNotifications(store).List(ctx, lessor, NotificationQuery{})
	if err != nil {
		t.Fatalf("lessor inbox: %v", err)
	}
	if len(inbox) != 1 || inbox[0].Type != models.NotificationPayment {
		t.Fatalf("lessor inbox = %+v", inbox)
	}

	verified, err := l.VerifyPayment(ctx, VerifyInput{PaymentID: p.ID, DriverID: "d1", Amount: amount(350), Scope: lessor.Scope()})
	if err != nil {
		t.Fatalf("VerifyPayment: %v", err)
	}
	if verified.Status != models.PaymentVerified {
		t.Fatalf("status = %s", verified.Status)
	}
	if got := balance(t, store); !got.Equal(amount(500)) {
		t.Fatalf("balance = %s, want 500", got)
	}

	driverInbox, _ := NewNotifications(store).List(ctx, driver, NotificationQuery{})
	if len(driverInbox) != 1 || driverInbox[0].Title != "Pago verificado" {
		t.Fatalf("driver inbox = %+v", driverInbox)
	}

	_, err = l.VerifyPayment(ctx, VerifyInput{PaymentID: p.ID, DriverID: "d1", Amount: amount(350), Scope: lessor.Scope()})
	if !errors.Is(err, models.ErrConflict) {
		t.Fatalf("re-verify err = %v, want conflict", err)
	}
	if got := balance(t, store); !got.Equal(amount(500)) {
		t.Fatalf("balance after re-verify = %s", got)
	}

	if len(rec.events) != 2 || rec.events[0].kind != "reported" || rec.events[1].kind != "verified" {
		t.Fatalf("events = %+v", rec.events)
	}
}

func TestConcurrentVerifyHasOneWinner(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	l := NewLedger(store, nil, true)
	p := report(t, l, 350)

	const n = 20
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = l.VerifyPayment(ctx, VerifyInput{PaymentID: p.ID, DriverID: "d1", Amount: amount(350), Scope: lessor.Scope()})
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case !errors.Is(err, models.ErrConflict):
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("wins = %d, want 1", wins)
	}
	if got := balance(t, store); !got.Equal(amount(500)) {
		t.Fatalf("balance = %s, want 500", got)
	}
}

func TestVerifyRollsBackWhenCreditFails(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	p := report(t, NewLedger(store, nil, true), 350)

	boom := errors.New("disk on fire")
	rec := &recordingNotifier{}
	faulty := NewLedger(&faultyStore{IStorage: store, creditErr: boom}, rec, true)

	_, err := faulty.VerifyPayment(ctx, VerifyInput{PaymentID: p.ID, DriverID: "d1", Amount: amount(350), Scope: lessor.Scope()})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want injected failure", err)
	}

	got, err := store.Payment().GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("get payment: %v", err)
	}
	if got.Status != models.PaymentPending {
		t.Fatalf("status = %s after failed verify, want pending", got.Status)
	}
	if b := balance(t, store); !b.Equal(amount(150)) {
		t.Fatalf("balance = %s, want 150", b)
	}
	if inbox, _ := NewNotifications(store).List(ctx, driver, NotificationQuery{}); len(inbox) != 0 {
		t.Fatalf("driver notified about a rolled back verification: %+v", inbox)
	}
	if len(rec.events) != 0 {
		t.Fatalf("notifier called for a rolled back verification: %+v", rec.events)
	}

	// the payment is still verifiable afterwards
	if _, err := NewLedger(store, nil, true).VerifyPayment(ctx, VerifyInput{PaymentID: p.ID, DriverID: "d1", Amount: amount(350), Scope: lessor.Scope()}); err != nil {
		t.Fatalf("retry verify: %v", err)
	}
}

func TestReportRollsBackWhenNotificationFails(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	boom := errors.New("notifications table locked")
	rec := &recordingNotifier{}
	l := NewLedger(&faultyStore{IStorage: store, notifyErr: boom}, rec, true)

	_, err := l.ReportPayment(ctx, ReportInput{DriverID: "d1", TenantID: "t1", Amount: amount(350), Scope: driver.Scope()})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want injected failure", err)
	}

	pending, err := NewLedger(store, nil, true).ListPending(ctx, "t1", lessor.Scope())
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("payment kept without its notification: %+v", pending)
	}
	ledger, err := NewLedger(store, nil, true).GetDriverLedger(ctx, "d1", driver.Scope())
	if err != nil {
		t.Fatalf("GetDriverLedger: %v", err)
	}
	if len(ledger) != 1 {
		t.Fatalf("ledger has %d rows, want only the seed payment", len(ledger))
	}
	if len(rec.events) != 0 {
		t.Fatalf("notifier called for a rolled back report: %+v", rec.events)
	}
}

func TestGuardedUpdateStopsStaleReviewer(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	p := report(t, NewLedger(store, nil, true), 350)

	if _, err := NewLedger(store, nil, true).VerifyPayment(ctx, VerifyInput{PaymentID: p.ID, DriverID: "d1", Amount: amount(350), Scope: lessor.Scope()}); err != nil {
		t.Fatalf("first verify: %v", err)
	}

	// a reviewer whose read predates the first verification
	rec := &recordingNotifier{}
	stale := NewLedger(&faultyStore{IStorage: store, stale: true}, rec, true)

	_, err := stale.VerifyPayment(ctx, VerifyInput{PaymentID: p.ID, DriverID: "d1", Amount: amount(350), Scope: lessor.Scope()})
	if !errors.Is(err, models.ErrPaymentNotPending) {
		t.Fatalf("verify err = %v, want ErrPaymentNotPending", err)
	}
	_, err = stale.RejectPayment(ctx, RejectInput{PaymentID: p.ID, Reason: "late", Scope: lessor.Scope()})
	if !errors.Is(err, models.ErrPaymentNotPending) {
		t.Fatalf("reject err = %v, want ErrPaymentNotPending", err)
	}

	if b := balance(t, store); !b.Equal(amount(500)) {
		t.Fatalf("balance = %s, want a single credit (500)", b)
	}
	got, err := store.Payment().GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("get payment: %v", err)
	}
	if got.Status != models.PaymentVerified {
		t.Fatalf("status = %s, want verified", got.Status)
	}
	inbox, err := NewNotifications(store).List(ctx, driver, NotificationQuery{IncludeRead: true})
	if err != nil {
		t.Fatalf("driver inbox: %v", err)
	}
	if len(inbox) != 1 {
		t.Fatalf("driver inbox has %d notifications, want 1", len(inbox))
	}
	if len(rec.events) != 0 {
		t.Fatalf("notifier called for a lost race: %+v", rec.events)
	}
}

func TestVerifyRejectsMismatchedInput(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	l := NewLedger(store, nil, true)
	p := report(t, l, 350)

	tests := []struct {
		name  string
		in    VerifyInput
		check func(error) bool
	}{
		{"amount mismatch", VerifyInput{PaymentID: p.ID, DriverID: "d1", Amount: amount(1000)}, models.IsValidation},
		{"driver mismatch", VerifyInput{PaymentID: p.ID, DriverID: "d2", Amount: amount(350)}, models.IsValidation},
		{"missing fields", VerifyInput{}, models.IsValidation},
		{"unknown payment", VerifyInput{PaymentID: "nope", DriverID: "d1", Amount: amount(350)}, func(err error) bool { return errors.Is(err, models.ErrNotFound) }},
		{"other tenant", VerifyInput{PaymentID: p.ID, DriverID: "d1", Amount: amount(350), Scope: models.Scope{TenantID: "t2"}}, func(err error) bool { return errors.Is(err, models.ErrForbidden) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.VerifyPayment(ctx, tt.in)
			if !tt.check(err) {
				t.Fatalf("err = %v", err)
			}
		})
	}

	if got := balance(t, store); !got.Equal(amount(150)) {
		t.Fatalf("balance = %s, want 150", got)
	}
}

func TestRejectPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("notifies driver", func(t *testing.T) {
		store := newStore(t)
		l := NewLedger(store, nil, true)
		p := report(t, l, 200)

		rejected, err := l.RejectPayment(ctx, RejectInput{PaymentID: p.ID, Reason: "comprobante ilegible", Scope: lessor.Scope()})
		if err != nil {
			t.Fatalf("RejectPayment: %v", err)
		}
		if rejected.Status != models.PaymentRejected || rejected.Metadata().RejectionReason != "comprobante ilegible" {
			t.Fatalf("rejected = %+v", rejected)
		}
		if got := balance(t, store); !got.Equal(amount(150)) {
			t.Fatalf("balance = %s", got)
		}
		inbox, _ := NewNotifications(store).List(ctx, driver, NotificationQuery{})
		if len(inbox) != 1 || inbox[0].Title != "Pago rechazado" {
			t.Fatalf("driver inbox = %+v", inbox)
		}

		_, err = l.VerifyPayment(ctx, VerifyInput{PaymentID: p.ID, DriverID: "d1", Amount: amount(200), Scope: lessor.Scope()})
		if !errors.Is(err, models.ErrPaymentNotPending) {
			t.Fatalf("verify after reject = %v", err)
		}
	})

	t.Run("silent when disabled", func(t *testing.T) {
		store := newStore(t)
		l := NewLedger(store, nil, false)
		p := report(t, l, 200)
		if _, err := l.RejectPayment(ctx, RejectInput{PaymentID: p.ID, Scope: lessor.Scope()}); err != nil {
			t.Fatalf("RejectPayment: %v", err)
		}
		if inbox, _ := NewNotifications(store).List(ctx, driver, NotificationQuery{}); len(inbox) != 0 {
			t.Fatalf("driver inbox = %+v", inbox)
		}
	})
}

func TestReportValidation(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	l := NewLedger(store, nil, true)

	if _, err := NewTenants(store).Create(ctx, &models.Tenant{ID: "t2", CompanyName: "Otra", Status: models.TenantSuspended}); err != nil {
		t.Fatalf("create tenant: %v", err)
	}

	tests := []struct {
		name  string
		in    ReportInput
		check func(error) bool
	}{
		{"zero amount", ReportInput{DriverID: "d1", TenantID: "t1", Amount: amount(0)}, models.IsValidation},
		{"negative amount", ReportInput{DriverID: "d1", TenantID: "t1", Amount: amount(-5)}, models.IsValidation},
		{"unknown type", ReportInput{DriverID: "d1", TenantID: "t1", Amount: amount(5), Type: "propina"}, models.IsValidation},
		{"unknown driver", ReportInput{DriverID: "ghost", TenantID: "t1", Amount: amount(5)}, func(err error) bool { return errors.Is(err, models.ErrNotFound) }},
		{"unknown tenant", ReportInput{DriverID: "d1", TenantID: "nope", Amount: amount(5)}, func(err error) bool { return errors.Is(err, models.ErrNotFound) }},
		{"suspended tenant", ReportInput{DriverID: "d1", TenantID: "t2", Amount: amount(5)}, func(err error) bool { return errors.Is(err, models.ErrTenantSuspended) }},
		{"outside caller scope", ReportInput{DriverID: "d1", TenantID: "t1", Amount: amount(5), Scope: models.Scope{TenantID: "t1", DriverID: "d9"}}, func(err error) bool { return errors.Is(err, models.ErrForbidden) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := l.ReportPayment(ctx, tt.in); !tt.check(err) {
				t.Fatalf("err = %v", err)
			}
		})
	}

	pending, _ := l.ListPending(ctx, "", admin.Scope())
	if len(pending) != 0 {
		t.Fatalf("failed reports left %d pending payments", len(pending))
	}
}

func TestLedgerConservation(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	l := NewLedger(store, nil, true)

	for i, v := range []int64{100, 250, 75, 40} {
		p := report(t, l, v)
		var err error
		if i%2 == 0 {
			_, err = l.VerifyPayment(ctx, VerifyInput{PaymentID: p.ID, DriverID: "d1", Amount: amount(v), Scope: lessor.Scope()})
		} else {
			_, err = l.RejectPayment(ctx, RejectInput{PaymentID: p.ID, Scope: lessor.Scope()})
		}
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	rec, err := l.Reconcile(ctx, "d1", lessor.Scope())
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if !rec.Consistent || !rec.Balance.Equal(amount(325)) {
		t.Fatalf("reconciliation = %+v", rec)
	}

	all, err := l.ReconcileTenant(ctx, "", lessor.Scope())
	if err != nil || len(all) != 1 || !all[0].Consistent {
		t.Fatalf("ReconcileTenant = %+v, %v", all, err)
	}

	ledger, err := l.GetDriverLedger(ctx, "d1", driver.Scope())
	if err != nil {
		t.Fatalf("GetDriverLedger: %v", err)
	}
	if len(ledger) != 5 {
		t.Fatalf("ledger has %d rows, want 5", len(ledger))
	}
	for i := 1; i < len(ledger); i++ {
		if ledger[i].CreatedAt.After(ledger[i-1].CreatedAt) {
			t.Fatalf("ledger not newest-first at %d", i)
		}
	}
}

func TestReconcileDetectsDrift(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	if err := store.Driver().Credit(ctx, "d1", amount(10)); err != nil {
		t.Fatalf("credit: %v", err)
	}
	rec, err := NewLedger(store, nil, true).Reconcile(ctx, "d1", admin.Scope())
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if rec.Consistent || !rec.Drift.Equal(amount(10)) {
		t.Fatalf("reconciliation = %+v", rec)
	}
}

func TestDriverReadsAreScoped(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	l := NewLedger(store, nil, true)

	if _, err := l.GetDriverBalance(ctx, "d1", models.Scope{TenantID: "t1", DriverID: "d2"}); !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("other driver's balance: %v", err)
	}
	b, err := l.GetDriverBalance(ctx, "d1", driver.Scope())
	if err != nil || !b.Equal(amount(150)) {
		t.Fatalf("balance = %s, %v", b, err)
	}
	if _, err := l.ListPending(ctx, "t9", lessor.Scope()); !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("other tenant's queue: %v", err)
	}
}
