package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"aurum_leasing/internal/models"
	"aurum_leasing/internal/storage"
)

func seeded(t *testing.T) *Store {
	t.Helper()
	s, err := NewSeeded()
	if err != nil {
		t.Fatalf("NewSeeded: %v", err)
	}
	return s
}

func pending(id string, amount int64) *models.Payment {
	return &models.Payment{
		ID:       id,
		DriverID: "d1",
		TenantID: "t1",
		Amount:   decimal.NewFromInt(amount),
		Type:     models.PaymentRent,
		Status:   models.PaymentPending,
	}
}

func TestSeedConservation(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	d, err := s.Driver().GetByID(ctx, "d1")
	if err != nil {
		t.Fatalf("get driver: %v", err)
	}
	sum, err := s.Payment().SumVerified(ctx, "d1")
	if err != nil {
		t.Fatalf("sum: %v", err)
	}
	if !d.Balance.Equal(sum) {
		t.Fatalf("balance %s != verified sum %s", d.Balance, sum)
	}
}

func TestWithTxRollsBackEverything(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithTx(ctx, func(tx storage.IStorage) error {
		if err := tx.Payment().Create(ctx, pending("p-rollback", 100)); err != nil {
			return err
		}
		if err := tx.Driver().Credit(ctx, "d1", decimal.NewFromInt(100)); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}

	if _, err := s.Payment().GetByID(ctx, "p-rollback"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("payment survived rollback: %v", err)
	}
	d, _ := s.Driver().GetByID(ctx, "d1")
	if !d.Balance.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("balance = %s after rollback", d.Balance)
	}
}

func TestWithTxCommitsAndNests(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	err := s.WithTx(ctx, func(tx storage.IStorage) error {
		if err := tx.Payment().Create(ctx, pending("outer", 10)); err != nil {
			return err
		}
		_ = tx.WithTx(ctx, func(inner storage.IStorage) error {
			if err := inner.Payment().Create(ctx, pending("inner", 20)); err != nil {
				return err
			}
			return errors.New("discard inner")
		})
		return nil
	})
	if err != nil {
		t.Fatalf("WithTx: %v", err)
	}
	if _, err := s.Payment().GetByID(ctx, "outer"); err != nil {
		t.Fatalf("outer not committed: %v", err)
	}
	if _, err := s.Payment().GetByID(ctx, "inner"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("inner should be rolled back, got %v", err)
	}
}

func TestTransitionSingleWinner(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()
	if err := s.Payment().Create(ctx, pending("race", 350)); err != nil {
		t.Fatalf("create: %v", err)
	}

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.WithTx(ctx, func(tx storage.IStorage) error {
				p, err := tx.Payment().GetByID(ctx, "race")
				if err != nil {
					return err
				}
				ok, err := tx.Payment().Transition(ctx, p, models.PaymentPending, models.PaymentVerified)
				if err != nil || !ok {
					return errors.New("lost")
				}
				atomic.AddInt32(&wins, 1)
				return tx.Driver().Credit(ctx, "d1", p.Amount)
			})
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("wins = %d, want 1", wins)
	}
	d, _ := s.Driver().GetByID(ctx, "d1")
	if !d.Balance.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("balance = %s, want 500", d.Balance)
	}
}

func TestForeignKeysAndChecks(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	p := pending("fk", 10)
	p.DriverID = "ghost"
	if err := s.Payment().Create(ctx, p); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("unknown driver: %v", err)
	}
	if err := s.Payment().Create(ctx, pending("zero", 0)); !models.IsValidation(err) {
		t.Fatalf("zero amount: %v", err)
	}

	dup := &models.Vehicle{ID: "v9", Plate: "ABC-1234", TenantID: "t1", Status: models.VehicleAvailable}
	if err := s.Vehicle().Upsert(ctx, dup); !errors.Is(err, models.ErrConflict) {
		t.Fatalf("duplicate plate: %v", err)
	}
}

func TestNotificationsNewestFirstAndClear(t *testing.T) {
	s := New()
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { clock = clock.Add(time.Second); return clock }
	ctx := context.Background()

	role := string(models.RoleArrendador)
	t1, t2 := "t1", "t2"
	user := "d1"
	for _, n := range []*models.Notification{
		{ID: "a", Title: "a", RoleTarget: &role, TenantID: &t1},
		{ID: "b", Title: "b", RoleTarget: &role, TenantID: &t2},
		{ID: "c", Title: "c", UserID: &user},
		{ID: "d", Title: "d", RoleTarget: &role, TenantID: &t1},
	} {
		if err := s.Notification().Create(ctx, n); err != nil {
			t.Fatalf("create %s: %v", n.ID, err)
		}
	}

	got, err := s.Notification().List(ctx, models.NotificationFilter{Role: role, TenantID: "t1"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].ID != "d" || got[1].ID != "a" {
		t.Fatalf("list = %+v", got)
	}

	n, err := s.Notification().MarkAllRead(ctx, models.NotificationFilter{Role: role, TenantID: "t1"})
	if err != nil || n != 2 {
		t.Fatalf("MarkAllRead = %d, %v", n, err)
	}
	n, _ = s.Notification().MarkAllRead(ctx, models.NotificationFilter{Role: role, TenantID: "t1"})
	if n != 0 {
		t.Fatalf("second MarkAllRead = %d", n)
	}

	all, _ := s.Notification().List(ctx, models.NotificationFilter{Role: role, TenantID: "t1", IncludeRead: true})
	if len(all) != 2 {
		t.Fatalf("cleared notifications must not be deleted, got %d", len(all))
	}

	if err := s.Notification().MarkRead(ctx, "missing"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("MarkRead missing: %v", err)
	}
}

func TestUpsertDriverKeepsBalance(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	d := &models.Driver{ID: "d1", TenantID: "t1", Name: "Renamed", Balance: decimal.NewFromInt(999999)}
	if err := s.Driver().Upsert(ctx, d); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, _ := s.Driver().GetByID(ctx, "d1")
	if got.Name != "Renamed" || !got.Balance.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("got %+v", got)
	}

	fresh := &models.Driver{ID: "d2", TenantID: "t1", Name: "Nuevo", Balance: decimal.NewFromInt(50)}
	if err := s.Driver().Upsert(ctx, fresh); err != nil {
		t.Fatalf("insert: %v", err)
	}
	got, _ = s.Driver().GetByID(ctx, "d2")
	if !got.Balance.IsZero() {
		t.Fatalf("new driver balance = %s, want 0", got.Balance)
	}
}

func TestCanceledContext(t *testing.T) {
	s := seeded(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Driver().GetByID(ctx, "d1"); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}
