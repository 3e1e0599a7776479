package services

import (
	"context"
	"errors"
	"testing"

	"aurum_leasing/internal/models"
)

func TestNotificationInboxes(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	l := NewLedger(store, nil, true)
	n := NewNotifications(store)

	report(t, l, 100)
	report(t, l, 200)

	inbox, err := n.List(ctx, lessor, NotificationQuery{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(inbox) != 2 {
		t.Fatalf("lessor inbox has %d, want 2", len(inbox))
	}
	if inbox[0].CreatedAt.Before(inbox[1].CreatedAt) {
		t.Fatal("inbox is not newest-first")
	}

	other := models.NewSession(9, models.RoleArrendador, "t2", "")
	if got, _ := n.List(ctx, other, NotificationQuery{}); len(got) != 0 {
		t.Fatalf("another tenant's lessor sees %d notifications", len(got))
	}
	if got, _ := n.List(ctx, driver, NotificationQuery{}); len(got) != 0 {
		t.Fatalf("driver sees lessor broadcasts: %+v", got)
	}

	if _, err := n.List(ctx, driver, NotificationQuery{UserID: "d2"}); !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("reading another inbox: %v", err)
	}
	if _, err := n.List(ctx, lessor, NotificationQuery{Role: "nadie"}); !models.IsValidation(err) {
		t.Fatalf("bad role: %v", err)
	}
	if got, err := n.List(ctx, admin, NotificationQuery{Role: "arrendador"}); err != nil || len(got) != 2 {
		t.Fatalf("admin view = %d, %v", len(got), err)
	}
}

func TestMarkReadIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	n := NewNotifications(store)
	report(t, NewLedger(store, nil, true), 100)

	inbox, _ := n.List(ctx, lessor, NotificationQuery{})
	id := inbox[0].ID

	for i := 0; i < 2; i++ {
		if err := n.MarkRead(ctx, lessor, id); err != nil {
			t.Fatalf("MarkRead #%d: %v", i+1, err)
		}
	}
	got, _ := store.Notification().GetByID(ctx, id)
	if !got.Read {
		t.Fatal("notification not marked read")
	}

	if err := n.MarkRead(ctx, lessor, "missing"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("missing id: %v", err)
	}
	if err := n.MarkRead(ctx, driver, id); !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("driver acknowledging lessor notification: %v", err)
	}
	if unread, _ := n.List(ctx, lessor, NotificationQuery{}); len(unread) != 0 {
		t.Fatalf("unread = %d", len(unread))
	}
	if all, _ := n.List(ctx, lessor, NotificationQuery{IncludeRead: true}); len(all) != 1 {
		t.Fatalf("all = %d", len(all))
	}
}

func TestRolelessSessionHasNoInbox(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	n := NewNotifications(store)
	report(t, NewLedger(store, nil, true), 100)

	inbox, _ := n.List(ctx, lessor, NotificationQuery{})
	id := inbox[0].ID
	unknown := models.NewSession(7, models.Role("Chofer"), "t1", "")

	if err := n.MarkRead(ctx, unknown, id); !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("MarkRead err = %v, want forbidden", err)
	}
	if _, err := n.List(ctx, unknown, NotificationQuery{}); !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("List err = %v, want forbidden", err)
	}
	if got, _ := store.Notification().GetByID(ctx, id); got.Read {
		t.Fatal("notification acknowledged by a session without an inbox")
	}
}

func TestClearAllNeverDeletes(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	n := NewNotifications(store)
	l := NewLedger(store, nil, true)
	for _, v := range []int64{10, 20, 30} {
		report(t, l, v)
	}

	cleared, err := n.ClearAll(ctx, lessor, NotificationQuery{})
	if err != nil || cleared != 3 {
		t.Fatalf("ClearAll = %d, %v", cleared, err)
	}
	cleared, _ = n.ClearAll(ctx, lessor, NotificationQuery{})
	if cleared != 0 {
		t.Fatalf("second ClearAll = %d", cleared)
	}
	if all, _ := n.List(ctx, lessor, NotificationQuery{IncludeRead: true}); len(all) != 3 {
		t.Fatalf("history has %d, want 3", len(all))
	}
}
