package services

import (
	"context"
	"fmt"

	"aurum_leasing/internal/models"
	"aurum_leasing/internal/storage"
)

type Notifications struct {
	store storage.IStorage
}

func NewNotifications(store storage.IStorage) *Notifications {
	return &Notifications{store: store}
}

// NotificationQuery is what a caller asks for. Empty fields default to the
// caller's own role and recipient id.
type NotificationQuery struct {
	Role        string
	UserID      string
	IncludeRead bool
	Limit       int
}

// filterFor resolves q against the session. Only the platform admin may read
// another role's or user's inbox.
func filterFor(s models.Session, q NotificationQuery) (models.NotificationFilter, error) {
	if !s.Can(models.CapReadNotifications) {
		return models.NotificationFilter{}, fmt.Errorf("role %q has no inbox: %w", s.Role, models.ErrForbidden)
	}
	f := models.NotificationFilter{
		Role:        q.Role,
		UserID:      q.UserID,
		IncludeRead: q.IncludeRead,
		Limit:       q.Limit,
	}
	if f.Role != "" {
		role, err := models.ParseRole(f.Role)
		if err != nil {
			return f, models.NewValidationError("role", err.Error())
		}
		f.Role = string(role)
	}
	if s.Role == models.RoleSuperAdmin {
		if f.Role == "" && f.UserID == "" {
			f.Role = string(s.Role)
			f.UserID = s.RecipientID()
		}
		return f, nil
	}

	if f.Role == "" {
		f.Role = string(s.Role)
	}
	if f.UserID == "" {
		f.UserID = s.RecipientID()
	}
	if f.Role != string(s.Role) || f.UserID != s.RecipientID() {
		return f, fmt.Errorf("notifications of another recipient: %w", models.ErrForbidden)
	}
	f.TenantID = s.TenantID
	return f, nil
}

func (n *Notifications) List(ctx context.Context, s models.Session, q NotificationQuery) ([]models.Notification, error) {
	f, err := filterFor(s, q)
	if err != nil {
		return nil, err
	}
	return n.store.Notification().List(ctx, f)
}

// MarkRead is idempotent. Callers may only acknowledge what is addressed to them.
func (n *Notifications) MarkRead(ctx context.Context, s models.Session, id string) error {
	if id == "" {
		return models.NewValidationError("id", "is required")
	}
	return n.store.WithTx(ctx, func(tx storage.IStorage) error {
		note, err := tx.Notification().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if s.Role != models.RoleSuperAdmin {
			f, err := filterFor(s, NotificationQuery{IncludeRead: true})
			if err != nil {
				return err
			}
			if !f.Matches(*note) {
				return fmt.Errorf("notification %s: %w", id, models.ErrForbidden)
			}
		}
		if note.Read {
			return nil
		}
		return tx.Notification().MarkRead(ctx, id)
	})
}

// ClearAll marks every matching notification read and returns how many changed.
func (n *Notifications) ClearAll(ctx context.Context, s models.Session, q NotificationQuery) (int64, error) {
	f, err := filterFor(s, q)
	if err != nil {
		return 0, err
	}
	return n.store.Notification().MarkAllRead(ctx, f)
}
