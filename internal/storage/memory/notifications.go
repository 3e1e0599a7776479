package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"aurum_leasing/internal/models"
)

type notificationRepo struct {
	s *Store
}

func notificationKey(n models.Notification) (string, time.Time) {
	return "notification:" + n.ID, n.CreatedAt
}

func (r *notificationRepo) Create(ctx context.Context, n *models.Notification) error {
	return r.s.run(ctx, func(st *state) error {
		if err := n.Validate(); err != nil {
			return models.NewValidationError("notification", err.Error())
		}
		if n.ID == "" {
			n.ID = uuid.NewString()
		}
		if _, dup := st.notifications[n.ID]; dup {
			return fmt.Errorf("notification %s: %w", n.ID, models.ErrConflict)
		}
		if n.CreatedAt.IsZero() {
			n.CreatedAt = r.s.now()
		}
		st.notifications[n.ID] = *n
		st.stamp("notification:" + n.ID)
		return nil
	})
}

func (r *notificationRepo) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	var out models.Notification
	err := r.s.run(ctx, func(st *state) error {
		n, ok := st.notifications[id]
		if !ok {
			return fmt.Errorf("notification %s: %w", id, models.ErrNotFound)
		}
		out = n
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *notificationRepo) List(ctx context.Context, f models.NotificationFilter) ([]models.Notification, error) {
	out := []models.Notification{}
	err := r.s.run(ctx, func(st *state) error {
		for _, n := range st.notifications {
			if f.Matches(n) {
				out = append(out, n)
			}
		}
		newestFirst(st, out, notificationKey)
		if f.Limit > 0 && len(out) > f.Limit {
			out = out[:f.Limit]
		}
		return nil
	})
	return out, err
}

func (r *notificationRepo) MarkRead(ctx context.Context, id string) error {
	return r.s.run(ctx, func(st *state) error {
		n, ok := st.notifications[id]
		if !ok {
			return fmt.Errorf("notification %s: %w", id, models.ErrNotFound)
		}
		n.Read = true
		st.notifications[id] = n
		return nil
	})
}

func (r *notificationRepo) MarkAllRead(ctx context.Context, f models.NotificationFilter) (int64, error) {
	f.IncludeRead = false
	var count int64
	err := r.s.run(ctx, func(st *state) error {
		for id, n := range st.notifications {
			if f.Matches(n) {
				n.Read = true
				st.notifications[id] = n
				count++
			}
		}
		return nil
	})
	return count, err
}
