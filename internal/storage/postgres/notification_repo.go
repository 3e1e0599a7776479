package postgres

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"aurum_leasing/internal/models"
)

type notificationRepo struct {
	db *gorm.DB
}

// recipients builds `role_target = ? OR user_id = ?`, the SQL form of
// NotificationFilter.Matches. ok is false when the filter names no recipient.
func recipients(q *gorm.DB, f models.NotificationFilter) (*gorm.DB, bool) {
	var (
		parts []string
		args  []any
	)
	if f.Role != "" {
		if f.TenantID != "" {
			parts = append(parts, "(role_target = ? AND tenant_id = ?)")
			args = append(args, f.Role, f.TenantID)
		} else {
			parts = append(parts, "role_target = ?")
			args = append(args, f.Role)
		}
	}
	if f.UserID != "" {
		parts = append(parts, "user_id = ?")
		args = append(args, f.UserID)
	}
	if len(parts) == 0 {
		return q, false
	}
	q = q.Where("("+strings.Join(parts, " OR ")+")", args...)
	if !f.IncludeRead {
		q = q.Where("read = ?", false)
	}
	return q, true
}

func (r *notificationRepo) Create(ctx context.Context, n *models.Notification) error {
	return translate("create notification", r.db.WithContext(ctx).Create(n).Error)
}

func (r *notificationRepo) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	var n models.Notification
	if err := r.db.WithContext(ctx).First(&n, "id = ?", id).Error; err != nil {
		return nil, translate("get notification", err)
	}
	return &n, nil
}

func (r *notificationRepo) List(ctx context.Context, f models.NotificationFilter) ([]models.Notification, error) {
	q, ok := recipients(r.db.WithContext(ctx).Model(&models.Notification{}), f)
	if !ok {
		return []models.Notification{}, nil
	}
	q = q.Order("created_at DESC, id DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	out := []models.Notification{}
	err := q.Find(&out).Error
	return out, translate("list notifications", err)
}

// MarkRead counts matched rows, so re-marking a read notification still succeeds.
func (r *notificationRepo) MarkRead(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ?", id).
		Update("read", true)
	if res.Error != nil {
		return translate("mark notification read", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("notification %s: %w", id, models.ErrNotFound)
	}
	return nil
}

func (r *notificationRepo) MarkAllRead(ctx context.Context, f models.NotificationFilter) (int64, error) {
	f.IncludeRead = false
	q, ok := recipients(r.db.WithContext(ctx).Model(&models.Notification{}), f)
	if !ok {
		return 0, nil
	}
	res := q.Update("read", true)
	if res.Error != nil {
		return 0, translate("clear notifications", res.Error)
	}
	return res.RowsAffected, nil
}
