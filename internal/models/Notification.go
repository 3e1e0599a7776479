package models

import (
	"errors"
	"time"
)

type NotificationType string

const (
	NotificationPayment     NotificationType = "payment"
	NotificationSystem      NotificationType = "system"
	NotificationAlert       NotificationType = "alert"
	NotificationMaintenance NotificationType = "maintenance"
)

// Notification is addressed either to a role inside a tenant (RoleTarget) or to a
// single user (UserID), never both.
type Notification struct {
	ID         string           `gorm:"primaryKey;type:text" json:"id"`
	TenantID   *string          `gorm:"type:text;index" json:"tenant_id,omitempty"`
	RoleTarget *string          `gorm:"type:text;index" json:"role_target,omitempty"`
	UserID     *string          `gorm:"type:text;index" json:"user_id,omitempty"`
	Title      string           `gorm:"not null" json:"title"`
	Message    string           `json:"message"`
	Type       NotificationType `gorm:"type:text" json:"type"`
	Read       bool             `gorm:"not null" json:"read"`
	CreatedAt  time.Time        `json:"created_at"`
}

// Validate checks the single-addressing-mode rule.
func (n Notification) Validate() error {
	hasRole := n.RoleTarget != nil && *n.RoleTarget != ""
	hasUser := n.UserID != nil && *n.UserID != ""
	switch {
	case hasRole && hasUser:
		return errors.New("notification must target a role or a user, not both")
	case !hasRole && !hasUser:
		return errors.New("notification has no recipient")
	case n.Title == "":
		return errors.New("notification title is required")
	}
	return nil
}

// NotificationFilter selects notifications with role_target = Role OR user_id = UserID.
// Role broadcasts are narrowed to TenantID when it is set.
type NotificationFilter struct {
	Role        string
	UserID      string
	TenantID    string
	IncludeRead bool
	Limit       int
}

// Matches mirrors the SQL predicate used by the Postgres store.
func (f NotificationFilter) Matches(n Notification) bool {
	if !f.IncludeRead && n.Read {
		return false
	}
	if f.Role != "" && n.RoleTarget != nil && *n.RoleTarget == f.Role {
		if f.TenantID == "" || (n.TenantID != nil && *n.TenantID == f.TenantID) {
			return true
		}
	}
	return f.UserID != "" && n.UserID != nil && *n.UserID == f.UserID
}
