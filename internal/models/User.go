package models

import "time"

// User is a login identity. Arrendatario users are linked to their driver record.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"unique;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Role      Role      `gorm:"type:text;not null" json:"role"`
	TenantID  *string   `gorm:"type:text" json:"tenant_id,omitempty"`
	DriverID  *string   `gorm:"type:text" json:"driver_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
