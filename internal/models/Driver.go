// internal/models/driver.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type SecurityDeposit struct {
	Total float64 `json:"total"`
	Paid  float64 `json:"paid"`
}

type EmergencyContact struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// DriverProfile holds the driver-owned attributes kept in drivers.data.
type DriverProfile struct {
	Email            string            `json:"email,omitempty" binding:"omitempty,email"`
	Address          string            `json:"address,omitempty"`
	LicenseNumber    string            `json:"license_number,omitempty"`
	RentPlan         string            `json:"rent_plan,omitempty" binding:"omitempty,oneof=diario semanal mensual"`
	EmergencyContact *EmergencyContact `json:"emergency_contact,omitempty"`
	SecurityDeposit  *SecurityDeposit  `json:"security_deposit,omitempty"`
	Extra            map[string]any    `json:"extra,omitempty"`
}

type Driver struct {
	ID              string                            `gorm:"primaryKey;type:text" json:"id"`
	TenantID        string                            `gorm:"type:text;index" json:"tenant_id"`
	Name            string                            `gorm:"not null" json:"name"`
	Phone           string                            `json:"phone"`
	Balance         decimal.Decimal                   `gorm:"type:numeric(12,2);not null" json:"balance"` // written only by payment verification
	Rating          float64                           `json:"rating"`
	LastPaymentDate *time.Time                        `json:"last_payment_date,omitempty"`
	ContractDate    *time.Time                        `json:"contract_date,omitempty"`
	Data            datatypes.JSONType[DriverProfile] `gorm:"type:jsonb" json:"data"`
	CreatedAt       time.Time                         `json:"created_at"`
	UpdatedAt       time.Time                         `json:"updated_at"`
}

func (d Driver) Profile() DriverProfile {
	return d.Data.Data()
}
