package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Plan is a subscription tier. MaxFleetSize caps the vehicles a tenant may register.
type Plan struct {
	ID           string                       `gorm:"primaryKey;type:text" json:"id"`
	Name         string                       `gorm:"not null" json:"name"`
	MonthlyPrice decimal.Decimal              `gorm:"type:numeric;not null" json:"monthly_price"`
	MaxFleetSize int                          `json:"max_fleet_size"`
	Features     datatypes.JSONType[[]string] `gorm:"type:jsonb" json:"features"`
	Color        string                       `json:"color"`
	CreatedAt    time.Time                    `json:"created_at"`
}
