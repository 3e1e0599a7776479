// internal/models/vehicle.go
package models

import (
	"time"

	"gorm.io/datatypes"
)

type VehicleStatus string

const (
	VehicleActive    VehicleStatus = "Activo"
	VehicleWorkshop  VehicleStatus = "Taller"
	VehicleAvailable VehicleStatus = "Disponible"
	VehicleDebtHold  VehicleStatus = "Bloqueado (Mora)"
)

func (s VehicleStatus) Valid() bool {
	switch s {
	case VehicleActive, VehicleWorkshop, VehicleAvailable, VehicleDebtHold:
		return true
	}
	return false
}

type HarshEvents struct {
	Braking      int `json:"braking"`
	Acceleration int `json:"acceleration"`
	Cornering    int `json:"cornering"`
}

// Telemetry is the last position/health sample reported for a vehicle.
type Telemetry struct {
	Lat          float64     `json:"lat"`
	Lng          float64     `json:"lng"`
	Speed        float64     `json:"speed"`
	FuelLevel    float64     `json:"fuel_level"`
	EngineHealth float64     `json:"engine_health"`
	IsEngineOn   bool        `json:"is_engine_on"`
	SafetyScore  float64     `json:"safety_score"`
	HarshEvents  HarshEvents `json:"harsh_events"`
	LastUpdate   time.Time   `json:"last_update"`
}

type MaintenanceRecord struct {
	ID          string  `json:"id"`
	Date        string  `json:"date"`
	Type        string  `json:"type"` // Preventivo | Correctivo
	Description string  `json:"description"`
	Cost        float64 `json:"cost"`
	Mileage     int     `json:"mileage"`
}

type VehicleData struct {
	Mileage               int                 `json:"mileage,omitempty"`
	NextMaintenanceKm     int                 `json:"next_maintenance_km,omitempty"`
	LastMaintenance       string              `json:"last_maintenance,omitempty"`
	InsuranceExpiry       string              `json:"insurance_expiry,omitempty"`
	VerificationExpiry    string              `json:"verification_expiry,omitempty"`
	PurchasePrice         float64             `json:"purchase_price,omitempty"`
	CurrentEstimatedValue float64             `json:"current_estimated_value,omitempty"`
	MonthlyRent           float64             `json:"monthly_rent,omitempty"`
	SecurityDeposit       float64             `json:"security_deposit,omitempty"`
	InterestRate          float64             `json:"interest_rate,omitempty"`
	MaintenanceHistory    []MaintenanceRecord `json:"maintenance_history,omitempty"`
	Telemetry             *Telemetry          `json:"telemetry,omitempty"`
}

type Vehicle struct {
	ID        string                          `gorm:"primaryKey;type:text" json:"id"`
	Plate     string                          `gorm:"type:text;uniqueIndex" json:"plate"`
	Brand     string                          `json:"brand"`
	Model     string                          `json:"model"`
	Year      int                             `json:"year"`
	Status    VehicleStatus                   `gorm:"type:text" json:"status"`
	TenantID  string                          `gorm:"type:text;index" json:"tenant_id"`
	DriverID  *string                         `gorm:"type:text" json:"driver_id,omitempty"`
	Data      datatypes.JSONType[VehicleData] `gorm:"type:jsonb" json:"data"`
	CreatedAt time.Time                       `json:"created_at"`
	UpdatedAt time.Time                       `json:"updated_at"`
}
