package memory

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"

	"aurum_leasing/internal/models"
)

// NewSeeded returns a store holding the same demo data as the seed migration.
func NewSeeded() (*Store, error) {
	s := New()
	st := s.db.st
	now := s.now()

	for _, p := range []models.Plan{
		{ID: "p1", Name: "Basic", MonthlyPrice: decimal.NewFromInt(199), MaxFleetSize: 15, Color: "slate",
			Features: datatypes.NewJSONType([]string{"Gestión de Inventario Digital"})},
		{ID: "p2", Name: "Pro", MonthlyPrice: decimal.NewFromInt(499), MaxFleetSize: 100, Color: "amber",
			Features: datatypes.NewJSONType([]string{"IA Preventiva Gemini Lite"})},
		{ID: "p3", Name: "Enterprise", MonthlyPrice: decimal.NewFromInt(1299), MaxFleetSize: 10000, Color: "indigo",
			Features: datatypes.NewJSONType([]string{"Gemini AI Pro Estratégico"})},
	} {
		p.CreatedAt = now
		st.plans[p.ID] = p
	}

	planID := "p3"
	st.tenants["t1"] = models.Tenant{
		ID: "t1", CompanyName: "Aurum Leasing Demo", PlanID: &planID, Status: models.TenantActive, CreatedAt: now,
	}
	st.stamp("tenant:t1")

	st.drivers["d1"] = models.Driver{
		ID: "d1", TenantID: "t1", Name: "Chofer Demo", Phone: "5215512345678",
		Balance: decimal.NewFromInt(150), Rating: 4.8, CreatedAt: now, UpdatedAt: now,
	}
	st.payments["seed-payment-d1"] = models.Payment{
		ID: "seed-payment-d1", DriverID: "d1", TenantID: "t1", Amount: decimal.NewFromInt(150),
		Type: models.PaymentRent, Status: models.PaymentVerified, CreatedAt: now, UpdatedAt: now,
	}
	st.stamp("payment:seed-payment-d1")

	driverID := "d1"
	st.vehicles["v1"] = models.Vehicle{
		ID: "v1", Plate: "ABC-1234", Brand: "Toyota", Model: "Avanza", Year: 2022,
		Status: models.VehicleActive, TenantID: "t1", DriverID: &driverID, CreatedAt: now, UpdatedAt: now,
		Data: datatypes.NewJSONType(models.VehicleData{
			Mileage: 45000, MonthlyRent: 9800, SecurityDeposit: 15000,
			Telemetry: &models.Telemetry{Lat: 19.432608, Lng: -99.133209, Speed: 42},
		}),
	}
	st.vehicles["v2"] = models.Vehicle{
		ID: "v2", Plate: "XYZ-9876", Brand: "Nissan", Model: "Versa", Year: 2023,
		Status: models.VehicleAvailable, TenantID: "t1", CreatedAt: now, UpdatedAt: now,
		Data: datatypes.NewJSONType(models.VehicleData{
			Mileage: 28500, MonthlyRent: 8500, SecurityDeposit: 12000,
			Telemetry: &models.Telemetry{Lat: 25.686614, Lng: -100.316113},
		}),
	}

	tenantID := "t1"
	for _, u := range []struct {
		email, password string
		role            models.Role
		tenantID        *string
		driverID        *string
	}{
		{"root@aurumcapital.mx", "admin123", models.RoleSuperAdmin, nil, nil},
		{"pro@aurum.mx", "123456", models.RoleArrendador, &tenantID, nil},
		{"chofer@aurum.mx", "123456", models.RoleArrendatario, &tenantID, &driverID},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash seed password: %w", err)
		}
		st.lastUserID++
		st.users[st.lastUserID] = models.User{
			ID: st.lastUserID, Email: u.email, Password: string(hash), Role: u.role,
			TenantID: u.tenantID, DriverID: u.driverID, CreatedAt: now,
		}
	}

	return s, nil
}
