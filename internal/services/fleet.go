package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/twpayne/go-geom"
	gjson "github.com/twpayne/go-geom/encoding/geojson"

	"aurum_leasing/internal/models"
	"aurum_leasing/internal/storage"
)

type Fleet struct {
	store storage.IStorage
}

func NewFleet(store storage.IStorage) *Fleet {
	return &Fleet{store: store}
}

func scopedTenant(scope models.Scope, tenantID string) (string, error) {
	if scope.TenantID == "" {
		return tenantID, nil
	}
	if tenantID != "" && tenantID != scope.TenantID {
		return "", fmt.Errorf("tenant %s: %w", tenantID, models.ErrForbidden)
	}
	return scope.TenantID, nil
}

func (f *Fleet) List(ctx context.Context, scope models.Scope, tenantID string) ([]models.Vehicle, error) {
	tenantID, err := scopedTenant(scope, tenantID)
	if err != nil {
		return nil, err
	}
	return f.store.Vehicle().List(ctx, tenantID)
}

// Upsert registers or updates a vehicle. Registering a vehicle into a tenant
// counts against the tenant plan's fleet size.
func (f *Fleet) Upsert(ctx context.Context, scope models.Scope, v *models.Vehicle) (*models.Vehicle, error) {
	tenantID, err := scopedTenant(scope, v.TenantID)
	if err != nil {
		return nil, err
	}
	v.TenantID = tenantID
	v.Plate = strings.ToUpper(strings.TrimSpace(v.Plate))
	if v.Status == "" {
		v.Status = models.VehicleAvailable
	}

	ve := &models.ValidationError{}
	if v.Plate == "" {
		ve.Add("plate", "is required")
	}
	if strings.TrimSpace(v.Brand) == "" {
		ve.Add("brand", "is required")
	}
	if strings.TrimSpace(v.Model) == "" {
		ve.Add("model", "is required")
	}
	if v.TenantID == "" {
		ve.Add("tenant_id", "is required")
	}
	if !v.Status.Valid() {
		ve.Add("status", fmt.Sprintf("unknown vehicle status %q", v.Status))
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}
	if v.ID == "" {
		v.ID = uuid.NewString()
	}

	err = f.store.WithTx(ctx, func(tx storage.IStorage) error {
		tenant, err := tx.Tenant().GetByID(ctx, v.TenantID)
		if err != nil {
			return err
		}

		joining := true
		existing, err := tx.Vehicle().GetByID(ctx, v.ID)
		switch {
		case errors.Is(err, models.ErrNotFound):
		case err != nil:
			return err
		default:
			if !scope.AllowsTenant(existing.TenantID) {
				return fmt.Errorf("vehicle %s: %w", v.ID, models.ErrForbidden)
			}
			joining = existing.TenantID != v.TenantID
		}

		if joining && tenant.PlanID != nil {
			plan, err := tx.Plan().GetByID(ctx, *tenant.PlanID)
			if err != nil {
				return err
			}
			count, err := tx.Vehicle().CountByTenant(ctx, v.TenantID)
			if err != nil {
				return err
			}
			if plan.MaxFleetSize > 0 && count >= int64(plan.MaxFleetSize) {
				return fmt.Errorf("%s allows %d vehicles: %w", plan.Name, plan.MaxFleetSize, models.ErrFleetLimitReached)
			}
		}

		if v.DriverID != nil && *v.DriverID != "" {
			d, err := tx.Driver().GetByID(ctx, *v.DriverID)
			if err != nil {
				return err
			}
			if d.TenantID != v.TenantID {
				return models.NewValidationError("driver_id", "driver does not belong to tenant")
			}
		} else {
			v.DriverID = nil
		}
		return tx.Vehicle().Upsert(ctx, v)
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Map returns the last known position of each vehicle as a GeoJSON
// FeatureCollection. Vehicles without telemetry are left out.
func (f *Fleet) Map(ctx context.Context, scope models.Scope, tenantID string) (*gjson.FeatureCollection, error) {
	vehicles, err := f.List(ctx, scope, tenantID)
	if err != nil {
		return nil, err
	}

	fc := &gjson.FeatureCollection{Features: []*gjson.Feature{}}
	for _, v := range vehicles {
		t := v.Data.Data().Telemetry
		if t == nil {
			continue
		}
		props := map[string]interface{}{
			"plate":  v.Plate,
			"brand":  v.Brand,
			"model":  v.Model,
			"status": v.Status,
			"speed":  t.Speed,
		}
		if v.DriverID != nil {
			props["driver_id"] = *v.DriverID
		}
		fc.Features = append(fc.Features, &gjson.Feature{
			ID:         v.ID,
			Geometry:   geom.NewPointFlat(geom.XY, []float64{t.Lng, t.Lat}),
			Properties: props,
		})
	}
	return fc, nil
}
