package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"aurum_leasing/internal/models"
	"aurum_leasing/internal/storage"
)

// Drivers manages driver records. Balances are not writable here; see Ledger.
type Drivers struct {
	store storage.IStorage
}

func NewDrivers(store storage.IStorage) *Drivers {
	return &Drivers{store: store}
}

func (s *Drivers) List(ctx context.Context, scope models.Scope, tenantID string) ([]models.Driver, error) {
	tenantID, err := scopedTenant(scope, tenantID)
	if err != nil {
		return nil, err
	}
	return s.store.Driver().List(ctx, tenantID)
}

func (s *Drivers) Upsert(ctx context.Context, scope models.Scope, d *models.Driver) (*models.Driver, error) {
	tenantID, err := scopedTenant(scope, d.TenantID)
	if err != nil {
		return nil, err
	}
	d.TenantID = tenantID
	d.Name = strings.TrimSpace(d.Name)

	ve := &models.ValidationError{}
	if d.Name == "" {
		ve.Add("name", "is required")
	}
	if d.TenantID == "" {
		ve.Add("tenant_id", "is required")
	}
	if d.Rating < 0 || d.Rating > 5 {
		ve.Add("rating", "must be between 0 and 5")
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}

	var out *models.Driver
	err = s.store.WithTx(ctx, func(tx storage.IStorage) error {
		if _, err := tx.Tenant().GetByID(ctx, d.TenantID); err != nil {
			return err
		}
		existing, err := tx.Driver().GetByID(ctx, d.ID)
		switch {
		case errors.Is(err, models.ErrNotFound):
			if d.Rating == 0 {
				d.Rating = 5
			}
		case err != nil:
			return err
		case !scope.AllowsTenant(existing.TenantID):
			return fmt.Errorf("driver %s: %w", d.ID, models.ErrForbidden)
		}

		if err := tx.Driver().Upsert(ctx, d); err != nil {
			return err
		}
		out, err = tx.Driver().GetByID(ctx, d.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateProfile replaces the driver-owned profile document.
func (s *Drivers) UpdateProfile(ctx context.Context, scope models.Scope, id string, profile models.DriverProfile) (*models.Driver, error) {
	if id == "" {
		return nil, models.NewValidationError("id", "is required")
	}
	var out *models.Driver
	err := s.store.WithTx(ctx, func(tx storage.IStorage) error {
		d, err := tx.Driver().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !scope.AllowsDriver(d.TenantID, d.ID) {
			return fmt.Errorf("driver %s: %w", id, models.ErrForbidden)
		}
		if err := tx.Driver().UpdateProfile(ctx, id, profile); err != nil {
			return err
		}
		out, err = tx.Driver().GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
