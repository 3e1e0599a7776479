package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	logrus "github.com/sirupsen/logrus"

	"aurum_leasing/internal/models"
	"aurum_leasing/internal/storage"
)

type Tenants struct {
	store storage.IStorage
}

func NewTenants(store storage.IStorage) *Tenants {
	return &Tenants{store: store}
}

func (s *Tenants) List(ctx context.Context) ([]models.Tenant, error) {
	return s.store.Tenant().List(ctx)
}

func (s *Tenants) Get(ctx context.Context, scope models.Scope, id string) (*models.Tenant, error) {
	if !scope.AllowsTenant(id) {
		return nil, fmt.Errorf("tenant %s: %w", id, models.ErrForbidden)
	}
	return s.store.Tenant().GetByID(ctx, id)
}

func (s *Tenants) Create(ctx context.Context, t *models.Tenant) (*models.Tenant, error) {
	t.CompanyName = strings.TrimSpace(t.CompanyName)
	if t.CompanyName == "" {
		return nil, models.NewValidationError("company_name", "is required")
	}
	if t.Status == "" {
		t.Status = models.TenantActive
	}
	if t.Status != models.TenantActive && t.Status != models.TenantSuspended {
		return nil, models.NewValidationError("status", "must be active or suspended")
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.PlanID != nil && *t.PlanID == "" {
		t.PlanID = nil
	}

	err := s.store.WithTx(ctx, func(tx storage.IStorage) error {
		if t.PlanID != nil {
			if _, err := tx.Plan().GetByID(ctx, *t.PlanID); err != nil {
				return err
			}
		}
		return tx.Tenant().Create(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"tenant_id": t.ID, "company": t.CompanyName}).Info("tenant created")
	return t, nil
}

// SetStatus suspends or reactivates a tenant. Suspended tenants cannot report payments.
func (s *Tenants) SetStatus(ctx context.Context, id string, status models.TenantStatus) (*models.Tenant, error) {
	if status != models.TenantActive && status != models.TenantSuspended {
		return nil, models.NewValidationError("status", "must be active or suspended")
	}
	if err := s.store.Tenant().UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"tenant_id": id, "status": status}).Info("tenant status changed")
	return s.store.Tenant().GetByID(ctx, id)
}

func (s *Tenants) UpdateIntegrations(ctx context.Context, scope models.Scope, id string, settings models.IntegrationSettings) (*models.Tenant, error) {
	if !scope.AllowsTenant(id) {
		return nil, fmt.Errorf("tenant %s: %w", id, models.ErrForbidden)
	}
	settings.WahaURL = strings.TrimRight(strings.TrimSpace(settings.WahaURL), "/")
	settings.N8nWebhook = strings.TrimSpace(settings.N8nWebhook)
	if err := s.store.Tenant().UpdateIntegrations(ctx, id, settings); err != nil {
		return nil, err
	}
	return s.store.Tenant().GetByID(ctx, id)
}
