package postgres

import (
	"context"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"aurum_leasing/internal/models"
)

type tenantRepo struct {
	db *gorm.DB
}

func (r *tenantRepo) GetByID(ctx context.Context, id string) (*models.Tenant, error) {
	var t models.Tenant
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, translate("get tenant", err)
	}
	return &t, nil
}

func (r *tenantRepo) List(ctx context.Context) ([]models.Tenant, error) {
	out := []models.Tenant{}
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&out).Error
	return out, translate("list tenants", err)
}

func (r *tenantRepo) Create(ctx context.Context, t *models.Tenant) error {
	return translate("create tenant", r.db.WithContext(ctx).Create(t).Error)
}

func (r *tenantRepo) UpdateStatus(ctx context.Context, id string, status models.TenantStatus) error {
	return r.update(ctx, "update tenant status", id, "status", status)
}

func (r *tenantRepo) UpdateIntegrations(ctx context.Context, id string, settings models.IntegrationSettings) error {
	return r.update(ctx, "update tenant integrations", id, "integration_settings", datatypes.NewJSONType(settings))
}

func (r *tenantRepo) update(ctx context.Context, op, id, column string, value any) error {
	res := r.db.WithContext(ctx).Model(&models.Tenant{}).Where("id = ?", id).Update(column, value)
	if res.Error != nil {
		return translate(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("tenant %s: %w", id, models.ErrNotFound)
	}
	return nil
}
