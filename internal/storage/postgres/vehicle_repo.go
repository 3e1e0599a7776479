package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"aurum_leasing/internal/models"
)

type vehicleRepo struct {
	db *gorm.DB
}

func (r *vehicleRepo) GetByID(ctx context.Context, id string) (*models.Vehicle, error) {
	var v models.Vehicle
	if err := r.db.WithContext(ctx).First(&v, "id = ?", id).Error; err != nil {
		return nil, translate("get vehicle", err)
	}
	return &v, nil
}

func (r *vehicleRepo) List(ctx context.Context, tenantID string) ([]models.Vehicle, error) {
	q := r.db.WithContext(ctx)
	if tenantID != "" {
		q = q.Where("tenant_id = ?", tenantID)
	}
	out := []models.Vehicle{}
	err := q.Order("plate").Find(&out).Error
	return out, translate("list vehicles", err)
}

func (r *vehicleRepo) Upsert(ctx context.Context, v *models.Vehicle) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"plate", "brand", "model", "year", "status", "tenant_id", "driver_id", "data", "updated_at",
			}),
		}).
		Create(v).Error
	return translate("upsert vehicle", err)
}

func (r *vehicleRepo) CountByTenant(ctx context.Context, tenantID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Vehicle{}).Where("tenant_id = ?", tenantID).Count(&n).Error
	return n, translate("count vehicles", err)
}
