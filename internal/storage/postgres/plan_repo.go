package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"aurum_leasing/internal/models"
)

type planRepo struct {
	db *gorm.DB
}

func (r *planRepo) GetByID(ctx context.Context, id string) (*models.Plan, error) {
	var p models.Plan
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate("get plan", err)
	}
	return &p, nil
}

func (r *planRepo) List(ctx context.Context) ([]models.Plan, error) {
	out := []models.Plan{}
	err := r.db.WithContext(ctx).Order("monthly_price ASC").Find(&out).Error
	return out, translate("list plans", err)
}

func (r *planRepo) Upsert(ctx context.Context, p *models.Plan) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "monthly_price", "max_fleet_size", "features", "color"}),
		}).
		Create(p).Error
	return translate("upsert plan", err)
}
