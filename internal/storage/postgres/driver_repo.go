package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"aurum_leasing/internal/models"
)

type driverRepo struct {
	db *gorm.DB
}

func (r *driverRepo) GetByID(ctx context.Context, id string) (*models.Driver, error) {
	var d models.Driver
	if err := r.db.WithContext(ctx).First(&d, "id = ?", id).Error; err != nil {
		return nil, translate("get driver", err)
	}
	return &d, nil
}

func (r *driverRepo) List(ctx context.Context, tenantID string) ([]models.Driver, error) {
	q := r.db.WithContext(ctx)
	if tenantID != "" {
		q = q.Where("tenant_id = ?", tenantID)
	}
	out := []models.Driver{}
	err := q.Order("name").Find(&out).Error
	return out, translate("list drivers", err)
}

func (r *driverRepo) Upsert(ctx context.Context, d *models.Driver) error {
	err := r.db.WithContext(ctx).
		Omit("balance", "last_payment_date").
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"tenant_id", "name", "phone", "rating", "contract_date", "data", "updated_at",
			}),
		}).
		Create(d).Error
	return translate("upsert driver", err)
}

func (r *driverRepo) UpdateProfile(ctx context.Context, id string, profile models.DriverProfile) error {
	res := r.db.WithContext(ctx).
		Model(&models.Driver{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"data":       datatypes.NewJSONType(profile),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return translate("update driver profile", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("driver %s: %w", id, models.ErrNotFound)
	}
	return nil
}

func (r *driverRepo) Credit(ctx context.Context, id string, amount decimal.Decimal) error {
	now := time.Now()
	res := r.db.WithContext(ctx).
		Model(&models.Driver{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"balance":           gorm.Expr("balance + ?", amount),
			"last_payment_date": now,
			"updated_at":        now,
		})
	if res.Error != nil {
		return translate("credit driver", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("driver %s: %w", id, models.ErrNotFound)
	}
	return nil
}
