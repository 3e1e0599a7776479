package postgres

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"aurum_leasing/internal/models"
)

type paymentRepo struct {
	db *gorm.DB
}

func (r *paymentRepo) Create(ctx context.Context, p *models.Payment) error {
	return translate("create payment", r.db.WithContext(ctx).Create(p).Error)
}

func (r *paymentRepo) GetByID(ctx context.Context, id string) (*models.Payment, error) {
	var p models.Payment
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate("get payment", err)
	}
	return &p, nil
}

// Transition is the guarded update: the WHERE on status takes the row lock, so
// of two concurrent callers only the first sees an affected row.
func (r *paymentRepo) Transition(ctx context.Context, p *models.Payment, from, to models.PaymentStatus) (bool, error) {
	now := time.Now()
	res := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ? AND status = ?", p.ID, from).
		Updates(map[string]any{
			"status":     to,
			"data":       p.Data,
			"updated_at": now,
		})
	if res.Error != nil {
		return false, translate("transition payment", res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	p.Status = to
	p.UpdatedAt = now
	return true, nil
}

func (r *paymentRepo) ListByDriver(ctx context.Context, driverID string) ([]models.Payment, error) {
	out := []models.Payment{}
	err := r.db.WithContext(ctx).
		Where("driver_id = ?", driverID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, translate("list driver payments", err)
}

func (r *paymentRepo) ListPending(ctx context.Context, tenantID string) ([]models.Payment, error) {
	q := r.db.WithContext(ctx).Where("status = ?", models.PaymentPending)
	if tenantID != "" {
		q = q.Where("tenant_id = ?", tenantID)
	}
	out := []models.Payment{}
	err := q.Order("created_at DESC, id DESC").Find(&out).Error
	return out, translate("list pending payments", err)
}

func (r *paymentRepo) SumVerified(ctx context.Context, driverID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("driver_id = ? AND status = ?", driverID, models.PaymentVerified).
		Row().Scan(&sum)
	if err != nil {
		return decimal.Zero, translate("sum verified payments", err)
	}
	return sum, nil
}
