package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"aurum_leasing/internal/models"
)

type paymentRepo struct {
	s *Store
}

func paymentKey(p models.Payment) (string, time.Time) { return "payment:" + p.ID, p.CreatedAt }

func (r *paymentRepo) Create(ctx context.Context, p *models.Payment) error {
	return r.s.run(ctx, func(st *state) error {
		if !p.Amount.IsPositive() {
			return models.NewValidationError("amount", "must be greater than zero")
		}
		if _, ok := st.drivers[p.DriverID]; !ok {
			return fmt.Errorf("driver %s: %w", p.DriverID, models.ErrNotFound)
		}
		if _, ok := st.tenants[p.TenantID]; !ok {
			return fmt.Errorf("tenant %s: %w", p.TenantID, models.ErrNotFound)
		}
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		if _, dup := st.payments[p.ID]; dup {
			return fmt.Errorf("payment %s: %w", p.ID, models.ErrConflict)
		}
		now := r.s.now()
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		p.UpdatedAt = now
		st.payments[p.ID] = *p
		st.stamp("payment:" + p.ID)
		return nil
	})
}

func (r *paymentRepo) GetByID(ctx context.Context, id string) (*models.Payment, error) {
	var out models.Payment
	err := r.s.run(ctx, func(st *state) error {
		p, ok := st.payments[id]
		if !ok {
			return fmt.Errorf("payment %s: %w", id, models.ErrNotFound)
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *paymentRepo) Transition(ctx context.Context, p *models.Payment, from, to models.PaymentStatus) (bool, error) {
	var moved bool
	err := r.s.run(ctx, func(st *state) error {
		cur, ok := st.payments[p.ID]
		if !ok || cur.Status != from {
			return nil
		}
		cur.Status = to
		cur.Data = p.Data
		cur.UpdatedAt = r.s.now()
		st.payments[p.ID] = cur
		p.Status = cur.Status
		p.UpdatedAt = cur.UpdatedAt
		moved = true
		return nil
	})
	return moved, err
}

func (r *paymentRepo) ListByDriver(ctx context.Context, driverID string) ([]models.Payment, error) {
	return r.list(ctx, func(p models.Payment) bool { return p.DriverID == driverID })
}

func (r *paymentRepo) ListPending(ctx context.Context, tenantID string) ([]models.Payment, error) {
	return r.list(ctx, func(p models.Payment) bool {
		return p.Status == models.PaymentPending && (tenantID == "" || p.TenantID == tenantID)
	})
}

func (r *paymentRepo) list(ctx context.Context, keep func(models.Payment) bool) ([]models.Payment, error) {
	out := []models.Payment{}
	err := r.s.run(ctx, func(st *state) error {
		for _, p := range st.payments {
			if keep(p) {
				out = append(out, p)
			}
		}
		newestFirst(st, out, paymentKey)
		return nil
	})
	return out, err
}

func (r *paymentRepo) SumVerified(ctx context.Context, driverID string) (decimal.Decimal, error) {
	sum := decimal.Zero
	err := r.s.run(ctx, func(st *state) error {
		for _, p := range st.payments {
			if p.DriverID == driverID && p.Status == models.PaymentVerified {
				sum = sum.Add(p.Amount)
			}
		}
		return nil
	})
	return sum, err
}
