package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"aurum_leasing/internal/models"
)

type driverRepo struct {
	s *Store
}

func (r *driverRepo) GetByID(ctx context.Context, id string) (*models.Driver, error) {
	var out models.Driver
	err := r.s.run(ctx, func(st *state) error {
		d, ok := st.drivers[id]
		if !ok {
			return fmt.Errorf("driver %s: %w", id, models.ErrNotFound)
		}
		out = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *driverRepo) List(ctx context.Context, tenantID string) ([]models.Driver, error) {
	out := []models.Driver{}
	err := r.s.run(ctx, func(st *state) error {
		for _, d := range st.drivers {
			if tenantID == "" || d.TenantID == tenantID {
				out = append(out, d)
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
		return nil
	})
	return out, err
}

func (r *driverRepo) Upsert(ctx context.Context, d *models.Driver) error {
	return r.s.run(ctx, func(st *state) error {
		if d.TenantID != "" {
			if _, ok := st.tenants[d.TenantID]; !ok {
				return fmt.Errorf("tenant %s: %w", d.TenantID, models.ErrNotFound)
			}
		}
		now := r.s.now()
		cur, exists := st.drivers[d.ID]
		if !exists {
			cur = models.Driver{ID: d.ID, Balance: decimal.Zero, CreatedAt: now}
			st.stamp("driver:" + d.ID)
		}
		cur.TenantID = d.TenantID
		cur.Name = d.Name
		cur.Phone = d.Phone
		cur.Rating = d.Rating
		cur.ContractDate = d.ContractDate
		cur.Data = d.Data
		cur.UpdatedAt = now
		st.drivers[d.ID] = cur

		d.Balance = cur.Balance
		d.LastPaymentDate = cur.LastPaymentDate
		d.CreatedAt = cur.CreatedAt
		d.UpdatedAt = cur.UpdatedAt
		return nil
	})
}

func (r *driverRepo) UpdateProfile(ctx context.Context, id string, profile models.DriverProfile) error {
	return r.s.run(ctx, func(st *state) error {
		d, ok := st.drivers[id]
		if !ok {
			return fmt.Errorf("driver %s: %w", id, models.ErrNotFound)
		}
		d.Data = datatypes.NewJSONType(profile)
		d.UpdatedAt = r.s.now()
		st.drivers[id] = d
		return nil
	})
}

func (r *driverRepo) Credit(ctx context.Context, id string, amount decimal.Decimal) error {
	return r.s.run(ctx, func(st *state) error {
		d, ok := st.drivers[id]
		if !ok {
			return fmt.Errorf("driver %s: %w", id, models.ErrNotFound)
		}
		now := r.s.now()
		d.Balance = d.Balance.Add(amount)
		d.LastPaymentDate = &now
		d.UpdatedAt = now
		st.drivers[id] = d
		return nil
	})
}
