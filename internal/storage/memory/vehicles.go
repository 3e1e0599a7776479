package memory

import (
	"context"
	"fmt"
	"sort"

	"aurum_leasing/internal/models"
)

type vehicleRepo struct {
	s *Store
}

func (r *vehicleRepo) GetByID(ctx context.Context, id string) (*models.Vehicle, error) {
	var out models.Vehicle
	err := r.s.run(ctx, func(st *state) error {
		v, ok := st.vehicles[id]
		if !ok {
			return fmt.Errorf("vehicle %s: %w", id, models.ErrNotFound)
		}
		out = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *vehicleRepo) List(ctx context.Context, tenantID string) ([]models.Vehicle, error) {
	out := []models.Vehicle{}
	err := r.s.run(ctx, func(st *state) error {
		for _, v := range st.vehicles {
			if tenantID == "" || v.TenantID == tenantID {
				out = append(out, v)
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Plate < out[j].Plate })
		return nil
	})
	return out, err
}

func (r *vehicleRepo) Upsert(ctx context.Context, v *models.Vehicle) error {
	return r.s.run(ctx, func(st *state) error {
		if _, ok := st.tenants[v.TenantID]; v.TenantID != "" && !ok {
			return fmt.Errorf("tenant %s: %w", v.TenantID, models.ErrNotFound)
		}
		if v.DriverID != nil {
			if _, ok := st.drivers[*v.DriverID]; !ok {
				return fmt.Errorf("driver %s: %w", *v.DriverID, models.ErrNotFound)
			}
		}
		for id, other := range st.vehicles {
			if id != v.ID && other.Plate == v.Plate {
				return fmt.Errorf("plate %s: %w", v.Plate, models.ErrConflict)
			}
		}
		now := r.s.now()
		if cur, ok := st.vehicles[v.ID]; ok {
			v.CreatedAt = cur.CreatedAt
		} else {
			v.CreatedAt = now
		}
		v.UpdatedAt = now
		st.vehicles[v.ID] = *v
		return nil
	})
}

func (r *vehicleRepo) CountByTenant(ctx context.Context, tenantID string) (int64, error) {
	var n int64
	err := r.s.run(ctx, func(st *state) error {
		for _, v := range st.vehicles {
			if v.TenantID == tenantID {
				n++
			}
		}
		return nil
	})
	return n, err
}
