package memory

import (
	"context"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"aurum_leasing/internal/models"
)

type tenantRepo struct {
	s *Store
}

func (r *tenantRepo) GetByID(ctx context.Context, id string) (*models.Tenant, error) {
	var out models.Tenant
	err := r.s.run(ctx, func(st *state) error {
		t, ok := st.tenants[id]
		if !ok {
			return fmt.Errorf("tenant %s: %w", id, models.ErrNotFound)
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *tenantRepo) List(ctx context.Context) ([]models.Tenant, error) {
	out := []models.Tenant{}
	err := r.s.run(ctx, func(st *state) error {
		for _, t := range st.tenants {
			out = append(out, t)
		}
		newestFirst(st, out, func(t models.Tenant) (string, time.Time) { return "tenant:" + t.ID, t.CreatedAt })
		return nil
	})
	return out, err
}

func (r *tenantRepo) Create(ctx context.Context, t *models.Tenant) error {
	return r.s.run(ctx, func(st *state) error {
		if _, dup := st.tenants[t.ID]; dup {
			return fmt.Errorf("tenant %s: %w", t.ID, models.ErrConflict)
		}
		if t.PlanID != nil {
			if _, ok := st.plans[*t.PlanID]; !ok {
				return fmt.Errorf("plan %s: %w", *t.PlanID, models.ErrNotFound)
			}
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = r.s.now()
		}
		st.tenants[t.ID] = *t
		st.stamp("tenant:" + t.ID)
		return nil
	})
}

func (r *tenantRepo) UpdateStatus(ctx context.Context, id string, status models.TenantStatus) error {
	return r.update(ctx, id, func(t *models.Tenant) { t.Status = status })
}

func (r *tenantRepo) UpdateIntegrations(ctx context.Context, id string, settings models.IntegrationSettings) error {
	return r.update(ctx, id, func(t *models.Tenant) { t.IntegrationSettings = datatypes.NewJSONType(settings) })
}

func (r *tenantRepo) update(ctx context.Context, id string, apply func(*models.Tenant)) error {
	return r.s.run(ctx, func(st *state) error {
		t, ok := st.tenants[id]
		if !ok {
			return fmt.Errorf("tenant %s: %w", id, models.ErrNotFound)
		}
		apply(&t)
		st.tenants[id] = t
		return nil
	})
}
