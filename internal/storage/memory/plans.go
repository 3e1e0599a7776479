package memory

import (
	"context"
	"fmt"
	"sort"

	"aurum_leasing/internal/models"
)

type planRepo struct {
	s *Store
}

func (r *planRepo) GetByID(ctx context.Context, id string) (*models.Plan, error) {
	var out models.Plan
	err := r.s.run(ctx, func(st *state) error {
		p, ok := st.plans[id]
		if !ok {
			return fmt.Errorf("plan %s: %w", id, models.ErrNotFound)
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *planRepo) List(ctx context.Context) ([]models.Plan, error) {
	out := []models.Plan{}
	err := r.s.run(ctx, func(st *state) error {
		for _, p := range st.plans {
			out = append(out, p)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].MonthlyPrice.LessThan(out[j].MonthlyPrice) })
		return nil
	})
	return out, err
}

func (r *planRepo) Upsert(ctx context.Context, p *models.Plan) error {
	return r.s.run(ctx, func(st *state) error {
		if cur, ok := st.plans[p.ID]; ok {
			p.CreatedAt = cur.CreatedAt
		} else if p.CreatedAt.IsZero() {
			p.CreatedAt = r.s.now()
		}
		st.plans[p.ID] = *p
		return nil
	})
}
