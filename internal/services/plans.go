package services

import (
	"context"
	"strings"

	"aurum_leasing/internal/models"
	"aurum_leasing/internal/storage"
)

type Plans struct {
	store storage.IStorage
}

func NewPlans(store storage.IStorage) *Plans {
	return &Plans{store: store}
}

func (s *Plans) List(ctx context.Context) ([]models.Plan, error) {
	return s.store.Plan().List(ctx)
}

func (s *Plans) Upsert(ctx context.Context, p *models.Plan) (*models.Plan, error) {
	p.ID = strings.TrimSpace(p.ID)
	p.Name = strings.TrimSpace(p.Name)

	ve := &models.ValidationError{}
	if p.ID == "" {
		ve.Add("id", "is required")
	}
	if p.Name == "" {
		ve.Add("name", "is required")
	}
	if p.MonthlyPrice.IsNegative() {
		ve.Add("monthly_price", "must not be negative")
	}
	if p.MaxFleetSize < 0 {
		ve.Add("max_fleet_size", "must not be negative")
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	if err := s.store.Plan().Upsert(ctx, p); err != nil {
		return nil, err
	}
	return s.store.Plan().GetByID(ctx, p.ID)
}
