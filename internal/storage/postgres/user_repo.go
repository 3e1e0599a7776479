package postgres

import (
	"context"

	"gorm.io/gorm"

	"aurum_leasing/internal/models"
)

type userRepo struct {
	db *gorm.DB
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&u).Error; err != nil {
		return nil, translate("get user", err)
	}
	return &u, nil
}

func (r *userRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translate("get user", err)
	}
	return &u, nil
}
