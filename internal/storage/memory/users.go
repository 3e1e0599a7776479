package memory

import (
	"context"
	"fmt"
	"strings"

	"aurum_leasing/internal/models"
)

type userRepo struct {
	s *Store
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var out *models.User
	err := r.s.run(ctx, func(st *state) error {
		for _, u := range st.users {
			if strings.EqualFold(u.Email, email) {
				u := u
				out = &u
				return nil
			}
		}
		return fmt.Errorf("user %s: %w", email, models.ErrNotFound)
	})
	return out, err
}

func (r *userRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var out models.User
	err := r.s.run(ctx, func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return fmt.Errorf("user %d: %w", id, models.ErrNotFound)
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// AddUser is the memory counterpart of a users INSERT; the API has no user
// creation endpoint.
func (s *Store) AddUser(ctx context.Context, u *models.User) error {
	return s.run(ctx, func(st *state) error {
		for _, other := range st.users {
			if strings.EqualFold(other.Email, u.Email) {
				return fmt.Errorf("user %s: %w", u.Email, models.ErrConflict)
			}
		}
		st.lastUserID++
		u.ID = st.lastUserID
		if u.CreatedAt.IsZero() {
			u.CreatedAt = s.now()
		}
		st.users[u.ID] = *u
		return nil
	})
}
