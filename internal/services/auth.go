package services

import (
	"context"
	"errors"
	"strings"

	logrus "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"aurum_leasing/internal/metrics"
	"aurum_leasing/internal/models"
	"aurum_leasing/internal/storage"
)

type Auth struct {
	store storage.IStorage
}

func NewAuth(store storage.IStorage) *Auth {
	return &Auth{store: store}
}

// Authenticate checks email and password. Unknown emails and wrong passwords
// both return ErrInvalidCredentials.
func (a *Auth) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	user, err := a.store.User().GetByEmail(ctx, email)
	if errors.Is(err, models.ErrNotFound) {
		metrics.LoginAttempts.WithLabelValues("unknown_user").Inc()
		return nil, models.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		metrics.LoginAttempts.WithLabelValues("bad_password").Inc()
		logrus.WithField("email", email).Warn("failed login")
		return nil, models.ErrInvalidCredentials
	}
	metrics.LoginAttempts.WithLabelValues("ok").Inc()
	return user, nil
}
