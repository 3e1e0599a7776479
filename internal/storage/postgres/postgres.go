package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	logrus "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"aurum_leasing/internal/models"
	"aurum_leasing/internal/storage"
)

const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
	pgCheckViolation      = "23514"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) DB() *gorm.DB {
	return s.db
}

func (s *Store) Payment() storage.IPaymentStorage           { return &paymentRepo{db: s.db} }
func (s *Store) Driver() storage.IDriverStorage             { return &driverRepo{db: s.db} }
func (s *Store) Notification() storage.INotificationStorage { return &notificationRepo{db: s.db} }
func (s *Store) Tenant() storage.ITenantStorage             { return &tenantRepo{db: s.db} }
func (s *Store) Plan() storage.IPlanStorage                 { return &planRepo{db: s.db} }
func (s *Store) Vehicle() storage.IVehicleStorage           { return &vehicleRepo{db: s.db} }
func (s *Store) User() storage.IUserStorage                 { return &userRepo{db: s.db} }

func (s *Store) WithTx(ctx context.Context, fn func(tx storage.IStorage) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// translate maps driver errors onto the model sentinels. Anything it does not
// recognise is logged and returned wrapped with op.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgForeignKeyViolation:
			return fmt.Errorf("%s: %s: %w", op, pgErr.ConstraintName, models.ErrNotFound)
		case pgUniqueViolation:
			return fmt.Errorf("%s: %s: %w", op, pgErr.ConstraintName, models.ErrConflict)
		case pgCheckViolation:
			return models.NewValidationError(pgErr.ConstraintName, pgErr.Message)
		}
	}

	logrus.WithError(err).WithField("op", op).Error("database error")
	return fmt.Errorf("%s: %w", op, err)
}
