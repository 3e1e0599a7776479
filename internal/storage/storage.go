package storage

import (
	"context"

	"github.com/shopspring/decimal"

	"aurum_leasing/internal/models"
)

// IStorage is the persistence boundary. Repositories obtained from the storage
// passed into WithTx's callback run inside that transaction.
type IStorage interface {
	Payment() IPaymentStorage
	Driver() IDriverStorage
	Notification() INotificationStorage
	Tenant() ITenantStorage
	Plan() IPlanStorage
	Vehicle() IVehicleStorage
	User() IUserStorage

	// WithTx commits when fn returns nil and rolls back otherwise.
	WithTx(ctx context.Context, fn func(tx IStorage) error) error
	Ping(ctx context.Context) error
	Close() error
}

type IPaymentStorage interface {
	Create(ctx context.Context, p *models.Payment) error
	GetByID(ctx context.Context, id string) (*models.Payment, error)
	// Transition moves p from `from` to `to` only if the row is still in `from`,
	// persisting p.Data with it. It reports false when no row matched.
	Transition(ctx context.Context, p *models.Payment, from, to models.PaymentStatus) (bool, error)
	ListByDriver(ctx context.Context, driverID string) ([]models.Payment, error)
	ListPending(ctx context.Context, tenantID string) ([]models.Payment, error)
	SumVerified(ctx context.Context, driverID string) (decimal.Decimal, error)
}

type IDriverStorage interface {
	GetByID(ctx context.Context, id string) (*models.Driver, error)
	List(ctx context.Context, tenantID string) ([]models.Driver, error)
	// Upsert creates the driver or updates its profile columns; it never writes balance.
	Upsert(ctx context.Context, d *models.Driver) error
	UpdateProfile(ctx context.Context, id string, profile models.DriverProfile) error
	// Credit adds amount to the balance. Only the verification workflow calls it.
	Credit(ctx context.Context, id string, amount decimal.Decimal) error
}

type INotificationStorage interface {
	Create(ctx context.Context, n *models.Notification) error
	GetByID(ctx context.Context, id string) (*models.Notification, error)
	List(ctx context.Context, f models.NotificationFilter) ([]models.Notification, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, f models.NotificationFilter) (int64, error)
}

type ITenantStorage interface {
	GetByID(ctx context.Context, id string) (*models.Tenant, error)
	List(ctx context.Context) ([]models.Tenant, error)
	Create(ctx context.Context, t *models.Tenant) error
	UpdateStatus(ctx context.Context, id string, status models.TenantStatus) error
	UpdateIntegrations(ctx context.Context, id string, settings models.IntegrationSettings) error
}

type IPlanStorage interface {
	GetByID(ctx context.Context, id string) (*models.Plan, error)
	List(ctx context.Context) ([]models.Plan, error)
	Upsert(ctx context.Context, p *models.Plan) error
}

type IVehicleStorage interface {
	GetByID(ctx context.Context, id string) (*models.Vehicle, error)
	List(ctx context.Context, tenantID string) ([]models.Vehicle, error)
	Upsert(ctx context.Context, v *models.Vehicle) error
	CountByTenant(ctx context.Context, tenantID string) (int64, error)
}

type IUserStorage interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uint) (*models.User, error)
}
