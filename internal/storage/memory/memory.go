// Package memory is an in-process IStorage with the same contract as the
// Postgres store. Transactions are serialised by one mutex and applied to a
// snapshot that replaces the live state only on commit.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"aurum_leasing/internal/models"
	"aurum_leasing/internal/storage"
)

type state struct {
	seq int64

	payments      map[string]models.Payment
	drivers       map[string]models.Driver
	notifications map[string]models.Notification
	tenants       map[string]models.Tenant
	plans         map[string]models.Plan
	vehicles      map[string]models.Vehicle
	users         map[uint]models.User
	lastUserID    uint

	// insertion order, used to break created_at ties
	order map[string]int64
}

func newState() *state {
	return &state{
		payments:      map[string]models.Payment{},
		drivers:       map[string]models.Driver{},
		notifications: map[string]models.Notification{},
		tenants:       map[string]models.Tenant{},
		plans:         map[string]models.Plan{},
		vehicles:      map[string]models.Vehicle{},
		users:         map[uint]models.User{},
		order:         map[string]int64{},
	}
}

func (st *state) clone() *state {
	c := &state{seq: st.seq, lastUserID: st.lastUserID}
	c.payments = copyMap(st.payments)
	c.drivers = copyMap(st.drivers)
	c.notifications = copyMap(st.notifications)
	c.tenants = copyMap(st.tenants)
	c.plans = copyMap(st.plans)
	c.vehicles = copyMap(st.vehicles)
	c.users = copyMap(st.users)
	c.order = copyMap(st.order)
	return c
}

func (st *state) stamp(key string) {
	st.seq++
	st.order[key] = st.seq
}

func copyMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

type db struct {
	mu sync.Mutex
	st *state
}

type Store struct {
	db *db
	tx *state
	// now is replaceable in tests
	now func() time.Time
}

func New() *Store {
	return &Store{db: &db{st: newState()}, now: time.Now}
}

// run executes fn against the transaction snapshot, or under the lock against
// the live state outside a transaction.
func (s *Store) run(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.tx != nil {
		return fn(s.tx)
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return fn(s.db.st)
}

func (s *Store) WithTx(ctx context.Context, fn func(tx storage.IStorage) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.tx != nil {
		snap := s.tx.clone()
		if err := fn(&Store{db: s.db, tx: snap, now: s.now}); err != nil {
			return err
		}
		*s.tx = *snap
		return nil
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	snap := s.db.st.clone()
	if err := fn(&Store{db: s.db, tx: snap, now: s.now}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.db.st = snap
	return nil
}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }
func (s *Store) Close() error                   { return nil }

func (s *Store) Payment() storage.IPaymentStorage           { return &paymentRepo{s} }
func (s *Store) Driver() storage.IDriverStorage             { return &driverRepo{s} }
func (s *Store) Notification() storage.INotificationStorage { return &notificationRepo{s} }
func (s *Store) Tenant() storage.ITenantStorage             { return &tenantRepo{s} }
func (s *Store) Plan() storage.IPlanStorage                 { return &planRepo{s} }
func (s *Store) Vehicle() storage.IVehicleStorage           { return &vehicleRepo{s} }
func (s *Store) User() storage.IUserStorage                 { return &userRepo{s} }

// newestFirst orders by created_at then insertion order, both descending.
func newestFirst[T any](st *state, items []T, key func(T) (string, time.Time)) {
	sort.SliceStable(items, func(i, j int) bool {
		ki, ti := key(items[i])
		kj, tj := key(items[j])
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return st.order[ki] > st.order[kj]
	})
}
