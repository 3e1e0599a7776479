package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	logrus "github.com/sirupsen/logrus"

	"aurum_leasing/internal/config"
	"aurum_leasing/internal/controllers"
	"aurum_leasing/internal/counter"
	"aurum_leasing/internal/integrations"
	"aurum_leasing/internal/logger"
	"aurum_leasing/internal/middleware"
	"aurum_leasing/internal/models"
	"aurum_leasing/internal/routes"
	"aurum_leasing/internal/services"
	"aurum_leasing/internal/storage"
	"aurum_leasing/internal/storage/memory"
	"aurum_leasing/internal/storage/postgres"
)

const shutdownTimeout = 15 * time.Second

// App is the wired HTTP service.
type App struct {
	cfg        config.Config
	store      storage.IStorage
	rdb        *redis.Client
	dispatcher *integrations.Dispatcher
	ledger     *services.Ledger
	handler    http.Handler
}

// OpenStore returns the configured store. For postgres it applies pending
// migrations first when MIGRATE_ON_START is set.
func OpenStore(cfg config.Config) (storage.IStorage, error) {
	switch cfg.DBDriver {
	case "memory":
		logrus.Warn("using the in-memory store; data is lost on restart")
		store, err := memory.NewSeeded()
		if err != nil {
			return nil, err
		}
		return store, nil
	case "postgres", "":
		if cfg.MigrateOnStart {
			if err := postgres.MigrateUp(cfg.DSN()); err != nil {
				return nil, err
			}
		}
		db, err := config.OpenDatabase(cfg, logger.GormLogger())
		if err != nil {
			return nil, err
		}
		return postgres.New(db), nil
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
	}
}

// Build wires storage, integrations, services and the router.
func Build(cfg config.Config) (*App, error) {
	cfg.WarnInsecureDefaults()
	middleware.Configure(cfg.JWTSecret, cfg.JWTTTL)

	store, err := OpenStore(cfg)
	if err != nil {
		return nil, err
	}
	a := &App{cfg: cfg, store: store}

	health := map[string]controllers.Pinger{"database": store}
	var visits counter.VisitCounter = counter.NewMemory()
	if cfg.RedisURL != "" {
		rdb, err := config.OpenRedis(cfg)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		a.rdb = rdb
		visits = counter.NewRedisCounter(rdb, counter.GlobalVisitsKey)
		health["redis"] = controllers.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	} else {
		logrus.Info("REDIS_URL not set, counting visits in memory")
	}

	a.dispatcher = integrations.NewDispatcher(
		nil,
		models.IntegrationSettings{
			WahaURL:    cfg.WahaURL,
			WahaToken:  cfg.WahaToken,
			N8nWebhook: cfg.N8nWebhook,
		},
		cfg.IntegrationTimeout,
	)
	a.ledger = services.NewLedger(store, a.dispatcher, cfg.NotifyOnReject)

	router := routes.SetupRouter(routes.Controllers{
		Auth:          controllers.NewAuthController(services.NewAuth(store)),
		Payments:      controllers.NewPaymentController(a.ledger),
		Drivers:       controllers.NewDriverController(a.ledger, services.NewDrivers(store)),
		Notifications: controllers.NewNotificationController(services.NewNotifications(store)),
		Fleet:         controllers.NewFleetController(services.NewFleet(store)),
		Tenants:       controllers.NewTenantController(services.NewTenants(store)),
		Plans:         controllers.NewPlanController(services.NewPlans(store)),
		Stats:         controllers.NewStatsController(visits),
		Health:        controllers.Health(health),
	})
	a.handler = middleware.EnableCORS(router, cfg.CORSOrigins)

	return a, nil
}

func (a *App) Handler() http.Handler { return a.handler }

// Run serves until ctx is cancelled, then drains requests and pending
// integration deliveries.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.Addr(),
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.WithFields(logrus.Fields{
			"service": a.cfg.ServiceName,
			"addr":    srv.Addr,
			"store":   a.cfg.DBDriver,
		}).Info("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logrus.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("graceful shutdown failed")
	}
	a.dispatcher.Wait()
	return nil
}

func (a *App) Close() error {
	var errs []error
	if a.rdb != nil {
		errs = append(errs, a.rdb.Close())
	}
	errs = append(errs, a.store.Close())
	return errors.Join(errs...)
}
