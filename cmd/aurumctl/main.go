package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	logrus "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"aurum_leasing/internal/app"
	"aurum_leasing/internal/config"
	"aurum_leasing/internal/logger"
	"aurum_leasing/internal/models"
	"aurum_leasing/internal/services"
	"aurum_leasing/internal/storage/postgres"
)

var cfg config.Config

func main() {
	root := &cobra.Command{
		Use:           "aurumctl",
		Short:         "Operate the Aurum leasing backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg = config.Load()
			logger.Setup(cfg.LogLevel, "")
		},
	}
	root.AddCommand(serveCmd(), migrateCmd(), reconcileCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		logrus.WithError(err).Error("command failed")
		stop()
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger.Setup(cfg.LogLevel, cfg.LogFile)
			a, err := app.Build(cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Run(cmd.Context())
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	withMigrator := func(fn func(*postgres.Migrator) error) error {
		mg, err := postgres.NewMigrator(cfg.DSN())
		if err != nil {
			return err
		}
		defer mg.Close()
		return fn(mg)
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(mg *postgres.Migrator) error { return mg.Up() })
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(mg *postgres.Migrator) error { return mg.Down(steps) })
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back, 0 for all")

	version := &cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(mg *postgres.Migrator) error {
				v, dirty, ok, err := mg.Version()
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "no migrations applied")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty=%t)\n", v, dirty)
				return nil
			})
		},
	}

	cmd.AddCommand(up, down, version)
	return cmd
}

var errDrift = errors.New("ledger drift detected")

func reconcileCmd() *cobra.Command {
	var tenantID, driverID string
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Compare stored balances with the verified payment ledger",
		Long:  "Exits non-zero when any driver's balance differs from the sum of its verified payments.",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.OpenStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()
			ledger := services.NewLedger(store, services.NopNotifier{}, false)

			var recs []services.Reconciliation
			if driverID != "" {
				rec, err := ledger.Reconcile(cmd.Context(), driverID, models.Scope{})
				if err != nil {
					return err
				}
				recs = append(recs, *rec)
			} else {
				recs, err = ledger.ReconcileTenant(cmd.Context(), tenantID, models.Scope{})
				if err != nil {
					return err
				}
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(recs); err != nil {
				return err
			}
			for _, rec := range recs {
				if !rec.Consistent {
					return errDrift
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&tenantID, "tenant", "", "restrict to one tenant")
	cmd.Flags().StringVar(&driverID, "driver", "", "check a single driver")
	return cmd
}
