package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	logrus "github.com/sirupsen/logrus"

	"aurum_leasing/internal/app"
	"aurum_leasing/internal/config"
	"aurum_leasing/internal/logger"
)

func main() {
	cfg := config.Load()

	// Initialize structured logging to stdout and the rotating file
	logger.Setup(cfg.LogLevel, cfg.LogFile)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("startup failed")
	}

	runErr := a.Run(ctx)
	if err := a.Close(); err != nil {
		logrus.WithError(err).Warn("closing resources")
	}
	if runErr != nil {
		logrus.WithError(runErr).Fatal("server stopped")
	}
}
