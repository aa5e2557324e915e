package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/carson-networks/allowance-server/api"
	"github.com/carson-networks/allowance-server/internal/bootstrap"
	"github.com/carson-networks/allowance-server/internal/config"
	"github.com/carson-networks/allowance-server/internal/logging"
)

func main() {
	logger := logging.SetupLogging()
	logger.Info("allowance-server starting")

	envConfig, err := config.ProcessEnvironmentVariables()
	if err != nil {
		logger.WithError(err).Fatal("config.ProcessEnvironmentVariables")
		return
	}
	if err := logging.SetLevel(logger, envConfig.LogLevel); err != nil {
		logger.WithError(err).Fatal("logging.SetLevel")
		return
	}

	app, err := bootstrap.New(envConfig, logger)
	if err != nil {
		logger.WithError(err).Fatal("bootstrap.New")
		return
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpRest := &api.Rest{
		Logger:   logger,
		Port:     envConfig.HTTPPort,
		Service:  app.Service,
		Job:      app.Job,
		Location: envConfig.Location(),
	}
	if app.DB != nil {
		httpRest.DB = app.DB
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return httpRest.Serve(ctx)
	})
	if envConfig.SchedulerEnabled {
		runner := app.Runner()
		group.Go(func() error {
			return runner.Run(ctx)
		})
	}

	if err := group.Wait(); err != nil {
		logger.WithError(err).Error("allowance-server stopped with error")
		return
	}
	logger.Info("allowance-server stopped")
}
