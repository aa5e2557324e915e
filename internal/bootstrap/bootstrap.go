// Package bootstrap wires storage, the operator pool, events and services
// from a Config. The server and ledgerctl share it.
package bootstrap

import (
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/carson-networks/allowance-server/internal/config"
	"github.com/carson-networks/allowance-server/internal/events"
	"github.com/carson-networks/allowance-server/internal/operator"
	"github.com/carson-networks/allowance-server/internal/scheduler"
	"github.com/carson-networks/allowance-server/internal/service"
	"github.com/carson-networks/allowance-server/internal/storage"
	"github.com/carson-networks/allowance-server/internal/storage/memory"
)

type App struct {
	Config    *config.Config
	Logger    *logrus.Logger
	DB        *sql.DB
	Storage   *storage.Storage
	Operator  *operator.OperatorDelegator
	Publisher events.Publisher
	Service   *service.Service
	Job       *scheduler.Job
}

// New builds and starts every component. The caller must Close the App.
func New(cfg *config.Config, logger *logrus.Logger) (*App, error) {
	app := &App{Config: cfg, Logger: logger}

	if err := app.openStorage(); err != nil {
		return nil, err
	}

	app.Operator = operator.NewOperatorDelegator(app.Storage, cfg.OperatorWorkers, logger)
	app.Operator.Start()

	app.Publisher = events.Open(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)

	app.Service = service.NewService(service.Deps{
		Storage:        app.Storage,
		Operator:       app.Operator,
		Publisher:      app.Publisher,
		Logger:         logger,
		RequestTimeout: cfg.RequestTimeout,
	})

	app.Job = scheduler.NewJob(app.Storage.Schedules, app.Operator, app.Publisher, logger, scheduler.Options{
		CatchUp:    cfg.SchedulerCatchUp,
		MaxCatchUp: cfg.SchedulerMaxCatchUp,
	})

	return app, nil
}

func (a *App) openStorage() error {
	if a.Config.StorageBackend == config.BackendMemory {
		a.Logger.Warn("Bootstrap.Storage.memory: data is lost on exit")
		a.Storage = memory.NewStorage()
		return nil
	}

	db, err := storage.OpenDB(a.Config)
	if err != nil {
		return err
	}

	if a.Config.RunMigrations {
		if _, err := storage.RunMigrations(db, a.Logger); err != nil {
			_ = db.Close()
			return fmt.Errorf("bootstrap: migrations: %w", err)
		}
	}

	a.DB = db
	a.Storage = storage.NewFromDB(db)
	return nil
}

// Runner builds the in-process daily scheduler.
func (a *App) Runner() *scheduler.Runner {
	return scheduler.NewRunner(a.Job, a.Service.Ledger, scheduler.RunnerOptions{
		Interval:          a.Config.SchedulerInterval,
		Location:          a.Config.Location(),
		ReconcileAfterRun: a.Config.ReconcileAfterRun,
	}, a.Logger)
}

// Close drains the operator pool, then releases the broker and database.
func (a *App) Close() {
	a.Operator.Stop()
	if err := a.Publisher.Close(); err != nil {
		a.Logger.WithError(err).Warn("Bootstrap.Close.publisher")
	}
	if err := a.Storage.Close(); err != nil {
		a.Logger.WithError(err).Warn("Bootstrap.Close.storage")
	}
}
