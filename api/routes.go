package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/allowance-server/internal/handlers/v1/profile"
	"github.com/carson-networks/allowance-server/internal/handlers/v1/schedule"
	"github.com/carson-networks/allowance-server/internal/handlers/v1/status"
	"github.com/carson-networks/allowance-server/internal/handlers/v1/transaction"
	"github.com/carson-networks/allowance-server/internal/logging"
	"github.com/carson-networks/allowance-server/internal/scheduler"
	"github.com/carson-networks/allowance-server/internal/service"
)

const shutdownTimeout = 15 * time.Second

type Rest struct {
	Logger   *logrus.Logger
	Port     string
	Service  *service.Service
	Job      *scheduler.Job
	Location *time.Location
	DB       status.Pinger
}

// Handler builds the router with every v1 operation and /status mounted.
func (r *Rest) Handler() http.Handler {
	router := chi.NewMux()
	router.Use(middleware.Recoverer)

	statusHandler := status.NewHandler(r.DB)
	router.HandleFunc("/status", logging.LoggingWrapper("Status", r.Logger, statusHandler.Handler))

	api := humachi.New(router, huma.DefaultConfig("Allowance API", "1.0.0"))
	api.UseMiddleware(logging.HumaMiddleware(r.Logger))

	profile.NewCreateProfileHandler(r.Service.Profile).Register(api)
	profile.NewListProfilesHandler(r.Service.Profile).Register(api)
	profile.NewGetProfileHandler(r.Service.Profile).Register(api)
	profile.NewUpdateProfileHandler(r.Service.Profile).Register(api)
	profile.NewDeleteProfileHandler(r.Service.Profile).Register(api)
	profile.NewReconcileHandler(r.Service.Ledger).Register(api)

	transaction.NewCreateTransactionHandler(r.Service.Transaction).Register(api)
	transaction.NewListTransactionsHandler(r.Service.Transaction).Register(api)
	transaction.NewAmendTransactionHandler(r.Service.Transaction).Register(api)
	transaction.NewDeleteTransactionHandler(r.Service.Transaction).Register(api)

	schedule.NewCreateScheduleHandler(r.Service.Schedule).Register(api)
	schedule.NewListSchedulesHandler(r.Service.Schedule).Register(api)
	schedule.NewUpdateScheduleHandler(r.Service.Schedule).Register(api)
	schedule.NewDeleteScheduleHandler(r.Service.Schedule).Register(api)
	schedule.NewRunSchedulesHandler(r.Job, r.Location).Register(api)

	return router
}

// Serve listens until ctx is cancelled, then shuts down gracefully.
func (r *Rest) Serve(ctx context.Context) error {
	server := http.Server{
		Addr:              ":" + r.Port,
		Handler:           r.Handler(),
		ReadTimeout:       time.Duration(30) * time.Second,
		WriteTimeout:      time.Duration(30) * time.Second,
		IdleTimeout:       time.Duration(10) * time.Second,
		ReadHeaderTimeout: time.Duration(10) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		r.Logger.WithField("port", r.Port).Info("HttpServer.Serve.listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.Logger.WithError(err).Error("HttpServer.Serve.listen error")
			return err
		}
		return nil
	case <-ctx.Done():
	}

	r.Logger.Info("HttpServer.Serve.shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
