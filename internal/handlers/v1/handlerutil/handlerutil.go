// Package handlerutil holds the pieces every v1 handler shares: service
// error translation, id parsing and request timings.
package handlerutil

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/allowance-server/internal/logging"
	"github.com/carson-networks/allowance-server/internal/service"
)

// Error maps a service error onto an HTTP status. msg is used for store
// failures, whose cause is not shown to the client.
func Error(err error, msg string) error {
	var validationErr *service.ValidationError
	var notFoundErr *service.NotFoundError
	var storeErr *service.StoreError

	switch {
	case errors.As(err, &validationErr):
		return huma.NewError(http.StatusBadRequest, validationErr.Error())
	case errors.As(err, &notFoundErr):
		return huma.NewError(http.StatusNotFound, notFoundErr.Error())
	case errors.As(err, &storeErr) && storeErr.Timeout():
		return huma.NewError(http.StatusGatewayTimeout, msg, err)
	default:
		return huma.NewError(http.StatusInternalServerError, msg, err)
	}
}

func ParseID(name, value string) (uuid.UUID, error) {
	id, err := uuid.FromString(value)
	if err != nil {
		return uuid.Nil, huma.NewError(http.StatusBadRequest, "invalid "+name, err)
	}
	return id, nil
}

// StartTimer records a timing on the request's LogData, if there is one.
func StartTimer(ctx context.Context, name string) func() {
	logData := logging.GetLogData(ctx)
	if logData == nil {
		return func() {}
	}
	return logData.AddTiming(name)
}

func AddData(ctx context.Context, key string, value interface{}) {
	if logData := logging.GetLogData(ctx); logData != nil {
		logData.AddData(key, value)
	}
}
