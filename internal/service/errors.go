package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/allowance-server/internal/operator/actions"
)

// ValidationError reports input that was rejected before touching storage.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NotFoundError reports that a referenced entity does not exist.
type NotFoundError struct {
	Entity string
	ID     uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// StoreError wraps a failure of the backing store, including timeouts.
// Nothing the failed operation wrote has been committed.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: store error: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the store did not answer within the request
// timeout.
func (e *StoreError) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

// IntegrityWarning reports a cached balance that disagrees with the ledger.
type IntegrityWarning struct {
	ProfileID uuid.UUID
	Cached    decimal.Decimal
	Ledger    decimal.Decimal
}

func (w *IntegrityWarning) Error() string {
	return fmt.Sprintf("profile %s: cached balance %s does not match ledger total %s",
		w.ProfileID, w.Cached.StringFixed(2), w.Ledger.StringFixed(2))
}

// Drift is the amount the cache is ahead of the ledger.
func (w *IntegrityWarning) Drift() decimal.Decimal {
	return w.Cached.Sub(w.Ledger)
}

func validationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// translate maps errors from actions and storage onto the service taxonomy.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}

	var missingErr *actions.MissingError
	if errors.As(err, &missingErr) {
		return &NotFoundError{Entity: missingErr.Entity, ID: missingErr.ID}
	}

	var validationErr *ValidationError
	var notFoundErr *NotFoundError
	var storeErr *StoreError
	if errors.As(err, &validationErr) || errors.As(err, &notFoundErr) || errors.As(err, &storeErr) {
		return err
	}

	return &StoreError{Op: op, Err: err}
}
