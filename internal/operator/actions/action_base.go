package actions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/allowance-server/internal/storage"
)

type IAction interface {
	Perform(ctx context.Context, writer *storage.Writer) error
}

// MissingError reports that a row an action depends on does not exist.
type MissingError struct {
	Entity string
	ID     uuid.UUID
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *MissingError) Unwrap() error {
	return sql.ErrNoRows
}

func missing(err error, entity string, id uuid.UUID) error {
	if errors.Is(err, sql.ErrNoRows) {
		return &MissingError{Entity: entity, ID: id}
	}
	return err
}
