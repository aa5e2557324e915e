package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/stephenafamo/bob"

	"github.com/carson-networks/allowance-server/internal/config"
)

// BeginFunc opens a write transaction.
type BeginFunc func(ctx context.Context) (*Writer, error)

type Storage struct {
	*Reader
	begin BeginFunc
	close func() error
}

// New assembles a Storage from a reader and a transaction factory.
func New(reader *Reader, begin BeginFunc, closeFn func() error) *Storage {
	if closeFn == nil {
		closeFn = func() error { return nil }
	}
	return &Storage{
		Reader: reader,
		begin:  begin,
		close:  closeFn,
	}
}

// ConnectionString builds the lib/pq DSN for the configured database.
func ConnectionString(env *config.Config) string {
	return "postgres://" + env.PostgresUsername + ":" +
		env.PostgresPassword + "@" + env.PostgresAddress + ":" +
		env.PostgresPort + "/" + env.PostgresDB + "?sslmode=disable"
}

// OpenDB opens the Postgres database described by env.
func OpenDB(env *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", ConnectionString(env))
	if err != nil {
		return nil, fmt.Errorf("storage.OpenDB: %w", err)
	}
	return db, nil
}

// NewStorage opens the Postgres database described by env.
func NewStorage(env *config.Config) (*Storage, error) {
	db, err := OpenDB(env)
	if err != nil {
		return nil, err
	}
	return NewFromDB(db), nil
}

// NewFromDB wraps an open database handle.
func NewFromDB(db *sql.DB) *Storage {
	bobDB := bob.NewDB(db)

	begin := func(ctx context.Context) (*Writer, error) {
		tx, err := bobDB.BeginTx(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("storage.Write: %w", err)
		}
		return NewWriter(tx), nil
	}

	return New(NewReader(bobDB), begin, db.Close)
}

// Write starts a transaction. The caller must Commit or Rollback the
// returned Writer.
func (s *Storage) Write(ctx context.Context) (*Writer, error) {
	return s.begin(ctx)
}

func (s *Storage) Close() error {
	return s.close()
}
