package storage

import (
	"context"

	"github.com/stephenafamo/bob"

	"github.com/carson-networks/allowance-server/internal/storage/profile"
	"github.com/carson-networks/allowance-server/internal/storage/schedule"
	"github.com/carson-networks/allowance-server/internal/storage/transaction"
)

// Tx is the unit of work a Writer commits or rolls back.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Writer groups every table writer bound to one database transaction.
type Writer struct {
	tx           Tx
	Profiles     profile.IWriter
	Transactions transaction.IWriter
	Schedules    schedule.IWriter
}

func NewWriter(tx bob.Tx) *Writer {
	return &Writer{
		tx:           tx,
		Profiles:     profile.NewWriter(tx),
		Transactions: transaction.NewWriter(tx),
		Schedules:    schedule.NewWriter(tx),
	}
}

// NewTxWriter assembles a Writer from already bound table writers. Backends
// other than Postgres use it.
func NewTxWriter(tx Tx, profiles profile.IWriter, transactions transaction.IWriter, schedules schedule.IWriter) *Writer {
	return &Writer{
		tx:           tx,
		Profiles:     profiles,
		Transactions: transactions,
		Schedules:    schedules,
	}
}

func (w *Writer) Commit() error {
	return w.tx.Commit(context.Background())
}

func (w *Writer) Rollback() error {
	return w.tx.Rollback(context.Background())
}
