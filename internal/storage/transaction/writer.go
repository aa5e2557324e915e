package transaction

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/dm"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/bob/dialect/psql/um"
	"github.com/stephenafamo/scan"
)

type Writer struct {
	tx bob.Executor
	Reader
}

func NewWriter(tx bob.Executor) *Writer {
	return &Writer{
		tx: tx,
		Reader: Reader{
			exec: tx,
		},
	}
}

func (w *Writer) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	return w.findOne(ctx,
		sm.Where(psql.Quote("id").EQ(psql.Arg(id))),
		sm.ForUpdate(),
	)
}

// Insert appends the entry and links it to its profile.
func (w *Writer) Insert(ctx context.Context, create *TransactionCreate) (*Transaction, error) {
	id := create.ID
	if id == uuid.Nil {
		var err error
		if id, err = uuid.NewV4(); err != nil {
			return nil, err
		}
	}

	insertTx := psql.Insert(
		im.Into(TableName, "id", "profile_id", "adjustment", "note"),
		im.Values(psql.Arg(id), psql.Arg(create.ProfileID), psql.Arg(create.Adjustment), psql.Arg(create.Note)),
		im.Returning(columns...),
	)
	row, err := bob.One(ctx, w.tx, insertTx, scan.StructMapper[transactionRow]())
	if err != nil {
		return nil, fmt.Errorf("transaction.Insert: %w", err)
	}

	insertJoin := psql.Insert(
		im.Into(JoinTableName, "profile_id", "transaction_id"),
		im.Values(psql.Arg(create.ProfileID), psql.Arg(id)),
	)
	if _, err := bob.Exec(ctx, w.tx, insertJoin); err != nil {
		return nil, fmt.Errorf("transaction.Insert.join: %w", err)
	}

	return rowToTransaction(&row), nil
}

func (w *Writer) Update(ctx context.Context, id uuid.UUID, update *TransactionUpdate) error {
	queryMods := []bob.Mod[*dialect.UpdateQuery]{
		um.Table(TableName),
		um.Where(psql.Quote("id").EQ(psql.Arg(id))),
	}
	changed := false
	if note, ok := update.Note.Get(); ok {
		queryMods = append(queryMods, um.SetCol("note").ToArg(note))
		changed = true
	}
	if adjustment, ok := update.Adjustment.Get(); ok {
		queryMods = append(queryMods, um.SetCol("adjustment").ToArg(adjustment))
		changed = true
	}
	if !changed {
		_, err := w.FindByID(ctx, id)
		return err
	}

	result, err := bob.Exec(ctx, w.tx, psql.Update(queryMods...))
	if err != nil {
		return fmt.Errorf("transaction.Update: %w", err)
	}
	return requireAffected(result, "transaction.Update")
}

// Delete removes the join row and then the entry itself.
func (w *Writer) Delete(ctx context.Context, id uuid.UUID) error {
	deleteJoin := psql.Delete(
		dm.From(JoinTableName),
		dm.Where(psql.Quote("transaction_id").EQ(psql.Arg(id))),
	)
	if _, err := bob.Exec(ctx, w.tx, deleteJoin); err != nil {
		return fmt.Errorf("transaction.Delete.join: %w", err)
	}

	deleteTx := psql.Delete(
		dm.From(TableName),
		dm.Where(psql.Quote("id").EQ(psql.Arg(id))),
	)
	result, err := bob.Exec(ctx, w.tx, deleteTx)
	if err != nil {
		return fmt.Errorf("transaction.Delete: %w", err)
	}
	return requireAffected(result, "transaction.Delete")
}

func (w *Writer) DeleteByProfile(ctx context.Context, profileID uuid.UUID) (int64, error) {
	deleteJoin := psql.Delete(
		dm.From(JoinTableName),
		dm.Where(psql.Quote("profile_id").EQ(psql.Arg(profileID))),
	)
	if _, err := bob.Exec(ctx, w.tx, deleteJoin); err != nil {
		return 0, fmt.Errorf("transaction.DeleteByProfile.join: %w", err)
	}

	deleteTx := psql.Delete(
		dm.From(TableName),
		dm.Where(psql.Quote("profile_id").EQ(psql.Arg(profileID))),
	)
	result, err := bob.Exec(ctx, w.tx, deleteTx)
	if err != nil {
		return 0, fmt.Errorf("transaction.DeleteByProfile: %w", err)
	}
	return result.RowsAffected()
}

func requireAffected(result sql.Result, op string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, sql.ErrNoRows)
	}
	return nil
}
