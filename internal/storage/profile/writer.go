package profile

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
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

// FindByIDForUpdate locks the profile row until the transaction ends.
func (w *Writer) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Profile, error) {
	return w.findOne(ctx,
		sm.Where(psql.Quote("id").EQ(psql.Arg(id))),
		sm.ForUpdate(),
	)
}

func (w *Writer) Insert(ctx context.Context, create *ProfileCreate) (*Profile, error) {
	id := create.ID
	if id == uuid.Nil {
		var err error
		if id, err = uuid.NewV4(); err != nil {
			return nil, err
		}
	}

	query := psql.Insert(
		im.Into(TableName, "id", "name", "balance", "image_url"),
		im.Values(psql.Arg(id), psql.Arg(create.Name), psql.Arg(decimal.Zero), psql.Arg(create.ImageURL)),
		im.Returning(columns...),
	)
	row, err := bob.One(ctx, w.tx, query, scan.StructMapper[profileRow]())
	if err != nil {
		return nil, fmt.Errorf("profile.Insert: %w", err)
	}
	return rowToProfile(&row), nil
}

func (w *Writer) Update(ctx context.Context, id uuid.UUID, update *ProfileUpdate) error {
	if update == nil || update.IsEmpty() {
		_, err := w.FindByID(ctx, id)
		return err
	}

	queryMods := []bob.Mod[*dialect.UpdateQuery]{
		um.Table(TableName),
		um.Where(psql.Quote("id").EQ(psql.Arg(id))),
	}
	if name, ok := update.Name.Get(); ok {
		queryMods = append(queryMods, um.SetCol("name").ToArg(name))
	}
	if !update.ImageURL.IsUnset() {
		queryMods = append(queryMods, um.SetCol("image_url").ToArg(update.ImageURL.MustPtr()))
	}

	result, err := bob.Exec(ctx, w.tx, psql.Update(queryMods...))
	if err != nil {
		return fmt.Errorf("profile.Update: %w", err)
	}
	return requireAffected(result, "profile.Update")
}

func (w *Writer) AdjustBalance(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error) {
	query := psql.Update(
		um.Table(TableName),
		um.SetCol("balance").To(psql.Raw("balance + ?", delta)),
		um.Where(psql.Quote("id").EQ(psql.Arg(id))),
		um.Returning("balance"),
	)
	balance, err := bob.One(ctx, w.tx, query, scan.SingleColumnMapper[decimal.Decimal])
	if err != nil {
		return decimal.Zero, fmt.Errorf("profile.AdjustBalance: %w", err)
	}
	return balance, nil
}

func (w *Writer) Delete(ctx context.Context, id uuid.UUID) error {
	query := psql.Delete(
		dm.From(TableName),
		dm.Where(psql.Quote("id").EQ(psql.Arg(id))),
	)
	result, err := bob.Exec(ctx, w.tx, query)
	if err != nil {
		return fmt.Errorf("profile.Delete: %w", err)
	}
	return requireAffected(result, "profile.Delete")
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
