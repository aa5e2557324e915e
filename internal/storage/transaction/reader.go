package transaction

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"
)

var columns = []any{"id", "profile_id", "adjustment", "note", "created_at"}

var linkedColumns = []any{
	psql.Quote("t", "id"),
	psql.Quote("t", "profile_id"),
	psql.Quote("t", "adjustment"),
	psql.Quote("t", "note"),
	psql.Quote("t", "created_at"),
}

type Reader struct {
	exec bob.Executor
}

func NewReader(exec bob.Executor) *Reader {
	return &Reader{exec: exec}
}

func (r *Reader) FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	return r.findOne(ctx, sm.Where(psql.Quote("id").EQ(psql.Arg(id))))
}

// ListByProfile returns every entry linked to the profile through the join
// table, newest first.
func (r *Reader) ListByProfile(ctx context.Context, profileID uuid.UUID) ([]*Transaction, error) {
	query := psql.Select(
		sm.Columns(linkedColumns...),
		sm.From(TableName).As("t"),
		sm.InnerJoin(JoinTableName).As("j").On(psql.Quote("j", "transaction_id").EQ(psql.Quote("t", "id"))),
		sm.Where(psql.Quote("j", "profile_id").EQ(psql.Arg(profileID))),
		sm.OrderBy(psql.Quote("t", "created_at")).Desc(),
		sm.OrderBy(psql.Quote("t", "id")).Desc(),
	)
	rows, err := bob.All(ctx, r.exec, query, scan.StructMapper[transactionRow]())
	if err != nil {
		return nil, fmt.Errorf("transaction.ListByProfile: %w", err)
	}

	result := make([]*Transaction, len(rows))
	for i := range rows {
		result[i] = rowToTransaction(&rows[i])
	}
	return result, nil
}

func (r *Reader) SumByProfile(ctx context.Context, profileID uuid.UUID) (LedgerTotal, error) {
	query := psql.Select(
		sm.Columns(
			psql.Raw("COALESCE(SUM(t.adjustment), 0) AS total"),
			psql.Raw("COUNT(t.id) AS entries"),
		),
		sm.From(TableName).As("t"),
		sm.InnerJoin(JoinTableName).As("j").On(psql.Quote("j", "transaction_id").EQ(psql.Quote("t", "id"))),
		sm.Where(psql.Quote("j", "profile_id").EQ(psql.Arg(profileID))),
	)
	row, err := bob.One(ctx, r.exec, query, scan.StructMapper[totalRow]())
	if err != nil {
		return LedgerTotal{}, fmt.Errorf("transaction.SumByProfile: %w", err)
	}
	return LedgerTotal{Sum: row.Total, Entries: row.Entries}, nil
}

func (r *Reader) findOne(ctx context.Context, mods ...bob.Mod[*dialect.SelectQuery]) (*Transaction, error) {
	queryMods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(columns...),
		sm.From(TableName),
	}
	queryMods = append(queryMods, mods...)

	row, err := bob.One(ctx, r.exec, psql.Select(queryMods...), scan.StructMapper[transactionRow]())
	if err != nil {
		return nil, fmt.Errorf("transaction.find: %w", err)
	}
	return rowToTransaction(&row), nil
}
