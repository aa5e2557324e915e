package profile

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

var columns = []any{"id", "name", "balance", "image_url", "created_at"}

type Reader struct {
	exec bob.Executor
}

func NewReader(exec bob.Executor) *Reader {
	return &Reader{exec: exec}
}

func (r *Reader) FindByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	return r.findOne(ctx, sm.Where(psql.Quote("id").EQ(psql.Arg(id))))
}

func (r *Reader) List(ctx context.Context) ([]*Profile, error) {
	query := psql.Select(
		sm.Columns(columns...),
		sm.From(TableName),
		sm.OrderBy("name").Asc(),
		sm.OrderBy("id").Asc(),
	)
	rows, err := bob.All(ctx, r.exec, query, scan.StructMapper[profileRow]())
	if err != nil {
		return nil, fmt.Errorf("profile.List: %w", err)
	}

	result := make([]*Profile, len(rows))
	for i := range rows {
		result[i] = rowToProfile(&rows[i])
	}
	return result, nil
}

func (r *Reader) findOne(ctx context.Context, mods ...bob.Mod[*dialect.SelectQuery]) (*Profile, error) {
	queryMods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(columns...),
		sm.From(TableName),
	}
	queryMods = append(queryMods, mods...)

	row, err := bob.One(ctx, r.exec, psql.Select(queryMods...), scan.StructMapper[profileRow]())
	if err != nil {
		return nil, fmt.Errorf("profile.find: %w", err)
	}
	return rowToProfile(&row), nil
}
