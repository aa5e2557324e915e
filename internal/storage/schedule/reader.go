package schedule

import (
	"context"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"
)

var columns = []any{"id", "profile_id", "adjustment", "note", "start_date", "frequency", "created_at"}

type Reader struct {
	exec bob.Executor
}

func NewReader(exec bob.Executor) *Reader {
	return &Reader{exec: exec}
}

func (r *Reader) FindByID(ctx context.Context, id uuid.UUID) (*Schedule, error) {
	row, err := r.findOne(ctx, sm.Where(psql.Quote("id").EQ(psql.Arg(id))))
	if err != nil {
		return nil, fmt.Errorf("schedule.FindByID: %w", err)
	}
	return row, nil
}

func (r *Reader) ListByProfile(ctx context.Context, profileID uuid.UUID) ([]*Schedule, error) {
	schedules, err := r.list(ctx, sm.Where(psql.Quote("profile_id").EQ(psql.Arg(profileID))))
	if err != nil {
		return nil, fmt.Errorf("schedule.ListByProfile: %w", err)
	}
	return schedules, nil
}

func (r *Reader) ListDue(ctx context.Context, today civil.Date) ([]*Schedule, error) {
	schedules, err := r.list(ctx, sm.Where(psql.Quote("start_date").LTE(psql.Arg(dateArg(today)))))
	if err != nil {
		return nil, fmt.Errorf("schedule.ListDue: %w", err)
	}
	return schedules, nil
}

func (r *Reader) list(ctx context.Context, mods ...bob.Mod[*dialect.SelectQuery]) ([]*Schedule, error) {
	queryMods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(columns...),
		sm.From(TableName),
	}
	queryMods = append(queryMods, mods...)
	queryMods = append(queryMods,
		sm.OrderBy("start_date").Asc(),
		sm.OrderBy("created_at").Asc(),
		sm.OrderBy("id").Asc(),
	)

	rows, err := bob.All(ctx, r.exec, psql.Select(queryMods...), scan.StructMapper[scheduleRow]())
	if err != nil {
		return nil, err
	}

	result := make([]*Schedule, len(rows))
	for i := range rows {
		result[i] = rowToSchedule(&rows[i])
	}
	return result, nil
}

func (r *Reader) findOne(ctx context.Context, mods ...bob.Mod[*dialect.SelectQuery]) (*Schedule, error) {
	queryMods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(columns...),
		sm.From(TableName),
	}
	queryMods = append(queryMods, mods...)

	row, err := bob.One(ctx, r.exec, psql.Select(queryMods...), scan.StructMapper[scheduleRow]())
	if err != nil {
		return nil, err
	}
	return rowToSchedule(&row), nil
}
