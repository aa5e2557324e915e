package schedule

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

func (w *Writer) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Schedule, error) {
	row, err := w.findOne(ctx,
		sm.Where(psql.Quote("id").EQ(psql.Arg(id))),
		sm.ForUpdate(),
	)
	if err != nil {
		return nil, fmt.Errorf("schedule.FindByIDForUpdate: %w", err)
	}
	return row, nil
}

func (w *Writer) Insert(ctx context.Context, create *ScheduleCreate) (*Schedule, error) {
	id := create.ID
	if id == uuid.Nil {
		var err error
		if id, err = uuid.NewV4(); err != nil {
			return nil, err
		}
	}

	query := psql.Insert(
		im.Into(TableName, "id", "profile_id", "adjustment", "note", "start_date", "frequency"),
		im.Values(
			psql.Arg(id),
			psql.Arg(create.ProfileID),
			psql.Arg(create.Adjustment),
			psql.Arg(create.Note),
			psql.Arg(dateArg(create.StartDate)),
			psql.Arg(create.Frequency.String()),
		),
		im.Returning(columns...),
	)
	row, err := bob.One(ctx, w.tx, query, scan.StructMapper[scheduleRow]())
	if err != nil {
		return nil, fmt.Errorf("schedule.Insert: %w", err)
	}
	return rowToSchedule(&row), nil
}

func (w *Writer) Update(ctx context.Context, id uuid.UUID, update *ScheduleUpdate) error {
	if update == nil || update.IsEmpty() {
		_, err := w.FindByID(ctx, id)
		return err
	}

	queryMods := []bob.Mod[*dialect.UpdateQuery]{
		um.Table(TableName),
		um.Where(psql.Quote("id").EQ(psql.Arg(id))),
	}
	if note, ok := update.Note.Get(); ok {
		queryMods = append(queryMods, um.SetCol("note").ToArg(note))
	}
	if adjustment, ok := update.Adjustment.Get(); ok {
		queryMods = append(queryMods, um.SetCol("adjustment").ToArg(adjustment))
	}
	if startDate, ok := update.StartDate.Get(); ok {
		queryMods = append(queryMods, um.SetCol("start_date").ToArg(dateArg(startDate)))
	}
	if frequency, ok := update.Frequency.Get(); ok {
		queryMods = append(queryMods, um.SetCol("frequency").ToArg(frequency.String()))
	}

	result, err := bob.Exec(ctx, w.tx, psql.Update(queryMods...))
	if err != nil {
		return fmt.Errorf("schedule.Update: %w", err)
	}
	return requireAffected(result, "schedule.Update")
}

func (w *Writer) Delete(ctx context.Context, id uuid.UUID) error {
	query := psql.Delete(
		dm.From(TableName),
		dm.Where(psql.Quote("id").EQ(psql.Arg(id))),
	)
	result, err := bob.Exec(ctx, w.tx, query)
	if err != nil {
		return fmt.Errorf("schedule.Delete: %w", err)
	}
	return requireAffected(result, "schedule.Delete")
}

func (w *Writer) DeleteByProfile(ctx context.Context, profileID uuid.UUID) (int64, error) {
	query := psql.Delete(
		dm.From(TableName),
		dm.Where(psql.Quote("profile_id").EQ(psql.Arg(profileID))),
	)
	result, err := bob.Exec(ctx, w.tx, query)
	if err != nil {
		return 0, fmt.Errorf("schedule.DeleteByProfile: %w", err)
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
