package schedule

import (
	"context"
	"time"

	"cloud.google.com/go/civil"
	"github.com/aarondl/opt/omit"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/allowance-server/internal/recurrence"
)

const TableName = "scheduled_transactions"

// Schedule is a recurring ledger entry waiting to be materialized.
// StartDate is always the next occurrence that has not fired yet.
type Schedule struct {
	ID         uuid.UUID
	ProfileID  uuid.UUID
	Adjustment decimal.Decimal
	Note       string
	StartDate  civil.Date
	Frequency  recurrence.Frequency
	CreatedAt  time.Time
}

type ScheduleCreate struct {
	ID         uuid.UUID
	ProfileID  uuid.UUID
	Adjustment decimal.Decimal
	Note       string
	StartDate  civil.Date
	Frequency  recurrence.Frequency
}

// ScheduleUpdate is a partial patch; unset fields keep their stored value.
type ScheduleUpdate struct {
	Note       omit.Val[string]
	Adjustment omit.Val[decimal.Decimal]
	StartDate  omit.Val[civil.Date]
	Frequency  omit.Val[recurrence.Frequency]
}

func (u ScheduleUpdate) IsEmpty() bool {
	return u.Note.IsUnset() && u.Adjustment.IsUnset() && u.StartDate.IsUnset() && u.Frequency.IsUnset()
}

type IReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Schedule, error)
	ListByProfile(ctx context.Context, profileID uuid.UUID) ([]*Schedule, error)
	// ListDue returns schedules whose start date is on or before today,
	// oldest first.
	ListDue(ctx context.Context, today civil.Date) ([]*Schedule, error)
}

type IWriter interface {
	IReader
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Schedule, error)
	Insert(ctx context.Context, create *ScheduleCreate) (*Schedule, error)
	Update(ctx context.Context, id uuid.UUID, update *ScheduleUpdate) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByProfile(ctx context.Context, profileID uuid.UUID) (int64, error)
}

type scheduleRow struct {
	ID         uuid.UUID       `db:"id"`
	ProfileID  uuid.UUID       `db:"profile_id"`
	Adjustment decimal.Decimal `db:"adjustment"`
	Note       string          `db:"note"`
	StartDate  time.Time       `db:"start_date"`
	Frequency  string          `db:"frequency"`
	CreatedAt  time.Time       `db:"created_at"`
}

func rowToSchedule(row *scheduleRow) *Schedule {
	return &Schedule{
		ID:         row.ID,
		ProfileID:  row.ProfileID,
		Adjustment: row.Adjustment,
		Note:       row.Note,
		StartDate:  civil.DateOf(row.StartDate),
		Frequency:  recurrence.Frequency(row.Frequency),
		CreatedAt:  row.CreatedAt,
	}
}

// dateArg converts a calendar date into the value bound to a DATE column.
func dateArg(d civil.Date) time.Time {
	return d.In(time.UTC)
}
