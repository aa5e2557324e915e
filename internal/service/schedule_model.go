package service

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/aarondl/opt/omit"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/allowance-server/internal/recurrence"
	"github.com/carson-networks/allowance-server/internal/storage/schedule"
)

// ScheduledTransaction is an entry that the scheduler materializes on
// StartDate and then retires or moves forward.
type ScheduledTransaction struct {
	ID         uuid.UUID
	ProfileID  uuid.UUID
	Adjustment decimal.Decimal
	Note       string
	StartDate  civil.Date
	Frequency  recurrence.Frequency
	CreatedAt  time.Time
}

type ScheduleCreate struct {
	ProfileID  uuid.UUID
	Adjustment decimal.Decimal
	Note       string
	StartDate  civil.Date
	Frequency  recurrence.Frequency
}

type ScheduleUpdate struct {
	Note       omit.Val[string]
	Adjustment omit.Val[decimal.Decimal]
	StartDate  omit.Val[civil.Date]
	Frequency  omit.Val[recurrence.Frequency]
}

func toSchedule(row *schedule.Schedule) ScheduledTransaction {
	return ScheduledTransaction{
		ID:         row.ID,
		ProfileID:  row.ProfileID,
		Adjustment: row.Adjustment,
		Note:       row.Note,
		StartDate:  row.StartDate,
		Frequency:  row.Frequency,
		CreatedAt:  row.CreatedAt,
	}
}
