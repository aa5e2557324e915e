package actions

import (
	"context"
	"database/sql"
	"errors"

	"cloud.google.com/go/civil"
	"github.com/aarondl/opt/omit"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/allowance-server/internal/recurrence"
	"github.com/carson-networks/allowance-server/internal/storage"
	"github.com/carson-networks/allowance-server/internal/storage/schedule"
	"github.com/carson-networks/allowance-server/internal/storage/transaction"
)

type CreateSchedule struct {
	Create schedule.ScheduleCreate

	Schedule *schedule.Schedule
}

func (c *CreateSchedule) Perform(ctx context.Context, writer *storage.Writer) error {
	if _, err := writer.Profiles.FindByID(ctx, c.Create.ProfileID); err != nil {
		return missing(err, "profile", c.Create.ProfileID)
	}

	created, err := writer.Schedules.Insert(ctx, &c.Create)
	if err != nil {
		return err
	}
	c.Schedule = created
	return nil
}

type UpdateSchedule struct {
	ScheduleID uuid.UUID
	Update     schedule.ScheduleUpdate

	Schedule *schedule.Schedule
}

func (u *UpdateSchedule) Perform(ctx context.Context, writer *storage.Writer) error {
	if _, err := writer.Schedules.FindByIDForUpdate(ctx, u.ScheduleID); err != nil {
		return missing(err, "schedule", u.ScheduleID)
	}

	if err := writer.Schedules.Update(ctx, u.ScheduleID, &u.Update); err != nil {
		return missing(err, "schedule", u.ScheduleID)
	}

	updated, err := writer.Schedules.FindByID(ctx, u.ScheduleID)
	if err != nil {
		return err
	}
	u.Schedule = updated
	return nil
}

type DeleteSchedule struct {
	ScheduleID uuid.UUID
}

func (d *DeleteSchedule) Perform(ctx context.Context, writer *storage.Writer) error {
	return missing(writer.Schedules.Delete(ctx, d.ScheduleID), "schedule", d.ScheduleID)
}

// FireSchedule materializes one due schedule: it appends the schedule's
// adjustment to the ledger, moves the balance, then deletes a one-off
// schedule or advances a recurring one to its next date.
//
// With CatchUp set, a recurring schedule keeps firing while its next date is
// still on or before Today, at most MaxOccurrences times.
type FireSchedule struct {
	ScheduleID     uuid.UUID
	Today          civil.Date
	CatchUp        bool
	MaxOccurrences int

	ProfileID    uuid.UUID
	Transactions []*transaction.Transaction
	NewBalance   decimal.Decimal
	Retired      bool
	NextDate     civil.Date
	// Skipped is set when the schedule vanished or stopped being due
	// between listing and locking it.
	Skipped bool
}

func (f *FireSchedule) Perform(ctx context.Context, writer *storage.Writer) error {
	sched, err := writer.Schedules.FindByIDForUpdate(ctx, f.ScheduleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			f.Skipped = true
			return nil
		}
		return err
	}
	if sched.StartDate.After(f.Today) {
		f.Skipped = true
		return nil
	}

	if _, err := writer.Profiles.FindByIDForUpdate(ctx, sched.ProfileID); err != nil {
		return missing(err, "profile", sched.ProfileID)
	}
	f.ProfileID = sched.ProfileID

	limit := 1
	if f.CatchUp && sched.Frequency.Recurring() {
		limit = f.MaxOccurrences
		if limit < 1 {
			limit = 1
		}
	}

	due := sched.StartDate
	for {
		tx, balance, err := appendEntry(ctx, writer, sched.ProfileID, sched.Adjustment, sched.Note)
		if err != nil {
			return err
		}
		f.Transactions = append(f.Transactions, tx)
		f.NewBalance = balance

		if !sched.Frequency.Recurring() {
			f.Retired = true
			return missing(writer.Schedules.Delete(ctx, sched.ID), "schedule", sched.ID)
		}

		due, err = recurrence.Advance(due, sched.Frequency)
		if err != nil {
			return err
		}
		if due.After(f.Today) || len(f.Transactions) >= limit {
			break
		}
	}

	f.NextDate = due
	update := &schedule.ScheduleUpdate{StartDate: omit.From(due)}
	return missing(writer.Schedules.Update(ctx, sched.ID, update), "schedule", sched.ID)
}
