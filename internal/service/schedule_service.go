package service

import (
	"context"

	"cloud.google.com/go/civil"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/allowance-server/internal/operator/actions"
	"github.com/carson-networks/allowance-server/internal/recurrence"
	"github.com/carson-networks/allowance-server/internal/storage/schedule"
)

// ScheduleService manages scheduled transactions. Firing them is the
// scheduler's job.
type ScheduleService struct {
	*core
}

func (s *ScheduleService) CreateSchedule(ctx context.Context, create ScheduleCreate) (ScheduledTransaction, error) {
	if err := requireNonZero("adjustment", create.Adjustment); err != nil {
		return ScheduledTransaction{}, err
	}
	if err := validateStartDate(create.StartDate); err != nil {
		return ScheduledTransaction{}, err
	}
	if err := validateFrequency(create.Frequency); err != nil {
		return ScheduledTransaction{}, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	action := &actions.CreateSchedule{Create: schedule.ScheduleCreate{
		ProfileID:  create.ProfileID,
		Adjustment: create.Adjustment,
		Note:       create.Note,
		StartDate:  create.StartDate,
		Frequency:  create.Frequency,
	}}
	if err := s.process(ctx, "CreateSchedule", action); err != nil {
		return ScheduledTransaction{}, err
	}

	s.log.WithField("scheduleID", action.Schedule.ID).
		WithField("frequency", action.Schedule.Frequency).
		Debug("ScheduleService.CreateSchedule.Complete")
	return toSchedule(action.Schedule), nil
}

func (s *ScheduleService) UpdateSchedule(ctx context.Context, id uuid.UUID, update ScheduleUpdate) (ScheduledTransaction, error) {
	if adjustment, ok := update.Adjustment.Get(); ok {
		if err := requireNonZero("adjustment", adjustment); err != nil {
			return ScheduledTransaction{}, err
		}
	}
	if startDate, ok := update.StartDate.Get(); ok {
		if err := validateStartDate(startDate); err != nil {
			return ScheduledTransaction{}, err
		}
	}
	if frequency, ok := update.Frequency.Get(); ok {
		if err := validateFrequency(frequency); err != nil {
			return ScheduledTransaction{}, err
		}
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	action := &actions.UpdateSchedule{
		ScheduleID: id,
		Update: schedule.ScheduleUpdate{
			Note:       update.Note,
			Adjustment: update.Adjustment,
			StartDate:  update.StartDate,
			Frequency:  update.Frequency,
		},
	}
	if err := s.process(ctx, "UpdateSchedule", action); err != nil {
		return ScheduledTransaction{}, err
	}
	return toSchedule(action.Schedule), nil
}

func (s *ScheduleService) DeleteSchedule(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.process(ctx, "DeleteSchedule", &actions.DeleteSchedule{ScheduleID: id})
}

// ListSchedules returns a profile's schedules, soonest first.
func (s *ScheduleService) ListSchedules(ctx context.Context, profileID uuid.UUID) ([]ScheduledTransaction, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.storage.Profiles.FindByID(ctx, profileID); err != nil {
		return nil, readErr("ListSchedules", "profile", profileID, err)
	}

	rows, err := s.storage.Schedules.ListByProfile(ctx, profileID)
	if err != nil {
		return nil, translate("ListSchedules", err)
	}

	schedules := make([]ScheduledTransaction, len(rows))
	for i, row := range rows {
		schedules[i] = toSchedule(row)
	}
	return schedules, nil
}

func validateStartDate(d civil.Date) error {
	if !d.IsValid() {
		return validationError("startDate", "must be a valid calendar date")
	}
	return nil
}

func validateFrequency(f recurrence.Frequency) error {
	if !f.Valid() {
		return validationError("frequency", "must be one of once, daily, weekly, monthly")
	}
	return nil
}
