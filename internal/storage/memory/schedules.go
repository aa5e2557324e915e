package memory

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"cloud.google.com/go/civil"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/allowance-server/internal/storage/schedule"
)

type schedules struct {
	src   source
	store *Store
}

func (s *schedules) FindByID(_ context.Context, id uuid.UUID) (*schedule.Schedule, error) {
	var out *schedule.Schedule
	err := s.src.view(func(st *state) error {
		row, ok := st.schedules[id]
		if !ok {
			return fmt.Errorf("schedule.FindByID: %w", sql.ErrNoRows)
		}
		out = &row
		return nil
	})
	return out, err
}

func (s *schedules) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*schedule.Schedule, error) {
	return s.FindByID(ctx, id)
}

func (s *schedules) ListByProfile(_ context.Context, profileID uuid.UUID) ([]*schedule.Schedule, error) {
	return s.filter(func(row *schedule.Schedule) bool {
		return row.ProfileID == profileID
	})
}

func (s *schedules) ListDue(_ context.Context, today civil.Date) ([]*schedule.Schedule, error) {
	return s.filter(func(row *schedule.Schedule) bool {
		return !row.StartDate.After(today)
	})
}

func (s *schedules) filter(keep func(row *schedule.Schedule) bool) ([]*schedule.Schedule, error) {
	var out []*schedule.Schedule
	err := s.src.view(func(st *state) error {
		for _, row := range st.schedules {
			if keep(&row) {
				out = append(out, &row)
			}
		}
		sort.Slice(out, func(i, j int) bool {
			if out[i].StartDate != out[j].StartDate {
				return out[i].StartDate.Before(out[j].StartDate)
			}
			return st.sequence[out[i].ID] < st.sequence[out[j].ID]
		})
		return nil
	})
	return out, err
}

func (s *schedules) Insert(_ context.Context, create *schedule.ScheduleCreate) (*schedule.Schedule, error) {
	if err := s.store.check(OpScheduleInsert, create.ProfileID); err != nil {
		return nil, fmt.Errorf("schedule.Insert: %w", err)
	}
	id := create.ID
	if id == uuid.Nil {
		var err error
		if id, err = uuid.NewV4(); err != nil {
			return nil, err
		}
	}

	var out *schedule.Schedule
	err := s.src.view(func(st *state) error {
		if _, ok := st.profiles[create.ProfileID]; !ok {
			return fmt.Errorf("schedule.Insert: %w", ErrForeignKey)
		}
		row := schedule.Schedule{
			ID:         id,
			ProfileID:  create.ProfileID,
			Adjustment: create.Adjustment,
			Note:       create.Note,
			StartDate:  create.StartDate,
			Frequency:  create.Frequency,
			CreatedAt:  s.store.clock(),
		}
		st.schedules[id] = row
		st.next(id)
		out = &row
		return nil
	})
	return out, err
}

func (s *schedules) Update(_ context.Context, id uuid.UUID, update *schedule.ScheduleUpdate) error {
	if err := s.store.check(OpScheduleUpdate, id); err != nil {
		return fmt.Errorf("schedule.Update: %w", err)
	}
	return s.src.view(func(st *state) error {
		row, ok := st.schedules[id]
		if !ok {
			return fmt.Errorf("schedule.Update: %w", sql.ErrNoRows)
		}
		if update == nil {
			return nil
		}
		if note, ok := update.Note.Get(); ok {
			row.Note = note
		}
		if adjustment, ok := update.Adjustment.Get(); ok {
			row.Adjustment = adjustment
		}
		if startDate, ok := update.StartDate.Get(); ok {
			row.StartDate = startDate
		}
		if frequency, ok := update.Frequency.Get(); ok {
			row.Frequency = frequency
		}
		st.schedules[id] = row
		return nil
	})
}

func (s *schedules) Delete(_ context.Context, id uuid.UUID) error {
	if err := s.store.check(OpScheduleDelete, id); err != nil {
		return fmt.Errorf("schedule.Delete: %w", err)
	}
	return s.src.view(func(st *state) error {
		if _, ok := st.schedules[id]; !ok {
			return fmt.Errorf("schedule.Delete: %w", sql.ErrNoRows)
		}
		delete(st.schedules, id)
		delete(st.sequence, id)
		return nil
	})
}

func (s *schedules) DeleteByProfile(_ context.Context, profileID uuid.UUID) (int64, error) {
	if err := s.store.check(OpScheduleDelete, profileID); err != nil {
		return 0, fmt.Errorf("schedule.DeleteByProfile: %w", err)
	}
	var deleted int64
	err := s.src.view(func(st *state) error {
		for id, row := range st.schedules {
			if row.ProfileID == profileID {
				delete(st.schedules, id)
				delete(st.sequence, id)
				deleted++
			}
		}
		return nil
	})
	return deleted, err
}
