package service

import (
	"context"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/aarondl/opt/omit"
	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/allowance-server/internal/recurrence"
)

var june1 = civil.Date{Year: 2025, Month: time.June, Day: 1}

func TestCreateSchedule_Success(t *testing.T) {
	env := newTestEnv(t)
	p := env.profile(t, "0")

	created, err := env.svc.Schedule.CreateSchedule(context.Background(), ScheduleCreate{
		ProfileID:  p.ID,
		Adjustment: dec("5"),
		Note:       "Allowance",
		StartDate:  june1,
		Frequency:  recurrence.Weekly,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)

	schedules, err := env.svc.Schedule.ListSchedules(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, schedules, 1)
	assert.Equal(t, june1, schedules[0].StartDate)
	assert.Equal(t, recurrence.Weekly, schedules[0].Frequency)
}

func TestCreateSchedule_Validation(t *testing.T) {
	env := newTestEnv(t)
	p := env.profile(t, "0")

	tests := []struct {
		name   string
		create ScheduleCreate
		field  string
	}{
		{
			name:   "zero adjustment",
			create: ScheduleCreate{ProfileID: p.ID, Adjustment: dec("0"), StartDate: june1, Frequency: recurrence.Once},
			field:  "adjustment",
		},
		{
			name:   "bad frequency",
			create: ScheduleCreate{ProfileID: p.ID, Adjustment: dec("1"), StartDate: june1, Frequency: "yearly"},
			field:  "frequency",
		},
		{
			name:   "bad date",
			create: ScheduleCreate{ProfileID: p.ID, Adjustment: dec("1"), StartDate: civil.Date{Year: 2025, Month: time.February, Day: 30}, Frequency: recurrence.Once},
			field:  "startDate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Schedule.CreateSchedule(context.Background(), tt.create)

			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.field, validationErr.Field)
		})
	}
}

func TestCreateSchedule_UnknownProfile(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Schedule.CreateSchedule(context.Background(), ScheduleCreate{
		ProfileID:  uuid.Must(uuid.NewV4()),
		Adjustment: dec("1"),
		StartDate:  june1,
		Frequency:  recurrence.Daily,
	})

	var notFoundErr *NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
}

func TestUpdateSchedule_PartialPatch(t *testing.T) {
	env := newTestEnv(t)
	p := env.profile(t, "0")
	created, err := env.svc.Schedule.CreateSchedule(context.Background(), ScheduleCreate{
		ProfileID: p.ID, Adjustment: dec("5"), Note: "Allowance", StartDate: june1, Frequency: recurrence.Weekly,
	})
	require.NoError(t, err)

	updated, err := env.svc.Schedule.UpdateSchedule(context.Background(), created.ID, ScheduleUpdate{
		Adjustment: omit.From(dec("-2")),
		Frequency:  omit.From(recurrence.Monthly),
	})
	require.NoError(t, err)

	assert.Equal(t, "Allowance", updated.Note)
	assert.True(t, updated.Adjustment.Equal(dec("-2")))
	assert.Equal(t, recurrence.Monthly, updated.Frequency)
	assert.Equal(t, june1, updated.StartDate)
}

func TestDeleteSchedule(t *testing.T) {
	env := newTestEnv(t)
	p := env.profile(t, "0")
	created, err := env.svc.Schedule.CreateSchedule(context.Background(), ScheduleCreate{
		ProfileID: p.ID, Adjustment: dec("5"), StartDate: june1, Frequency: recurrence.Once,
	})
	require.NoError(t, err)

	require.NoError(t, env.svc.Schedule.DeleteSchedule(context.Background(), created.ID))

	err = env.svc.Schedule.DeleteSchedule(context.Background(), created.ID)
	var notFoundErr *NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
	assert.Equal(t, "schedule", notFoundErr.Entity)
}
