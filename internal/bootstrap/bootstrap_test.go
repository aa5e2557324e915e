package bootstrap

import (
	"context"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/allowance-server/internal/config"
	"github.com/carson-networks/allowance-server/internal/events"
	"github.com/carson-networks/allowance-server/internal/recurrence"
	"github.com/carson-networks/allowance-server/internal/service"
)

func TestNew_MemoryBackend(t *testing.T) {
	cfg := config.Defaults()
	cfg.StorageBackend = config.BackendMemory
	logger, _ := test.NewNullLogger()

	app, err := New(&cfg, logger)
	require.NoError(t, err)
	t.Cleanup(app.Close)

	assert.Nil(t, app.DB)
	assert.IsType(t, events.NopPublisher{}, app.Publisher)

	ctx := context.Background()
	p, err := app.Service.Profile.CreateProfile(ctx, service.ProfileCreate{Name: "Ada"})
	require.NoError(t, err)

	today := civil.Date{Year: 2025, Month: time.June, Day: 1}
	_, err = app.Service.Schedule.CreateSchedule(ctx, service.ScheduleCreate{
		ProfileID:  p.ID,
		Adjustment: decimal.NewFromInt(5),
		StartDate:  today,
		Frequency:  recurrence.Once,
	})
	require.NoError(t, err)

	result, err := app.Job.Run(ctx, today)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Applied)

	report, err := app.Service.Ledger.Reconcile(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, report.Consistent())
	assert.True(t, report.Cached.Equal(decimal.NewFromInt(5)))
	assert.NotNil(t, app.Runner())
}
