package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/allowance-server/internal/events"
	"github.com/carson-networks/allowance-server/internal/operator"
	"github.com/carson-networks/allowance-server/internal/recurrence"
	"github.com/carson-networks/allowance-server/internal/service"
	"github.com/carson-networks/allowance-server/internal/storage"
	"github.com/carson-networks/allowance-server/internal/storage/memory"
)

type testEnv struct {
	store     *memory.Store
	storage   *storage.Storage
	svc       *service.Service
	delegator *operator.OperatorDelegator
	recorder  *events.Recorder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger, _ := test.NewNullLogger()
	store := memory.NewStore()
	s := store.Storage()
	delegator := operator.NewOperatorDelegator(s, 2, logger)
	delegator.Start()
	t.Cleanup(delegator.Stop)

	recorder := &events.Recorder{}
	svc := service.NewService(service.Deps{
		Storage:   s,
		Operator:  delegator,
		Publisher: recorder,
		Logger:    logger,
	})
	return &testEnv{store: store, storage: s, svc: svc, delegator: delegator, recorder: recorder}
}

func (e *testEnv) job(t *testing.T, opts Options) *Job {
	t.Helper()
	logger, _ := test.NewNullLogger()
	return NewJob(e.storage.Schedules, e.delegator, e.recorder, logger, opts)
}

func (e *testEnv) profile(t *testing.T) uuid.UUID {
	t.Helper()
	p, err := e.svc.Profile.CreateProfile(context.Background(), service.ProfileCreate{Name: "Ada"})
	require.NoError(t, err)
	return p.ID
}

func (e *testEnv) schedule(t *testing.T, profileID uuid.UUID, adjustment string, start civil.Date, f recurrence.Frequency) uuid.UUID {
	t.Helper()
	s, err := e.svc.Schedule.CreateSchedule(context.Background(), service.ScheduleCreate{
		ProfileID:  profileID,
		Adjustment: dec(adjustment),
		Note:       "Allowance",
		StartDate:  start,
		Frequency:  f,
	})
	require.NoError(t, err)
	return s.ID
}

func (e *testEnv) balance(t *testing.T, profileID uuid.UUID) decimal.Decimal {
	t.Helper()
	report, err := e.svc.Ledger.Reconcile(context.Background(), profileID)
	require.NoError(t, err)
	assert.True(t, report.Consistent())
	return report.Cached
}

func date(year int, month time.Month, day int) civil.Date {
	return civil.Date{Year: year, Month: month, Day: day}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// -- Job tests --

func TestRun_OnceIsRetired(t *testing.T) {
	env := newTestEnv(t)
	id := env.profile(t)
	today := date(2025, time.June, 1)
	scheduleID := env.schedule(t, id, "7.50", today, recurrence.Once)

	result, err := env.job(t, Options{}).Run(context.Background(), today)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Fired)
	assert.Equal(t, 1, result.Retired)
	assert.True(t, env.balance(t, id).Equal(dec("7.50")))

	_, err = env.storage.Schedules.FindByID(context.Background(), scheduleID)
	assert.Error(t, err)
	assert.Len(t, env.recorder.OfType(events.ScheduleFired), 1)
}

func TestRun_WeeklyAdvancesAndDoesNotRefire(t *testing.T) {
	env := newTestEnv(t)
	id := env.profile(t)
	today := date(2025, time.June, 2)
	scheduleID := env.schedule(t, id, "5", today, recurrence.Weekly)
	job := env.job(t, Options{})

	_, err := job.Run(context.Background(), today)
	require.NoError(t, err)
	result, err := job.Run(context.Background(), today)
	require.NoError(t, err)

	assert.Zero(t, result.Fired)
	assert.True(t, env.balance(t, id).Equal(dec("5")))

	s, err := env.storage.Schedules.FindByID(context.Background(), scheduleID)
	require.NoError(t, err)
	assert.Equal(t, date(2025, time.June, 9), s.StartDate)
}

func TestRun_MonthlyNormalizesOverflow(t *testing.T) {
	env := newTestEnv(t)
	id := env.profile(t)
	start := date(2025, time.January, 31)
	scheduleID := env.schedule(t, id, "10", start, recurrence.Monthly)

	_, err := env.job(t, Options{}).Run(context.Background(), start)
	require.NoError(t, err)

	s, err := env.storage.Schedules.FindByID(context.Background(), scheduleID)
	require.NoError(t, err)
	assert.Equal(t, date(2025, time.March, 3), s.StartDate)
}

func TestRun_OverdueWithoutCatchUpFiresOnce(t *testing.T) {
	env := newTestEnv(t)
	id := env.profile(t)
	today := date(2025, time.June, 10)
	scheduleID := env.schedule(t, id, "1", date(2025, time.June, 1), recurrence.Daily)

	result, err := env.job(t, Options{}).Run(context.Background(), today)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Applied)
	assert.True(t, env.balance(t, id).Equal(dec("1")))

	s, err := env.storage.Schedules.FindByID(context.Background(), scheduleID)
	require.NoError(t, err)
	assert.Equal(t, date(2025, time.June, 2), s.StartDate)
}

func TestRun_CatchUpBackfills(t *testing.T) {
	env := newTestEnv(t)
	id := env.profile(t)
	today := date(2025, time.June, 22)
	scheduleID := env.schedule(t, id, "5", date(2025, time.June, 1), recurrence.Weekly)

	result, err := env.job(t, Options{CatchUp: true}).Run(context.Background(), today)
	require.NoError(t, err)

	// June 1, 8, 15 and 22
	assert.Equal(t, 4, result.Applied)
	assert.True(t, env.balance(t, id).Equal(dec("20")))

	s, err := env.storage.Schedules.FindByID(context.Background(), scheduleID)
	require.NoError(t, err)
	assert.Equal(t, date(2025, time.June, 29), s.StartDate)
}

func TestRun_FutureScheduleIsIgnored(t *testing.T) {
	env := newTestEnv(t)
	id := env.profile(t)
	today := date(2025, time.June, 1)
	env.schedule(t, id, "5", today.AddDays(1), recurrence.Once)

	result, err := env.job(t, Options{}).Run(context.Background(), today)
	require.NoError(t, err)

	assert.Zero(t, result.Fired)
	assert.True(t, env.balance(t, id).IsZero())
}

func TestRun_PartialFailureIsIsolated(t *testing.T) {
	env := newTestEnv(t)
	today := date(2025, time.June, 1)
	good := env.profile(t)
	bad := env.profile(t)
	env.schedule(t, good, "3", today, recurrence.Once)
	badSchedule := env.schedule(t, bad, "4", today, recurrence.Weekly)

	env.store.SetFault(func(op string, id uuid.UUID) error {
		if op == memory.OpScheduleUpdate && id == badSchedule {
			return errors.New("write failed")
		}
		return nil
	})

	result, err := env.job(t, Options{}).Run(context.Background(), today)
	require.NoError(t, err)
	env.store.SetFault(nil)

	assert.Equal(t, 1, result.Fired)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, badSchedule, result.Failed[0].ScheduleID)

	assert.True(t, env.balance(t, good).Equal(dec("3")))
	assert.True(t, env.balance(t, bad).IsZero())

	history, err := env.svc.Transaction.ListHistory(context.Background(), bad)
	require.NoError(t, err)
	assert.Empty(t, history)

	s, err := env.storage.Schedules.FindByID(context.Background(), badSchedule)
	require.NoError(t, err)
	assert.Equal(t, today, s.StartDate)
}

// -- Runner tests --

type MockReconciler struct {
	mock.Mock
}

func (m *MockReconciler) ReconcileAll(ctx context.Context) ([]service.ReconcileReport, error) {
	args := m.Called(ctx)
	reports, _ := args.Get(0).([]service.ReconcileReport)
	return reports, args.Error(1)
}

func TestRunner_RunsOncePerDay(t *testing.T) {
	env := newTestEnv(t)
	id := env.profile(t)
	env.schedule(t, id, "2", date(2025, time.June, 1), recurrence.Daily)

	reconciler := &MockReconciler{}
	reconciler.On("ReconcileAll", mock.Anything).Return([]service.ReconcileReport{}, nil)

	logger, _ := test.NewNullLogger()
	runner := NewRunner(env.job(t, Options{}), reconciler, RunnerOptions{ReconcileAfterRun: true}, logger)

	now := time.Date(2025, time.June, 1, 8, 0, 0, 0, time.UTC)
	runner.now = func() time.Time { return now }

	ran, err := runner.RunOnce(context.Background())
	require.NoError(t, err)
	assert.True(t, ran)

	now = now.Add(3 * time.Hour)
	ran, err = runner.RunOnce(context.Background())
	require.NoError(t, err)
	assert.False(t, ran)
	assert.True(t, env.balance(t, id).Equal(dec("2")))

	now = now.Add(24 * time.Hour)
	ran, err = runner.RunOnce(context.Background())
	require.NoError(t, err)
	assert.True(t, ran)
	assert.True(t, env.balance(t, id).Equal(dec("4")))

	reconciler.AssertNumberOfCalls(t, "ReconcileAll", 2)
}

func TestRunner_UsesLocationForToday(t *testing.T) {
	env := newTestEnv(t)
	id := env.profile(t)
	env.schedule(t, id, "2", date(2025, time.June, 2), recurrence.Once)

	loc := time.FixedZone("UTC+10", 10*60*60)
	logger, _ := test.NewNullLogger()
	runner := NewRunner(env.job(t, Options{}), nil, RunnerOptions{Location: loc}, logger)
	// 20:00 UTC on June 1 is already June 2 at UTC+10.
	runner.now = func() time.Time { return time.Date(2025, time.June, 1, 20, 0, 0, 0, time.UTC) }

	_, err := runner.RunOnce(context.Background())
	require.NoError(t, err)
	assert.True(t, env.balance(t, id).Equal(dec("2")))
}

func TestRunner_StopsWithContext(t *testing.T) {
	env := newTestEnv(t)
	logger, _ := test.NewNullLogger()
	runner := NewRunner(env.job(t, Options{}), nil, RunnerOptions{Interval: time.Millisecond}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("runner did not stop")
	}
}
