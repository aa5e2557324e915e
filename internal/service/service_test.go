package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aarondl/opt/omit"
	"github.com/aarondl/opt/omitnull"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/allowance-server/internal/events"
	"github.com/carson-networks/allowance-server/internal/operator"
	"github.com/carson-networks/allowance-server/internal/operator/actions"
	"github.com/carson-networks/allowance-server/internal/storage"
	"github.com/carson-networks/allowance-server/internal/storage/memory"
)

type testEnv struct {
	svc      *Service
	store    *memory.Store
	storage  *storage.Storage
	recorder *events.Recorder
	hook     *test.Hook
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	store := memory.NewStore()
	s := store.Storage()
	delegator := operator.NewOperatorDelegator(s, 4, logger)
	delegator.Start()
	t.Cleanup(delegator.Stop)

	recorder := &events.Recorder{}
	svc := NewService(Deps{
		Storage:   s,
		Operator:  delegator,
		Publisher: recorder,
		Logger:    logger,
	})
	return &testEnv{svc: svc, store: store, storage: s, recorder: recorder, hook: hook}
}

func (e *testEnv) profile(t *testing.T, opening string) Profile {
	t.Helper()
	p, err := e.svc.Profile.CreateProfile(context.Background(), ProfileCreate{
		Name:           "Ada",
		OpeningBalance: dec(opening),
	})
	require.NoError(t, err)
	return p
}

// assertLedgerMatches checks that the cached balance equals the ledger sum.
func (e *testEnv) assertLedgerMatches(t *testing.T, profileID uuid.UUID, want string) {
	t.Helper()
	report, err := e.svc.Ledger.Reconcile(context.Background(), profileID)
	require.NoError(t, err)
	assert.True(t, report.Consistent(), "cached %s ledger %s", report.Cached, report.Ledger)
	assert.True(t, report.Cached.Equal(dec(want)), "balance %s, want %s", report.Cached, want)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type blockingProcessor struct{}

func (blockingProcessor) Process(ctx context.Context, _ actions.IAction) error {
	<-ctx.Done()
	return ctx.Err()
}

// -- Profile tests --

func TestCreateProfile_OpeningBalance(t *testing.T) {
	env := newTestEnv(t)

	p := env.profile(t, "12.50")

	assert.Equal(t, "Ada", p.Name)
	assert.True(t, p.Balance.Equal(dec("12.50")))
	env.assertLedgerMatches(t, p.ID, "12.50")
}

func TestCreateProfile_RequiresName(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Profile.CreateProfile(context.Background(), ProfileCreate{Name: "  "})

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "name", validationErr.Field)
}

func TestGetProfile_NotFound(t *testing.T) {
	env := newTestEnv(t)
	id := uuid.Must(uuid.NewV4())

	_, err := env.svc.Profile.GetProfile(context.Background(), id)

	var notFoundErr *NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
	assert.Equal(t, "profile", notFoundErr.Entity)
	assert.Equal(t, id, notFoundErr.ID)
}

func TestUpdateProfile_BalanceEditIsRecorded(t *testing.T) {
	env := newTestEnv(t)
	p := env.profile(t, "20")

	updated, err := env.svc.Profile.UpdateProfile(context.Background(), p.ID, ProfileUpdate{
		Name:     omit.From("Grace"),
		ImageURL: omitnull.From("https://example.com/g.png"),
		Balance:  omit.From(dec("35")),
	})
	require.NoError(t, err)

	assert.Equal(t, "Grace", updated.Name)
	require.NotNil(t, updated.ImageURL)
	assert.Equal(t, "https://example.com/g.png", *updated.ImageURL)
	env.assertLedgerMatches(t, p.ID, "35")

	history, err := env.svc.Transaction.ListHistory(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, actions.CorrectionNote, history[0].Note)
	assert.True(t, history[0].Adjustment.Equal(dec("15")))
}

func TestUpdateProfile_ClearImage(t *testing.T) {
	env := newTestEnv(t)
	url := "https://example.com/a.png"
	p, err := env.svc.Profile.CreateProfile(context.Background(), ProfileCreate{Name: "Ada", ImageURL: &url})
	require.NoError(t, err)

	updated, err := env.svc.Profile.UpdateProfile(context.Background(), p.ID, ProfileUpdate{
		ImageURL: omitnull.FromPtr[string](nil),
	})
	require.NoError(t, err)
	assert.Nil(t, updated.ImageURL)
}

func TestDeleteProfile_Cascades(t *testing.T) {
	env := newTestEnv(t)
	p := env.profile(t, "5")
	_, err := env.svc.Transaction.ApplyTransaction(context.Background(), p.ID, DirectionAdd, dec("1"), "")
	require.NoError(t, err)

	require.NoError(t, env.svc.Profile.DeleteProfile(context.Background(), p.ID))

	_, err = env.svc.Transaction.ListHistory(context.Background(), p.ID)
	var notFoundErr *NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
	assert.Zero(t, env.store.Links())
	assert.Len(t, env.recorder.OfType(events.ProfileDeleted), 1)
}

// -- ApplyTransaction tests --

func TestApplyTransaction_AddAndWithdraw(t *testing.T) {
	env := newTestEnv(t)
	p := env.profile(t, "10")

	result, err := env.svc.Transaction.ApplyTransaction(context.Background(), p.ID, DirectionAdd, dec("5"), "chores")
	require.NoError(t, err)
	assert.True(t, result.NewBalance.Equal(dec("15")))
	assert.True(t, result.Transaction.Adjustment.Equal(dec("5")))

	result, err = env.svc.Transaction.ApplyTransaction(context.Background(), p.ID, DirectionWithdraw, dec("3.25"), "candy")
	require.NoError(t, err)
	assert.True(t, result.NewBalance.Equal(dec("11.75")))
	assert.True(t, result.Transaction.Adjustment.Equal(dec("-3.25")))

	env.assertLedgerMatches(t, p.ID, "11.75")
	assert.Len(t, env.recorder.OfType(events.TransactionApplied), 2)
}

func TestApplyTransaction_NormalizesDirection(t *testing.T) {
	env := newTestEnv(t)
	p := env.profile(t, "0")

	for _, direction := range []Direction{"Withdraw", " withdraw ", "WITHDRAW"} {
		result, err := env.svc.Transaction.ApplyTransaction(context.Background(), p.ID, direction, dec("5"), "")
		require.NoError(t, err, "direction %q", direction)
		assert.True(t, result.Transaction.Adjustment.Equal(dec("-5")), "direction %q booked %s", direction, result.Transaction.Adjustment)
	}

	result, err := env.svc.Transaction.ApplyTransaction(context.Background(), p.ID, " Add", dec("1"), "")
	require.NoError(t, err)
	assert.True(t, result.Transaction.Adjustment.Equal(dec("1")))

	env.assertLedgerMatches(t, p.ID, "-14")
}

func TestApplyTransaction_Validation(t *testing.T) {
	env := newTestEnv(t)
	p := env.profile(t, "0")

	tests := []struct {
		name      string
		direction Direction
		amount    string
		field     string
	}{
		{name: "zero", direction: DirectionAdd, amount: "0", field: "amount"},
		{name: "negative", direction: DirectionWithdraw, amount: "-1", field: "amount"},
		{name: "bad direction", direction: "sideways", amount: "1", field: "direction"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Transaction.ApplyTransaction(context.Background(), p.ID, tt.direction, dec(tt.amount), "")

			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.field, validationErr.Field)
		})
	}

	env.assertLedgerMatches(t, p.ID, "0")
}

func TestApplyTransaction_UnknownProfile(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Transaction.ApplyTransaction(context.Background(), uuid.Must(uuid.NewV4()), DirectionAdd, dec("1"), "")

	var notFoundErr *NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
	assert.Empty(t, env.recorder.Events())
}

func TestApplyTransaction_BalanceFailureRollsBack(t *testing.T) {
	env := newTestEnv(t)
	p := env.profile(t, "10")
	env.store.SetFault(memory.FailOp(memory.OpProfileAdjustBalance, errors.New("disk full")))

	_, err := env.svc.Transaction.ApplyTransaction(context.Background(), p.ID, DirectionAdd, dec("5"), "lost")

	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.False(t, storeErr.Timeout())

	env.store.SetFault(nil)
	history, err := env.svc.Transaction.ListHistory(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
	env.assertLedgerMatches(t, p.ID, "10")
}

func TestApplyTransaction_ConcurrentWritersKeepLedger(t *testing.T) {
	env := newTestEnv(t)
	p := env.profile(t, "0")

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			direction := DirectionAdd
			if i%4 == 0 {
				direction = DirectionWithdraw
			}
			_, err := env.svc.Transaction.ApplyTransaction(context.Background(), p.ID, direction, dec("1.10"), "")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	// 30 credits and 10 debits of 1.10
	env.assertLedgerMatches(t, p.ID, "22")
}

func TestApplyTransaction_Timeout(t *testing.T) {
	svc := NewService(Deps{
		Storage:        memory.NewStorage(),
		Operator:       blockingProcessor{},
		RequestTimeout: 10 * time.Millisecond,
	})

	_, err := svc.Transaction.ApplyTransaction(context.Background(), uuid.Must(uuid.NewV4()), DirectionAdd, dec("1"), "")

	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.True(t, storeErr.Timeout())
}

// -- AmendTransaction tests --

func TestAmendTransaction_MovesBalanceByDelta(t *testing.T) {
	env := newTestEnv(t)
	p := env.profile(t, "0")
	applied, err := env.svc.Transaction.ApplyTransaction(context.Background(), p.ID, DirectionAdd, dec("50"), "x")
	require.NoError(t, err)

	balance, err := env.svc.Transaction.AmendTransaction(context.Background(), applied.Transaction.ID, "y", dec("80"))
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec("80")))

	history, err := env.svc.Transaction.ListHistory(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "y", history[0].Note)
	env.assertLedgerMatches(t, p.ID, "80")

	amended := env.recorder.OfType(events.TransactionAmended)
	require.Len(t, amended, 1)
	assert.Equal(t, "30", amended[0].Adjustment)
}

func TestAmendTransaction_Errors(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Transaction.AmendTransaction(context.Background(), uuid.Must(uuid.NewV4()), "", dec("0"))
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)

	_, err = env.svc.Transaction.AmendTransaction(context.Background(), uuid.Must(uuid.NewV4()), "", dec("1"))
	var notFoundErr *NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
	assert.Equal(t, "transaction", notFoundErr.Entity)
}

// -- DeleteTransaction tests --

func TestDeleteTransaction_Reverses(t *testing.T) {
	env := newTestEnv(t)
	p := env.profile(t, "100")
	applied, err := env.svc.Transaction.ApplyTransaction(context.Background(), p.ID, DirectionWithdraw, dec("20"), "")
	require.NoError(t, err)

	balance, err := env.svc.Transaction.DeleteTransaction(context.Background(), applied.Transaction.ID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec("100")))
	env.assertLedgerMatches(t, p.ID, "100")

	_, err = env.svc.Transaction.DeleteTransaction(context.Background(), applied.Transaction.ID)
	var notFoundErr *NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
}

// -- ListHistory tests --

func TestListHistory_NewestFirst(t *testing.T) {
	env := newTestEnv(t)
	p := env.profile(t, "0")
	for _, note := range []string{"first", "second", "third"} {
		_, err := env.svc.Transaction.ApplyTransaction(context.Background(), p.ID, DirectionAdd, dec("1"), note)
		require.NoError(t, err)
	}

	history, err := env.svc.Transaction.ListHistory(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "third", history[0].Note)
	assert.Equal(t, "second", history[1].Note)
	assert.Equal(t, "first", history[2].Note)
}

// -- Reconcile tests --

func TestReconcile_ReportsDriftWithoutRepair(t *testing.T) {
	env := newTestEnv(t)
	p := env.profile(t, "10")

	w, err := env.storage.Write(context.Background())
	require.NoError(t, err)
	_, err = w.Profiles.AdjustBalance(context.Background(), p.ID, dec("2.5"))
	require.NoError(t, err)
	require.NoError(t, w.Commit())

	report, err := env.svc.Ledger.Reconcile(context.Background(), p.ID)
	require.NoError(t, err)

	require.NotNil(t, report.Warning)
	assert.True(t, report.Drift.Equal(dec("2.5")))
	assert.True(t, report.Warning.Drift().Equal(dec("2.5")))
	assert.EqualValues(t, 1, report.Entries)
	assert.Len(t, env.recorder.OfType(events.IntegrityWarning), 1)
	assert.Equal(t, logrus.WarnLevel, env.hook.LastEntry().Level)

	got, err := env.svc.Profile.GetProfile(context.Background(), p.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(dec("12.5")))
}

func TestLedger_MixedOperationsStayReconciled(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.profile(t, "10")

	var entries []uuid.UUID
	apply := func(direction Direction, amount string) func() error {
		return func() error {
			result, err := env.svc.Transaction.ApplyTransaction(ctx, p.ID, direction, dec(amount), "step")
			if err == nil {
				entries = append(entries, result.Transaction.ID)
			}
			return err
		}
	}
	amend := func(i int, amount string) func() error {
		return func() error {
			_, err := env.svc.Transaction.AmendTransaction(ctx, entries[i], "amended", dec(amount))
			return err
		}
	}
	reverse := func(i int) func() error {
		return func() error {
			_, err := env.svc.Transaction.DeleteTransaction(ctx, entries[i])
			return err
		}
	}
	correct := func(balance string) func() error {
		return func() error {
			_, err := env.svc.Profile.UpdateProfile(ctx, p.ID, ProfileUpdate{Balance: omit.From(dec(balance))})
			return err
		}
	}

	steps := []struct {
		name    string
		run     func() error
		balance string
	}{
		{name: "add", run: apply(DirectionAdd, "5"), balance: "15"},
		{name: "withdraw", run: apply(DirectionWithdraw, "2.25"), balance: "12.75"},
		{name: "amend add", run: amend(0, "7"), balance: "14.75"},
		{name: "correction", run: correct("20"), balance: "20"},
		{name: "add again", run: apply(DirectionAdd, "0.50"), balance: "20.50"},
		{name: "amend withdraw to credit", run: amend(1, "1"), balance: "23.75"},
		{name: "reverse first", run: reverse(0), balance: "16.75"},
		{name: "correction down", run: correct("3"), balance: "3"},
		{name: "reverse last", run: reverse(2), balance: "2.50"},
		{name: "overdraw", run: apply(DirectionWithdraw, "4"), balance: "-1.50"},
	}

	for _, step := range steps {
		require.NoError(t, step.run(), step.name)
		env.assertLedgerMatches(t, p.ID, step.balance)
	}
}

type slowProcessor struct {
	next  Processor
	delay time.Duration
}

func (p slowProcessor) Process(ctx context.Context, action actions.IAction) error {
	select {
	case <-time.After(p.delay):
	case <-ctx.Done():
		return ctx.Err()
	}
	return p.next.Process(ctx, action)
}

func TestReconcileAll_TimeoutIsPerProfile(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 4; i++ {
		env.profile(t, "1")
	}

	logger, _ := test.NewNullLogger()
	delegator := operator.NewOperatorDelegator(env.storage, 1, logger)
	delegator.Start()
	t.Cleanup(delegator.Stop)

	svc := NewService(Deps{
		Storage:        env.storage,
		Operator:       slowProcessor{next: delegator, delay: 40 * time.Millisecond},
		Publisher:      events.NopPublisher{},
		Logger:         logger,
		RequestTimeout: 100 * time.Millisecond,
	})

	reports, err := svc.Ledger.ReconcileAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, reports, 4)
}

func TestReconcileAll(t *testing.T) {
	env := newTestEnv(t)
	env.profile(t, "1")
	env.profile(t, "2")

	reports, err := env.svc.Ledger.ReconcileAll(context.Background())
	require.NoError(t, err)
	require.Len(t, reports, 2)
	for _, r := range reports {
		assert.True(t, r.Consistent())
	}
}
