// Package memory is an in-process storage backend. Each write transaction
// holds the store's lock and works on a private copy of the tables that
// replaces the committed copy on Commit.
package memory

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/allowance-server/internal/storage"
	"github.com/carson-networks/allowance-server/internal/storage/profile"
	"github.com/carson-networks/allowance-server/internal/storage/schedule"
	"github.com/carson-networks/allowance-server/internal/storage/transaction"
)

// Operation names passed to a FaultFunc.
const (
	OpProfileInsert        = "profiles.insert"
	OpProfileUpdate        = "profiles.update"
	OpProfileAdjustBalance = "profiles.adjust_balance"
	OpProfileDelete        = "profiles.delete"
	OpTransactionInsert    = "transactions.insert"
	OpTransactionUpdate    = "transactions.update"
	OpTransactionDelete    = "transactions.delete"
	OpScheduleInsert       = "schedules.insert"
	OpScheduleUpdate       = "schedules.update"
	OpScheduleDelete       = "schedules.delete"
)

// ErrForeignKey mirrors the foreign key violation Postgres would raise.
var ErrForeignKey = errors.New("memory: referenced profile does not exist")

// FaultFunc lets tests make a write fail. id is the row being written, or
// the owning profile for inserts.
type FaultFunc func(op string, id uuid.UUID) error

// FailOp returns a FaultFunc that fails every call to op with err.
func FailOp(op string, err error) FaultFunc {
	return func(got string, _ uuid.UUID) error {
		if got == op {
			return err
		}
		return nil
	}
}

type state struct {
	profiles     map[uuid.UUID]profile.Profile
	transactions map[uuid.UUID]transaction.Transaction
	links        map[uuid.UUID]uuid.UUID
	schedules    map[uuid.UUID]schedule.Schedule
	sequence     map[uuid.UUID]int64
	seq          int64
}

func newState() *state {
	return &state{
		profiles:     make(map[uuid.UUID]profile.Profile),
		transactions: make(map[uuid.UUID]transaction.Transaction),
		links:        make(map[uuid.UUID]uuid.UUID),
		schedules:    make(map[uuid.UUID]schedule.Schedule),
		sequence:     make(map[uuid.UUID]int64),
	}
}

func (s *state) clone() *state {
	c := &state{
		profiles:     make(map[uuid.UUID]profile.Profile, len(s.profiles)),
		transactions: make(map[uuid.UUID]transaction.Transaction, len(s.transactions)),
		links:        make(map[uuid.UUID]uuid.UUID, len(s.links)),
		schedules:    make(map[uuid.UUID]schedule.Schedule, len(s.schedules)),
		sequence:     make(map[uuid.UUID]int64, len(s.sequence)),
		seq:          s.seq,
	}
	for k, v := range s.profiles {
		c.profiles[k] = v
	}
	for k, v := range s.transactions {
		c.transactions[k] = v
	}
	for k, v := range s.links {
		c.links[k] = v
	}
	for k, v := range s.schedules {
		c.schedules[k] = v
	}
	for k, v := range s.sequence {
		c.sequence[k] = v
	}
	return c
}

func (s *state) next(id uuid.UUID) {
	s.seq++
	s.sequence[id] = s.seq
}

type Store struct {
	mu    sync.RWMutex
	state *state

	hooksMu sync.Mutex
	now     func() time.Time
	fault   FaultFunc
}

func NewStore() *Store {
	return &Store{
		state: newState(),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// NewStorage returns a storage.Storage over a fresh, empty store.
func NewStorage() *storage.Storage {
	return NewStore().Storage()
}

// SetClock replaces the source of created_at timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.hooksMu.Lock()
	defer s.hooksMu.Unlock()
	s.now = now
}

// SetFault installs fn as the write fault injector. A nil fn clears it.
func (s *Store) SetFault(fn FaultFunc) {
	s.hooksMu.Lock()
	defer s.hooksMu.Unlock()
	s.fault = fn
}

func (s *Store) clock() time.Time {
	s.hooksMu.Lock()
	defer s.hooksMu.Unlock()
	return s.now()
}

func (s *Store) check(op string, id uuid.UUID) error {
	s.hooksMu.Lock()
	fn := s.fault
	s.hooksMu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(op, id)
}

// Storage exposes the store through the storage facade.
func (s *Store) Storage() *storage.Storage {
	committed := &committedSource{store: s}
	reader := &storage.Reader{
		Profiles:     &profiles{src: committed, store: s},
		Transactions: &transactions{src: committed, store: s},
		Schedules:    &schedules{src: committed, store: s},
	}
	return storage.New(reader, s.begin, nil)
}

func (s *Store) begin(ctx context.Context) (*storage.Writer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	t := &txn{store: s, working: s.state.clone()}
	return storage.NewTxWriter(t,
		&profiles{src: t, store: s},
		&transactions{src: t, store: s},
		&schedules{src: t, store: s},
	), nil
}

type source interface {
	view(fn func(st *state) error) error
}

type committedSource struct {
	store *Store
}

func (c *committedSource) view(fn func(st *state) error) error {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	return fn(c.store.state)
}

// txn owns the store's write lock from begin until Commit or Rollback.
type txn struct {
	store   *Store
	working *state
	done    bool
}

func (t *txn) view(fn func(st *state) error) error {
	if t.done {
		return sql.ErrTxDone
	}
	return fn(t.working)
}

func (t *txn) Commit(_ context.Context) error {
	if t.done {
		return sql.ErrTxDone
	}
	t.done = true
	t.store.state = t.working
	t.store.mu.Unlock()
	return nil
}

func (t *txn) Rollback(_ context.Context) error {
	if t.done {
		return sql.ErrTxDone
	}
	t.done = true
	t.store.mu.Unlock()
	return nil
}
