package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/allowance-server/internal/events"
	"github.com/carson-networks/allowance-server/internal/operator/actions"
	"github.com/carson-networks/allowance-server/internal/storage"
)

const defaultRequestTimeout = 10 * time.Second

// Processor runs an action inside a storage transaction.
type Processor interface {
	Process(ctx context.Context, action actions.IAction) error
}

// Deps are the collaborators shared by every service.
type Deps struct {
	Storage        *storage.Storage
	Operator       Processor
	Publisher      events.Publisher
	Logger         logrus.FieldLogger
	RequestTimeout time.Duration
}

// Service holds all business logic services.
type Service struct {
	Profile     *ProfileService
	Transaction *TransactionService
	Schedule    *ScheduleService
	Ledger      *LedgerService
}

func NewService(d Deps) *Service {
	c := newCore(d)
	return &Service{
		Profile:     &ProfileService{core: c},
		Transaction: &TransactionService{core: c},
		Schedule:    &ScheduleService{core: c},
		Ledger:      &LedgerService{core: c},
	}
}

type core struct {
	storage   *storage.Storage
	operator  Processor
	publisher events.Publisher
	log       logrus.FieldLogger
	timeout   time.Duration
}

func newCore(d Deps) *core {
	c := &core{
		storage:   d.Storage,
		operator:  d.Operator,
		publisher: d.Publisher,
		log:       d.Logger,
		timeout:   d.RequestTimeout,
	}
	if c.publisher == nil {
		c.publisher = events.NopPublisher{}
	}
	if c.log == nil {
		c.log = logrus.StandardLogger()
	}
	if c.timeout <= 0 {
		c.timeout = defaultRequestTimeout
	}
	return c
}

func (c *core) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}

func (c *core) process(ctx context.Context, op string, action actions.IAction) error {
	return translate(op, c.operator.Process(ctx, action))
}

// publish emits event after a commit. The request may already be ending,
// so the broker call does not inherit its cancellation.
func (c *core) publish(ctx context.Context, event events.Event) {
	events.PublishBestEffort(context.WithoutCancel(ctx), c.publisher, c.log, event)
}

// readErr translates a read failure, reporting a missing row as entity id.
func readErr(op, entity string, id uuid.UUID, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return &NotFoundError{Entity: entity, ID: id}
	}
	return translate(op, err)
}
