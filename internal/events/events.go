// Package events publishes ledger changes to a message broker after they
// have been committed.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

// Type names an event on the wire.
type Type string

const (
	TransactionApplied  Type = "transaction.applied"
	TransactionAmended  Type = "transaction.amended"
	TransactionReversed Type = "transaction.reversed"
	ScheduleFired       Type = "schedule.fired"
	ProfileDeleted      Type = "profile.deleted"
	IntegrityWarning    Type = "integrity.warning"
)

// Event describes one committed change. Money values are decimal strings.
type Event struct {
	Type          Type       `json:"type"`
	ProfileID     uuid.UUID  `json:"profileId"`
	TransactionID *uuid.UUID `json:"transactionId,omitempty"`
	ScheduleID    *uuid.UUID `json:"scheduleId,omitempty"`
	Adjustment    string     `json:"adjustment,omitempty"`
	Balance       string     `json:"balance,omitempty"`
	Ledger        string     `json:"ledger,omitempty"`
	Timestamp     time.Time  `json:"timestamp"`
}

func New(eventType Type, profileID uuid.UUID) Event {
	return Event{
		Type:      eventType,
		ProfileID: profileID,
		Timestamp: time.Now().UTC(),
	}
}

func (e Event) WithTransaction(id uuid.UUID, adjustment decimal.Decimal) Event {
	e.TransactionID = &id
	e.Adjustment = adjustment.String()
	return e
}

func (e Event) WithSchedule(id uuid.UUID) Event {
	e.ScheduleID = &id
	return e
}

func (e Event) WithBalance(balance decimal.Decimal) Event {
	e.Balance = balance.String()
	return e
}

func (e Event) WithLedger(ledger decimal.Decimal) Event {
	e.Ledger = ledger.String()
	return e
}

func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func FromJSON(data []byte) (Event, error) {
	var e Event
	err := json.Unmarshal(data, &e)
	return e, err
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// OfType returns the recorded events with the given type.
func (r *Recorder) OfType(eventType Type) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}
