// Package recurrence defines how often a scheduled transaction repeats and
// how its due date moves forward after it fires.
package recurrence

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// Frequency is the repetition period of a scheduled transaction.
type Frequency string

const (
	Once    Frequency = "once"
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
)

// ErrNoSuccessor is returned by Advance for frequencies that never repeat.
var ErrNoSuccessor = errors.New("recurrence: frequency has no next occurrence")

// Stepper moves a due date forward by exactly one period.
type Stepper interface {
	Next(d civil.Date) civil.Date
}

// DailyStepper advances by one calendar day.
type DailyStepper struct{}

func (DailyStepper) Next(d civil.Date) civil.Date {
	return d.AddDays(1)
}

// WeeklyStepper advances by seven calendar days.
type WeeklyStepper struct{}

func (WeeklyStepper) Next(d civil.Date) civil.Date {
	return d.AddDays(7)
}

// MonthlyStepper keeps the day of month and moves to the next month. Days
// that do not exist in the target month roll over into the month after it,
// so Jan 31 becomes Mar 3 (Mar 2 in a leap year).
type MonthlyStepper struct{}

func (MonthlyStepper) Next(d civil.Date) civil.Date {
	return civil.DateOf(d.In(time.UTC).AddDate(0, 1, 0))
}

var steppers = map[Frequency]Stepper{
	Daily:   DailyStepper{},
	Weekly:  WeeklyStepper{},
	Monthly: MonthlyStepper{},
}

// Frequencies lists every accepted frequency.
func Frequencies() []Frequency {
	return []Frequency{Once, Daily, Weekly, Monthly}
}

// ParseFrequency accepts a frequency name in any letter case.
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(strings.ToLower(strings.TrimSpace(s)))
	if !f.Valid() {
		return "", fmt.Errorf("recurrence: unknown frequency %q", s)
	}
	return f, nil
}

func (f Frequency) Valid() bool {
	if f == Once {
		return true
	}
	_, ok := steppers[f]
	return ok
}

// Recurring reports whether a schedule with this frequency survives firing.
func (f Frequency) Recurring() bool {
	_, ok := steppers[f]
	return ok
}

func (f Frequency) String() string {
	return string(f)
}

// Advance returns the occurrence that follows d.
func Advance(d civil.Date, f Frequency) (civil.Date, error) {
	stepper, ok := steppers[f]
	if !ok {
		if f == Once {
			return civil.Date{}, ErrNoSuccessor
		}
		return civil.Date{}, fmt.Errorf("recurrence: unknown frequency %q", string(f))
	}
	return stepper.Next(d), nil
}
