// Package scheduler turns due scheduled transactions into ledger entries.
package scheduler

import (
	"context"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/gofrs/uuid/v5"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/allowance-server/internal/events"
	"github.com/carson-networks/allowance-server/internal/operator/actions"
	"github.com/carson-networks/allowance-server/internal/service"
	"github.com/carson-networks/allowance-server/internal/storage/schedule"
)

const DefaultMaxCatchUp = 366

type Options struct {
	// CatchUp fires every missed occurrence of an overdue recurring
	// schedule instead of only one per run.
	CatchUp    bool
	MaxCatchUp int
}

// Failure is a schedule that could not be materialized. Nothing it would
// have written was committed.
type Failure struct {
	ScheduleID uuid.UUID
	Err        error
}

type Result struct {
	Date civil.Date
	// Fired counts schedules that produced at least one entry.
	Fired int
	// Applied counts ledger entries created.
	Applied int
	Retired int
	Skipped int
	Failed  []Failure
}

type Job struct {
	schedules schedule.IReader
	operator  service.Processor
	publisher events.Publisher
	log       logrus.FieldLogger
	opts      Options
}

func NewJob(schedules schedule.IReader, operator service.Processor, publisher events.Publisher, log logrus.FieldLogger, opts Options) *Job {
	if opts.MaxCatchUp < 1 {
		opts.MaxCatchUp = DefaultMaxCatchUp
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Job{
		schedules: schedules,
		operator:  operator,
		publisher: publisher,
		log:       log,
		opts:      opts,
	}
}

// Run fires every schedule due on or before today. Each schedule commits
// or fails on its own; a failure is recorded in the result and the run
// moves on. The error is only set when the due list cannot be read.
func (j *Job) Run(ctx context.Context, today civil.Date) (Result, error) {
	result := Result{Date: today}

	due, err := j.schedules.ListDue(ctx, today)
	if err != nil {
		return result, fmt.Errorf("scheduler.Run: list due: %w", err)
	}

	for _, s := range due {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		fire := &actions.FireSchedule{
			ScheduleID:     s.ID,
			Today:          today,
			CatchUp:        j.opts.CatchUp,
			MaxOccurrences: j.opts.MaxCatchUp,
		}
		if err := j.operator.Process(ctx, fire); err != nil {
			j.log.WithError(err).WithField("scheduleID", s.ID).Error("Scheduler.Run.Failed")
			result.Failed = append(result.Failed, Failure{ScheduleID: s.ID, Err: err})
			continue
		}

		if fire.Skipped {
			result.Skipped++
			continue
		}

		result.Fired++
		result.Applied += len(fire.Transactions)
		if fire.Retired {
			result.Retired++
		}
		j.publishFired(ctx, fire)
	}

	j.log.WithFields(logrus.Fields{
		"date":    today.String(),
		"due":     len(due),
		"fired":   result.Fired,
		"applied": result.Applied,
		"failed":  len(result.Failed),
	}).Info("Scheduler.Run.Complete")

	return result, nil
}

func (j *Job) publishFired(ctx context.Context, fire *actions.FireSchedule) {
	for _, tx := range fire.Transactions {
		events.PublishBestEffort(context.WithoutCancel(ctx), j.publisher, j.log,
			events.New(events.ScheduleFired, fire.ProfileID).
				WithSchedule(fire.ScheduleID).
				WithTransaction(tx.ID, tx.Adjustment).
				WithBalance(fire.NewBalance))
	}
}
