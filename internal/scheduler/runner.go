package scheduler

import (
	"context"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/allowance-server/internal/service"
)

// Reconciler checks every cached balance against the ledger.
type Reconciler interface {
	ReconcileAll(ctx context.Context) ([]service.ReconcileReport, error)
}

type RunnerOptions struct {
	Interval          time.Duration
	Location          *time.Location
	ReconcileAfterRun bool
}

// Runner wakes up on an interval and runs the job at most once per
// calendar day in its location.
type Runner struct {
	job     *Job
	ledger  Reconciler
	opts    RunnerOptions
	log     logrus.FieldLogger
	now     func() time.Time
	mu      sync.Mutex
	lastRun civil.Date
}

func NewRunner(job *Job, ledger Reconciler, opts RunnerOptions, log logrus.FieldLogger) *Runner {
	if opts.Interval <= 0 {
		opts.Interval = time.Hour
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Runner{
		job:    job,
		ledger: ledger,
		opts:   opts,
		log:    log,
		now:    time.Now,
	}
}

// Run ticks until ctx is done. It always returns nil.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.opts.Interval)
	defer ticker.Stop()

	r.log.WithField("interval", r.opts.Interval.String()).
		WithField("timezone", r.opts.Location.String()).
		Info("Scheduler.Runner.Start")

	r.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			r.log.Info("Scheduler.Runner.Stop")
			return nil
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

func (r *Runner) tick(ctx context.Context) {
	if _, err := r.RunOnce(ctx); err != nil {
		r.log.WithError(err).Error("Scheduler.Runner.Error")
	}
}

// RunOnce runs the job unless it already ran today. ran reports whether
// the job was invoked.
func (r *Runner) RunOnce(ctx context.Context) (ran bool, err error) {
	today := civil.DateOf(r.now().In(r.opts.Location))

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lastRun == today {
		return false, nil
	}

	if _, err := r.job.Run(ctx, today); err != nil {
		return true, err
	}
	r.lastRun = today

	if r.opts.ReconcileAfterRun && r.ledger != nil {
		if _, err := r.ledger.ReconcileAll(ctx); err != nil {
			return true, err
		}
	}
	return true, nil
}
