package service

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/allowance-server/internal/events"
	"github.com/carson-networks/allowance-server/internal/operator/actions"
	"github.com/carson-networks/allowance-server/internal/storage/profile"
)

// ReconcileReport compares a profile's cached balance with its ledger.
// Warning is nil when the two agree.
type ReconcileReport struct {
	ProfileID uuid.UUID
	Cached    decimal.Decimal
	Ledger    decimal.Decimal
	Drift     decimal.Decimal
	Entries   int64
	Warning   *IntegrityWarning
}

func (r ReconcileReport) Consistent() bool {
	return r.Warning == nil
}

// LedgerService checks the balance cache against the ledger. It reports
// drift and never repairs it.
type LedgerService struct {
	*core
}

func (s *LedgerService) Reconcile(ctx context.Context, profileID uuid.UUID) (ReconcileReport, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.reconcile(ctx, profileID)
}

// ReconcileAll reconciles every profile. Listing and each profile get
// their own request timeout. It stops at the first store error; drift
// alone is not an error.
func (s *LedgerService) ReconcileAll(ctx context.Context) ([]ReconcileReport, error) {
	profiles, err := s.listProfiles(ctx)
	if err != nil {
		return nil, translate("ReconcileAll", err)
	}

	reports := make([]ReconcileReport, 0, len(profiles))
	drifted := 0
	for _, p := range profiles {
		report, err := s.Reconcile(ctx, p.ID)
		if err != nil {
			return reports, err
		}
		if !report.Consistent() {
			drifted++
		}
		reports = append(reports, report)
	}

	s.log.WithField("profiles", len(reports)).
		WithField("drifted", drifted).
		Info("LedgerService.ReconcileAll.Complete")
	return reports, nil
}

func (s *LedgerService) listProfiles(ctx context.Context) ([]*profile.Profile, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.storage.Profiles.List(ctx)
}

func (s *LedgerService) reconcile(ctx context.Context, profileID uuid.UUID) (ReconcileReport, error) {
	action := &actions.SnapshotLedger{ProfileID: profileID}
	if err := s.process(ctx, "Reconcile", action); err != nil {
		return ReconcileReport{}, err
	}

	report := ReconcileReport{
		ProfileID: profileID,
		Cached:    action.Profile.Balance,
		Ledger:    action.Total.Sum,
		Drift:     action.Profile.Balance.Sub(action.Total.Sum),
		Entries:   action.Total.Entries,
	}
	if report.Drift.IsZero() {
		return report, nil
	}

	report.Warning = &IntegrityWarning{
		ProfileID: profileID,
		Cached:    report.Cached,
		Ledger:    report.Ledger,
	}
	s.log.WithError(report.Warning).
		WithField("profileID", profileID).
		WithField("drift", report.Drift.String()).
		Warn("LedgerService.Reconcile.Drift")
	s.publish(ctx, events.New(events.IntegrityWarning, profileID).
		WithBalance(report.Cached).
		WithLedger(report.Ledger))

	return report, nil
}
