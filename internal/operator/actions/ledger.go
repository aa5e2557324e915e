package actions

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/allowance-server/internal/storage"
	"github.com/carson-networks/allowance-server/internal/storage/profile"
	"github.com/carson-networks/allowance-server/internal/storage/transaction"
)

// SnapshotLedger reads a profile's cached balance and its ledger total
// while holding the profile lock, so no write can land between the two
// reads. It changes nothing.
type SnapshotLedger struct {
	ProfileID uuid.UUID

	Profile *profile.Profile
	Total   transaction.LedgerTotal
}

func (s *SnapshotLedger) Perform(ctx context.Context, writer *storage.Writer) error {
	p, err := writer.Profiles.FindByIDForUpdate(ctx, s.ProfileID)
	if err != nil {
		return missing(err, "profile", s.ProfileID)
	}

	total, err := writer.Transactions.SumByProfile(ctx, s.ProfileID)
	if err != nil {
		return err
	}

	s.Profile = p
	s.Total = total
	return nil
}
