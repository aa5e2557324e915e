package actions

import (
	"context"

	"github.com/aarondl/opt/omit"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/allowance-server/internal/storage"
	"github.com/carson-networks/allowance-server/internal/storage/profile"
	"github.com/carson-networks/allowance-server/internal/storage/transaction"
)

const (
	OpeningBalanceNote = "Opening balance"
	CorrectionNote     = "Balance correction"
)

// CreateProfile inserts a profile at zero and records a non-zero opening
// balance as its first ledger entry.
type CreateProfile struct {
	Name           string
	ImageURL       *string
	OpeningBalance decimal.Decimal

	Profile *profile.Profile
}

func (c *CreateProfile) Perform(ctx context.Context, writer *storage.Writer) error {
	created, err := writer.Profiles.Insert(ctx, &profile.ProfileCreate{
		Name:     c.Name,
		ImageURL: c.ImageURL,
	})
	if err != nil {
		return err
	}

	if !c.OpeningBalance.IsZero() {
		_, balance, err := appendEntry(ctx, writer, created.ID, c.OpeningBalance, OpeningBalanceNote)
		if err != nil {
			return err
		}
		created.Balance = balance
	}

	c.Profile = created
	return nil
}

// UpdateProfile patches name and image. A requested balance is reached by
// appending a correction entry for the difference.
type UpdateProfile struct {
	ProfileID uuid.UUID
	Update    profile.ProfileUpdate
	Balance   omit.Val[decimal.Decimal]

	Correction decimal.Decimal
	Entry      *transaction.Transaction
	Profile    *profile.Profile
}

func (u *UpdateProfile) Perform(ctx context.Context, writer *storage.Writer) error {
	current, err := writer.Profiles.FindByIDForUpdate(ctx, u.ProfileID)
	if err != nil {
		return missing(err, "profile", u.ProfileID)
	}

	if !u.Update.IsEmpty() {
		if err := writer.Profiles.Update(ctx, u.ProfileID, &u.Update); err != nil {
			return missing(err, "profile", u.ProfileID)
		}
	}

	if target, ok := u.Balance.Get(); ok {
		u.Correction = target.Sub(current.Balance)
		if !u.Correction.IsZero() {
			if u.Entry, _, err = appendEntry(ctx, writer, u.ProfileID, u.Correction, CorrectionNote); err != nil {
				return err
			}
		}
	}

	u.Profile, err = writer.Profiles.FindByID(ctx, u.ProfileID)
	return err
}

// DeleteProfile removes a profile together with its schedules, ledger
// entries and join rows.
type DeleteProfile struct {
	ProfileID uuid.UUID

	DeletedTransactions int64
	DeletedSchedules    int64
}

func (d *DeleteProfile) Perform(ctx context.Context, writer *storage.Writer) error {
	if _, err := writer.Profiles.FindByIDForUpdate(ctx, d.ProfileID); err != nil {
		return missing(err, "profile", d.ProfileID)
	}

	var err error
	if d.DeletedSchedules, err = writer.Schedules.DeleteByProfile(ctx, d.ProfileID); err != nil {
		return err
	}
	if d.DeletedTransactions, err = writer.Transactions.DeleteByProfile(ctx, d.ProfileID); err != nil {
		return err
	}
	return missing(writer.Profiles.Delete(ctx, d.ProfileID), "profile", d.ProfileID)
}
