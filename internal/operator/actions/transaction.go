package actions

import (
	"context"

	"github.com/aarondl/opt/omit"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/allowance-server/internal/storage"
	"github.com/carson-networks/allowance-server/internal/storage/transaction"
)

// ApplyTransaction appends a signed adjustment to a profile's ledger and
// moves its cached balance by the same amount.
type ApplyTransaction struct {
	ProfileID  uuid.UUID
	Adjustment decimal.Decimal
	Note       string

	Transaction *transaction.Transaction
	NewBalance  decimal.Decimal
}

func (a *ApplyTransaction) Perform(ctx context.Context, writer *storage.Writer) error {
	if _, err := writer.Profiles.FindByIDForUpdate(ctx, a.ProfileID); err != nil {
		return missing(err, "profile", a.ProfileID)
	}

	tx, balance, err := appendEntry(ctx, writer, a.ProfileID, a.Adjustment, a.Note)
	if err != nil {
		return err
	}

	a.Transaction = tx
	a.NewBalance = balance
	return nil
}

// AmendTransaction rewrites an entry and moves the owner's balance by the
// difference between the new and old adjustment.
type AmendTransaction struct {
	TransactionID uuid.UUID
	Note          string
	Adjustment    decimal.Decimal

	ProfileID  uuid.UUID
	Delta      decimal.Decimal
	NewBalance decimal.Decimal
}

func (a *AmendTransaction) Perform(ctx context.Context, writer *storage.Writer) error {
	existing, err := writer.Transactions.FindByIDForUpdate(ctx, a.TransactionID)
	if err != nil {
		return missing(err, "transaction", a.TransactionID)
	}

	owner, err := writer.Profiles.FindByIDForUpdate(ctx, existing.ProfileID)
	if err != nil {
		return missing(err, "profile", existing.ProfileID)
	}

	update := &transaction.TransactionUpdate{
		Note:       omit.From(a.Note),
		Adjustment: omit.From(a.Adjustment),
	}
	if err := writer.Transactions.Update(ctx, a.TransactionID, update); err != nil {
		return missing(err, "transaction", a.TransactionID)
	}

	a.ProfileID = existing.ProfileID
	a.Delta = a.Adjustment.Sub(existing.Adjustment)
	a.NewBalance = owner.Balance
	if a.Delta.IsZero() {
		return nil
	}

	a.NewBalance, err = writer.Profiles.AdjustBalance(ctx, existing.ProfileID, a.Delta)
	return err
}

// ReverseTransaction deletes an entry with its join row and undoes its
// effect on the owner's balance.
type ReverseTransaction struct {
	TransactionID uuid.UUID

	Transaction *transaction.Transaction
	NewBalance  decimal.Decimal
}

func (a *ReverseTransaction) Perform(ctx context.Context, writer *storage.Writer) error {
	existing, err := writer.Transactions.FindByIDForUpdate(ctx, a.TransactionID)
	if err != nil {
		return missing(err, "transaction", a.TransactionID)
	}

	if _, err := writer.Profiles.FindByIDForUpdate(ctx, existing.ProfileID); err != nil {
		return missing(err, "profile", existing.ProfileID)
	}

	if err := writer.Transactions.Delete(ctx, a.TransactionID); err != nil {
		return missing(err, "transaction", a.TransactionID)
	}

	a.Transaction = existing
	a.NewBalance, err = writer.Profiles.AdjustBalance(ctx, existing.ProfileID, existing.Adjustment.Neg())
	return err
}

// appendEntry inserts a ledger entry and applies it to the balance. The
// caller must already hold the profile lock.
func appendEntry(ctx context.Context, writer *storage.Writer, profileID uuid.UUID, adjustment decimal.Decimal, note string) (*transaction.Transaction, decimal.Decimal, error) {
	tx, err := writer.Transactions.Insert(ctx, &transaction.TransactionCreate{
		ProfileID:  profileID,
		Adjustment: adjustment,
		Note:       note,
	})
	if err != nil {
		return nil, decimal.Zero, err
	}

	balance, err := writer.Profiles.AdjustBalance(ctx, profileID, adjustment)
	if err != nil {
		return nil, decimal.Zero, err
	}
	return tx, balance, nil
}
