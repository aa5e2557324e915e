package service

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/allowance-server/internal/events"
	"github.com/carson-networks/allowance-server/internal/operator/actions"
)

// TransactionService handles ledger entries and the balance they move.
type TransactionService struct {
	*core
}

// ApplyTransaction records a new entry for a profile. amount must be
// positive; direction decides the sign that reaches the ledger.
func (s *TransactionService) ApplyTransaction(ctx context.Context, profileID uuid.UUID, direction Direction, amount decimal.Decimal, note string) (TransactionResult, error) {
	direction, err := ParseDirection(string(direction))
	if err != nil {
		return TransactionResult{}, err
	}
	if err := requirePositive("amount", amount); err != nil {
		return TransactionResult{}, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	action := &actions.ApplyTransaction{
		ProfileID:  profileID,
		Adjustment: direction.Sign(amount),
		Note:       note,
	}
	if err := s.process(ctx, "ApplyTransaction", action); err != nil {
		return TransactionResult{}, err
	}

	s.log.WithField("profileID", profileID).Debug("TransactionService.ApplyTransaction.Complete")
	s.publish(ctx, events.New(events.TransactionApplied, profileID).
		WithTransaction(action.Transaction.ID, action.Transaction.Adjustment).
		WithBalance(action.NewBalance))

	return TransactionResult{
		Transaction: toTransaction(action.Transaction),
		NewBalance:  action.NewBalance,
	}, nil
}

// AmendTransaction replaces the note and signed adjustment of an entry. The
// owner's balance moves by the difference to the old adjustment.
func (s *TransactionService) AmendTransaction(ctx context.Context, transactionID uuid.UUID, note string, amount decimal.Decimal) (decimal.Decimal, error) {
	if err := requireNonZero("amount", amount); err != nil {
		return decimal.Zero, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	action := &actions.AmendTransaction{
		TransactionID: transactionID,
		Note:          note,
		Adjustment:    amount,
	}
	if err := s.process(ctx, "AmendTransaction", action); err != nil {
		return decimal.Zero, err
	}

	s.publish(ctx, events.New(events.TransactionAmended, action.ProfileID).
		WithTransaction(transactionID, action.Delta).
		WithBalance(action.NewBalance))

	return action.NewBalance, nil
}

// DeleteTransaction reverses an entry: it is removed from the ledger and
// its adjustment is taken back out of the balance.
func (s *TransactionService) DeleteTransaction(ctx context.Context, transactionID uuid.UUID) (decimal.Decimal, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	action := &actions.ReverseTransaction{TransactionID: transactionID}
	if err := s.process(ctx, "DeleteTransaction", action); err != nil {
		return decimal.Zero, err
	}

	s.publish(ctx, events.New(events.TransactionReversed, action.Transaction.ProfileID).
		WithTransaction(transactionID, action.Transaction.Adjustment.Neg()).
		WithBalance(action.NewBalance))

	return action.NewBalance, nil
}

// ListHistory returns a profile's entries newest first.
func (s *TransactionService) ListHistory(ctx context.Context, profileID uuid.UUID) ([]Transaction, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.storage.Profiles.FindByID(ctx, profileID); err != nil {
		return nil, readErr("ListHistory", "profile", profileID, err)
	}

	rows, err := s.storage.Transactions.ListByProfile(ctx, profileID)
	if err != nil {
		return nil, translate("ListHistory", err)
	}

	history := make([]Transaction, len(rows))
	for i, row := range rows {
		history[i] = toTransaction(row)
	}
	return history, nil
}
