package service

import (
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/allowance-server/internal/storage/transaction"
)

// Transaction represents a ledger entry in the service layer.
type Transaction struct {
	ID         uuid.UUID
	ProfileID  uuid.UUID
	Adjustment decimal.Decimal
	Note       string
	CreatedAt  time.Time
}

// TransactionResult is returned by mutations that move a balance.
type TransactionResult struct {
	Transaction Transaction
	NewBalance  decimal.Decimal
}

func toTransaction(row *transaction.Transaction) Transaction {
	return Transaction{
		ID:         row.ID,
		ProfileID:  row.ProfileID,
		Adjustment: row.Adjustment,
		Note:       row.Note,
		CreatedAt:  row.CreatedAt,
	}
}
