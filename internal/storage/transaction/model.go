package transaction

import (
	"context"
	"time"

	"github.com/aarondl/opt/omit"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

const (
	TableName     = "transactions"
	JoinTableName = "transaction_join"
)

// Transaction represents a ledger entry. Adjustment is signed: positive
// values credit the profile and negative values debit it.
type Transaction struct {
	ID         uuid.UUID
	ProfileID  uuid.UUID
	Adjustment decimal.Decimal
	Note       string
	CreatedAt  time.Time
}

// TransactionCreate is the input for appending a ledger entry. The join row
// linking it to the profile is written alongside it.
type TransactionCreate struct {
	ID         uuid.UUID
	ProfileID  uuid.UUID
	Adjustment decimal.Decimal
	Note       string
}

// TransactionUpdate is a partial patch for an existing entry.
type TransactionUpdate struct {
	Note       omit.Val[string]
	Adjustment omit.Val[decimal.Decimal]
}

// LedgerTotal is the sum of every entry linked to a profile.
type LedgerTotal struct {
	Sum     decimal.Decimal
	Entries int64
}

// IReader is the read side of the ledger.
//
// ListByProfile returns entries newest first.
type IReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	ListByProfile(ctx context.Context, profileID uuid.UUID) ([]*Transaction, error)
	SumByProfile(ctx context.Context, profileID uuid.UUID) (LedgerTotal, error)
}

// IWriter is only available inside a storage transaction.
type IWriter interface {
	IReader
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Transaction, error)
	Insert(ctx context.Context, create *TransactionCreate) (*Transaction, error)
	Update(ctx context.Context, id uuid.UUID, update *TransactionUpdate) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByProfile(ctx context.Context, profileID uuid.UUID) (int64, error)
}

type transactionRow struct {
	ID         uuid.UUID       `db:"id"`
	ProfileID  uuid.UUID       `db:"profile_id"`
	Adjustment decimal.Decimal `db:"adjustment"`
	Note       string          `db:"note"`
	CreatedAt  time.Time       `db:"created_at"`
}

type totalRow struct {
	Total   decimal.Decimal `db:"total"`
	Entries int64           `db:"entries"`
}

func rowToTransaction(row *transactionRow) *Transaction {
	return &Transaction{
		ID:         row.ID,
		ProfileID:  row.ProfileID,
		Adjustment: row.Adjustment,
		Note:       row.Note,
		CreatedAt:  row.CreatedAt,
	}
}
