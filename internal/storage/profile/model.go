package profile

import (
	"context"
	"time"

	"github.com/aarondl/opt/omit"
	"github.com/aarondl/opt/omitnull"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

const TableName = "profiles"

// Profile is a stored profile row. Balance is the cached sum of the
// profile's ledger.
type Profile struct {
	ID        uuid.UUID
	Name      string
	Balance   decimal.Decimal
	ImageURL  *string
	CreatedAt time.Time
}

// ProfileCreate is the input for inserting a profile. New profiles always
// start with a zero balance.
type ProfileCreate struct {
	ID       uuid.UUID
	Name     string
	ImageURL *string
}

// ProfileUpdate is a partial patch. Unset fields are left untouched and a
// null ImageURL clears the stored image.
type ProfileUpdate struct {
	Name     omit.Val[string]
	ImageURL omitnull.Val[string]
}

// IsEmpty reports whether the patch changes nothing.
func (u ProfileUpdate) IsEmpty() bool {
	return u.Name.IsUnset() && u.ImageURL.IsUnset()
}

// IReader is the read side of the profiles table.
type IReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	List(ctx context.Context) ([]*Profile, error)
}

// IWriter is only available inside a storage transaction.
type IWriter interface {
	IReader
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Profile, error)
	Insert(ctx context.Context, create *ProfileCreate) (*Profile, error)
	Update(ctx context.Context, id uuid.UUID, update *ProfileUpdate) error
	// AdjustBalance adds delta to the stored balance in place and returns
	// the resulting balance.
	AdjustBalance(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type profileRow struct {
	ID        uuid.UUID       `db:"id"`
	Name      string          `db:"name"`
	Balance   decimal.Decimal `db:"balance"`
	ImageURL  *string         `db:"image_url"`
	CreatedAt time.Time       `db:"created_at"`
}

func rowToProfile(row *profileRow) *Profile {
	return &Profile{
		ID:        row.ID,
		Name:      row.Name,
		Balance:   row.Balance,
		ImageURL:  row.ImageURL,
		CreatedAt: row.CreatedAt,
	}
}
