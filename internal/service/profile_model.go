package service

import (
	"time"

	"github.com/aarondl/opt/omit"
	"github.com/aarondl/opt/omitnull"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/allowance-server/internal/storage/profile"
)

type Profile struct {
	ID        uuid.UUID
	Name      string
	Balance   decimal.Decimal
	ImageURL  *string
	CreatedAt time.Time
}

type ProfileCreate struct {
	Name           string
	ImageURL       *string
	OpeningBalance decimal.Decimal
}

// ProfileUpdate patches a profile. Setting Balance records a correction
// entry for the difference instead of overwriting the cache.
type ProfileUpdate struct {
	Name     omit.Val[string]
	ImageURL omitnull.Val[string]
	Balance  omit.Val[decimal.Decimal]
}

func toProfile(row *profile.Profile) Profile {
	return Profile{
		ID:        row.ID,
		Name:      row.Name,
		Balance:   row.Balance,
		ImageURL:  row.ImageURL,
		CreatedAt: row.CreatedAt,
	}
}
