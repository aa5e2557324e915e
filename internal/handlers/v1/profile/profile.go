package profile

import (
	"time"

	"github.com/carson-networks/allowance-server/internal/service"
)

// Profile is the API response model for a profile.
type Profile struct {
	ID        string  `json:"id" doc:"Profile UUID"`
	Name      string  `json:"name" doc:"Display name"`
	Balance   string  `json:"balance" doc:"Decimal balance"`
	ImageURL  *string `json:"imageUrl,omitempty" doc:"Avatar image URL"`
	CreatedAt string  `json:"createdAt" doc:"RFC3339 creation time"`
}

func toAPI(p service.Profile) Profile {
	return Profile{
		ID:        p.ID.String(),
		Name:      p.Name,
		Balance:   p.Balance.StringFixed(2),
		ImageURL:  p.ImageURL,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
}

// ProfileIDInput is shared by every endpoint scoped to a single profile.
type ProfileIDInput struct {
	ProfileID string `path:"profileID" format:"uuid" doc:"Profile UUID"`
}
