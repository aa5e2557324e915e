package transaction

import (
	"time"

	"github.com/carson-networks/allowance-server/internal/service"
)

// Transaction is the API response model for a ledger entry.
// It is used only for responses, not for request bodies.
type Transaction struct {
	ID         string `json:"id" doc:"Transaction UUID"`
	ProfileID  string `json:"profileId" doc:"Profile UUID"`
	Adjustment string `json:"adjustment" doc:"Signed decimal adjustment"`
	Note       string `json:"note" doc:"Free-text note"`
	CreatedAt  string `json:"createdAt" doc:"RFC3339 creation time"`
}

func toAPI(tx service.Transaction) Transaction {
	return Transaction{
		ID:         tx.ID.String(),
		ProfileID:  tx.ProfileID.String(),
		Adjustment: tx.Adjustment.StringFixed(2),
		Note:       tx.Note,
		CreatedAt:  tx.CreatedAt.Format(time.RFC3339),
	}
}

// BalanceResponse reports the owner's balance after a mutation.
type BalanceResponse struct {
	NewBalance string `json:"newBalance" doc:"Balance after the change"`
}
