package service

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FilterHistory keeps the entries whose note contains query, ignoring case,
// or whose adjustment matches query as an amount. Amounts compare at two
// decimal places, against either the signed or the absolute adjustment.
// An empty query keeps everything.
func FilterHistory(txs []Transaction, query string) []Transaction {
	query = strings.TrimSpace(query)
	if query == "" {
		return txs
	}

	needle := strings.ToLower(query)
	amount, amountErr := decimal.NewFromString(strings.TrimPrefix(query, "$"))
	wanted := ""
	if amountErr == nil {
		wanted = amount.StringFixed(2)
	}

	filtered := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if strings.Contains(strings.ToLower(tx.Note), needle) {
			filtered = append(filtered, tx)
			continue
		}
		if wanted == "" {
			continue
		}
		if tx.Adjustment.StringFixed(2) == wanted || tx.Adjustment.Abs().StringFixed(2) == wanted {
			filtered = append(filtered, tx)
		}
	}
	return filtered
}
