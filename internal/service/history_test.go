package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterHistory(t *testing.T) {
	txs := []Transaction{
		{Note: "Weekly allowance", Adjustment: dec("5")},
		{Note: "Candy", Adjustment: dec("-5")},
		{Note: "Birthday from Grandma", Adjustment: dec("20.5")},
		{Note: "", Adjustment: dec("-0.75")},
	}

	notes := func(got []Transaction) []string {
		out := make([]string, len(got))
		for i, tx := range got {
			out[i] = tx.Note
		}
		return out
	}

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "empty keeps all", query: "", want: []string{"Weekly allowance", "Candy", "Birthday from Grandma", ""}},
		{name: "note ignores case", query: "ALLOW", want: []string{"Weekly allowance"}},
		{name: "absolute amount", query: "5", want: []string{"Weekly allowance", "Candy"}},
		{name: "signed amount", query: "-5.00", want: []string{"Candy"}},
		{name: "two decimals", query: "20.50", want: []string{"Birthday from Grandma"}},
		{name: "currency sign", query: "$0.75", want: []string{""}},
		{name: "no match", query: "pizza", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, notes(FilterHistory(txs, tt.query)))
		})
	}
}

func TestParseAmount(t *testing.T) {
	amount, err := ParseAmount("amount", " $12.40 ")
	require.NoError(t, err)
	assert.True(t, amount.Equal(dec("12.4")))

	_, err = ParseAmount("amount", "twelve")
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "amount", validationErr.Field)

	_, err = ParseAmount("amount", "")
	assert.ErrorAs(t, err, &validationErr)
}

func TestParseDirection(t *testing.T) {
	d, err := ParseDirection("Withdraw")
	require.NoError(t, err)
	assert.Equal(t, DirectionWithdraw, d)
	assert.True(t, d.Sign(dec("3")).Equal(dec("-3")))

	_, err = ParseDirection("spend")
	assert.Error(t, err)
}
