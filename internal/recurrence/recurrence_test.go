package recurrence

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
)

func date(y int, m int, d int) civil.Date {
	return civil.Date{Year: y, Month: time.Month(m), Day: d}
}

func TestAdvance(t *testing.T) {
	tests := []struct {
		name string
		from civil.Date
		freq Frequency
		want civil.Date
	}{
		{"daily", date(2025, 3, 9), Daily, date(2025, 3, 10)},
		{"daily across year", date(2024, 12, 31), Daily, date(2025, 1, 1)},
		{"weekly", date(2025, 3, 9), Weekly, date(2025, 3, 16)},
		{"weekly across month", date(2025, 2, 26), Weekly, date(2025, 3, 5)},
		{"monthly", date(2025, 1, 15), Monthly, date(2025, 2, 15)},
		{"monthly across year", date(2025, 12, 5), Monthly, date(2026, 1, 5)},
		{"monthly overflow", date(2025, 1, 31), Monthly, date(2025, 3, 3)},
		{"monthly overflow leap year", date(2024, 1, 31), Monthly, date(2024, 3, 2)},
		{"monthly 31 into 30 day month", date(2025, 3, 31), Monthly, date(2025, 5, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Advance(tt.from, tt.freq)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAdvance_Once(t *testing.T) {
	_, err := Advance(date(2025, 1, 1), Once)
	assert.ErrorIs(t, err, ErrNoSuccessor)
}

func TestAdvance_Unknown(t *testing.T) {
	_, err := Advance(date(2025, 1, 1), Frequency("yearly"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoSuccessor)
}

func TestParseFrequency(t *testing.T) {
	f, err := ParseFrequency(" Weekly ")
	assert.NoError(t, err)
	assert.Equal(t, Weekly, f)

	_, err = ParseFrequency("fortnightly")
	assert.Error(t, err)
}

func TestFrequency_Recurring(t *testing.T) {
	assert.False(t, Once.Recurring())
	assert.True(t, Once.Valid())
	for _, f := range []Frequency{Daily, Weekly, Monthly} {
		assert.True(t, f.Recurring(), f)
		assert.True(t, f.Valid(), f)
	}
}
