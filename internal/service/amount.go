package service

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Direction says whether a new entry credits or debits a profile.
type Direction string

const (
	DirectionAdd      Direction = "add"
	DirectionWithdraw Direction = "withdraw"
)

func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(s))); d {
	case DirectionAdd, DirectionWithdraw:
		return d, nil
	default:
		return "", validationError("direction", "must be add or withdraw")
	}
}

// Sign applies the direction to a positive amount.
func (d Direction) Sign(amount decimal.Decimal) decimal.Decimal {
	if d == DirectionWithdraw {
		return amount.Neg()
	}
	return amount
}

// ParseAmount parses a decimal string for field. A leading currency sign is
// ignored.
func ParseAmount(field, s string) (decimal.Decimal, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "$")
	if s == "" {
		return decimal.Zero, validationError(field, "is required")
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, validationError(field, "must be a decimal number")
	}
	return amount, nil
}

func requirePositive(field string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return validationError(field, "must be greater than zero")
	}
	return nil
}

func requireNonZero(field string, amount decimal.Decimal) error {
	if amount.IsZero() {
		return validationError(field, "must not be zero")
	}
	return nil
}
