// Package core provides money parsing and handling utilities.
//
// Amounts are held as integer cents. Parsing and division go through
// shopspring/decimal so no value ever passes through a float.
package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxAmountCents bounds a decimal(12,2) column: ten integer digits.
const MaxAmountCents int64 = 1e12 - 1

var (
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrAmountTooLarge = errors.New("amount exceeds 9999999999.99")
	ErrNegativeAmount = errors.New("amount cannot be negative")
	ErrSubCentAmount  = errors.New("amount has more than two fractional digits")
)

type Money struct {
	Cents int64
}

// ParseDecimalToCents converts a positive decimal string to cents.
//
// Both dot (12.34) and comma (12,34) separators are accepted. Zero,
// negative, non-numeric and sub-cent input is rejected; trailing zeros
// past the cents ("12.340") are fine.
//
// Examples:
//
//	ParseDecimalToCents("12.34")  -> 1234, nil
//	ParseDecimalToCents("12,34")  -> 1234, nil
//	ParseDecimalToCents("12.345") -> 0, ErrSubCentAmount
//	ParseDecimalToCents("-1")     -> 0, ErrNegativeAmount
func ParseDecimalToCents(s string) (int64, error) {
	cents, err := parseCents(s)
	if err != nil {
		return 0, err
	}
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// ParseMoney parses a strictly positive amount.
func ParseMoney(s string) (Money, error) {
	cents, err := ParseDecimalToCents(s)
	if err != nil {
		return Money{}, err
	}
	return Money{Cents: cents}, nil
}

// ParseNonNegativeMoney parses an amount that may be zero, such as a
// goal's current amount.
func ParseNonNegativeMoney(s string) (Money, error) {
	cents, err := parseCents(s)
	if err != nil {
		return Money{}, err
	}
	return Money{Cents: cents}, nil
}

func parseCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	// decimal accepts exponents and a leading '+', plain amounts only here
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' && r != '-' {
			return 0, ErrInvalidAmount
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if d.IsNegative() {
		return 0, ErrNegativeAmount
	}
	if !d.Equal(d.Truncate(2)) {
		return 0, ErrSubCentAmount
	}
	if d.GreaterThan(decimal.New(MaxAmountCents, -2)) {
		return 0, ErrAmountTooLarge
	}
	return d.Shift(2).IntPart(), nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	if m.Cents > MaxAmountCents {
		return ErrAmountTooLarge
	}
	return nil
}

// Decimal returns the amount in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String formats with exactly two fractional digits, e.g. "420.00".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// MarshalJSON encodes the amount as a decimal string so it never
// round-trips through a float.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

func (m Money) IsZero() bool {
	return m.Cents == 0
}
