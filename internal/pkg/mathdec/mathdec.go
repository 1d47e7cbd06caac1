// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package mathdec provides helper functions for working with decimal.Decimal values
// as quantities and currency amounts.
package mathdec

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// centsPlaces is the number of decimal places of a currency amount.
const centsPlaces = 2

// NewDecimal parses a decimal string value (e.g., "123.456789").
//
// An empty string is zero.
func NewDecimal(value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid decimal value %q: %w", value, err)
	}
	return d, nil
}

// MustDecimal parses a decimal string value and panics on error.
//
// Only for constants and tests.
func MustDecimal(value string) decimal.Decimal {
	d, err := NewDecimal(value)
	if err != nil {
		panic(err)
	}
	return d
}

// RoundCents rounds d to currency scale (2 decimal places, half away from zero).
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(centsPlaces)
}

// ToString converts a quantity to its shortest exact string representation.
func ToString(d decimal.Decimal) string {
	return d.String()
}

// ToMoneyString converts a currency amount to a string with exactly 2 decimal places.
func ToMoneyString(d decimal.Decimal) string {
	return d.StringFixed(centsPlaces)
}

// EqualWithin reports whether a and b differ by at most tolerance.
func EqualWithin(a decimal.Decimal, b decimal.Decimal, tolerance decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(tolerance.Abs())
}
