// Package types provides common value types shared by the ledgers.
package types

import (
	"github.com/shopspring/decimal"
)

// MoneyScale is the number of decimal places stored for amounts (numeric(10,2)).
const MoneyScale int32 = 2

// QuantityScale is the number of decimal places stored for stock (numeric(10,3)).
const QuantityScale int32 = 3

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// Quantity is a stock quantity; kilograms for weight-based products, pieces otherwise.
type Quantity = decimal.Decimal

// NewMoneyFromString creates a Money value from a string.
// This is the preferred method for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// RoundMoney rounds to the stored monetary scale.
func RoundMoney(m Money) Money {
	return m.Round(MoneyScale)
}

// RoundQuantity rounds to the stored quantity scale.
func RoundQuantity(q Quantity) Quantity {
	return q.Round(QuantityScale)
}

// Min returns the smaller of a and b.
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// Max returns the larger of a and b.
func Max(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}
