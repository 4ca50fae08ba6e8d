// Package types provides common type aliases and utilities.
package types

import (
	"github.com/shopspring/decimal"
)

// Tonnage represents a mass value in tonnes with full precision.
// Uses decimal.Decimal to avoid floating-point errors accumulating
// across long reconciliation chains.
type Tonnage = decimal.Decimal

// NewTonnage creates a Tonnage value from a float.
// WARNING: Use NewTonnageFromString for precise values.
func NewTonnage(f float64) Tonnage {
	return decimal.NewFromFloat(f)
}

// NewTonnageFromString creates a Tonnage value from a string.
// This is the preferred method for tonnage values.
func NewTonnageFromString(s string) (Tonnage, error) {
	return decimal.NewFromString(s)
}

// MustTonnage creates a Tonnage value from a string, panics on error.
// Use only for constants and tests.
func MustTonnage(s string) Tonnage {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// NewTonnageFromInt creates a Tonnage value from an integer tonne count.
func NewTonnageFromInt(n int64) Tonnage {
	return decimal.NewFromInt(n)
}

// Zero returns zero Tonnage value.
func Zero() Tonnage {
	return decimal.Zero
}

var hundred = decimal.NewFromInt(100)

// RatioPercent returns num/den*100, or zero when den is zero.
// The zero-denominator branch is a policy outcome, not an error:
// an empty expected side must not fail the whole reconciliation.
func RatioPercent(num, den Tonnage) Tonnage {
	if den.IsZero() {
		return decimal.Zero
	}
	return num.Div(den).Mul(hundred)
}

// SumTonnages folds a slice of tonnage values into their exact sum.
func SumTonnages(values []Tonnage) Tonnage {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
