// Package core provides money parsing and handling utilities.
//
// Amounts are arbitrary-precision decimals; no float conversion happens
// anywhere in balance arithmetic.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string to an exact amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and an
// optional leading sign. Exponent notation is rejected.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34, nil
//	ParseAmount("12,34")  -> 12.34, nil
//	ParseAmount("-0.5")   -> -0.5, nil
//	ParseAmount("1e3")    -> error
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, Validation("amount is required")
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.ContainsAny(s, "eE") {
		return decimal.Zero, Validation("invalid amount: " + s)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, Validation("invalid amount: " + s)
	}
	return d, nil
}

// ParseNonNegativeAmount is ParseAmount restricted to values >= 0.
func ParseNonNegativeAmount(s string) (decimal.Decimal, error) {
	d, err := ParseAmount(s)
	if err != nil {
		return d, err
	}
	if d.IsNegative() {
		return decimal.Zero, Validation("amount cannot be negative")
	}
	return d, nil
}

// ClampZero returns d, or zero when d is negative.
func ClampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
