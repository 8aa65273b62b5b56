// Package core provides money parsing and handling utilities.
//
// Amounts are kept as decimal strings on the Transaction record and parsed
// into shopspring decimals for validation and aggregation.
package core

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// maxAmountDigits bounds each side of the decimal point of a user-entered
// amount.
const maxAmountDigits = 18

// Stored amounts outside these bounds aggregate as zero.
const (
	maxStoredExponent = 36
	maxStoredDigits   = 36
)

var plainAmount = regexp.MustCompile(fmt.Sprintf(`^(\d{1,%[1]d}(\.\d{1,%[1]d})?|\.\d{1,%[1]d})$`, maxAmountDigits))

// NormalizeAmount trims the input and turns a single decimal comma into a dot.
//
//	NormalizeAmount(" 12,50 ") -> "12.50"
//	NormalizeAmount("1,000.5") -> "1,000.5" (left alone, rejected by ParseAmount)
func NormalizeAmount(s string) string {
	s = strings.TrimSpace(s)
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	return s
}

// ParseAmount parses a user-entered amount. Only plain, unsigned decimal
// text with at most maxAmountDigits on either side of the point is
// accepted, and the value must be strictly positive.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = NormalizeAmount(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	if !plainAmount.MatchString(s) {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.Sign() <= 0 {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ParseStoredAmount parses an amount read back from the ledger. It reports
// false for empty or non-numeric text and for values whose exponent or
// precision would make arithmetic on them unbounded.
func ParseStoredAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if e := d.Exponent(); e < -maxStoredExponent || e > maxStoredExponent || d.NumDigits() > maxStoredDigits {
		return decimal.Zero, false
	}
	return d, true
}

// amountOrZero is the lenient parse used by aggregation.
func amountOrZero(s string) decimal.Decimal {
	d, _ := ParseStoredAmount(s)
	return d
}
