package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

// amountScale is the number of fractional digits carried by an Amount.
const amountScale = 4

var (
	ErrAmountOverflow  = errors.New("amount overflow")
	ErrAmountUnderflow = errors.New("amount underflow")
	ErrNegativeAmount  = errors.New("negative amount")
)

// Amount is a monetary quantity in 1/10000 currency units. Balances and
// transaction amounts are kept in this scaled-integer form so that no
// arithmetic on them can accumulate binary floating-point error.
type Amount int64

// AmountFromDecimal converts a parsed decimal value to scaled units,
// rounding to four fractional digits. Negative values are rejected;
// values that do not fit the scaled representation report overflow.
func AmountFromDecimal(d decimal.Decimal) (Amount, error) {
	if d.IsNegative() {
		return 0, ErrNegativeAmount
	}
	scaled := d.Round(amountScale).Shift(amountScale)
	if !scaled.BigInt().IsInt64() {
		return 0, ErrAmountOverflow
	}
	return Amount(scaled.IntPart()), nil
}

// Add returns a+b, or ErrAmountOverflow if the sum does not fit.
func (a Amount) Add(b Amount) (Amount, error) {
	sum := a + b
	if sum < a {
		return 0, ErrAmountOverflow
	}
	return sum, nil
}

// Sub returns a-b, or ErrAmountUnderflow if b exceeds a. Amounts are
// non-negative by construction, so underflow is the only failure mode.
func (a Amount) Sub(b Amount) (Amount, error) {
	if b > a {
		return 0, ErrAmountUnderflow
	}
	return a - b, nil
}

func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -amountScale)
}

func (a Amount) String() string {
	return a.Decimal().StringFixed(amountScale)
}
