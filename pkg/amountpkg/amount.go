// Package amountpkg provides exact non-negative integer money amounts.
package amountpkg

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrMalformed indicates that the string is not a valid amount.
	ErrMalformed = errors.New("malformed amount")
	// ErrNegative indicates a negative amount.
	ErrNegative = errors.New("negative amount")
	// ErrFractional indicates a non-integer amount.
	ErrFractional = errors.New("fractional amount")
	// ErrUnderflow indicates that a subtraction would go below zero.
	ErrUnderflow = errors.New("amount underflow")
)

// Amount is an arbitrary-precision non-negative integer monetary value.
//
// The zero value is ready to use and equals zero.
type Amount struct {
	d decimal.Decimal
}

// Zero returns the zero amount.
func Zero() Amount {
	return Amount{}
}

// Parse converts a decimal string into an Amount.
//
// Negative, fractional and malformed inputs are rejected.
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, ErrMalformed
	}

	if d.IsNegative() {
		return Amount{}, ErrNegative
	}

	if !d.Equal(d.Truncate(0)) {
		return Amount{}, ErrFractional
	}

	return Amount{d: d}, nil
}

// FromInt64 converts an int64 into an Amount. Negative values are rejected.
func FromInt64(n int64) (Amount, error) {
	if n < 0 {
		return Amount{}, ErrNegative
	}

	return Amount{d: decimal.NewFromInt(n)}, nil
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount {
	return Amount{d: a.d.Add(b.d)}
}

// Sub returns a - b or ErrUnderflow if b exceeds a.
func (a Amount) Sub(b Amount) (Amount, error) {
	res := a.d.Sub(b.d)
	if res.IsNegative() {
		return Amount{}, ErrUnderflow
	}

	return Amount{d: res}, nil
}

// Cmp compares a and b and returns -1, 0 or 1.
func (a Amount) Cmp(b Amount) int {
	return a.d.Cmp(b.d)
}

// IsPositive returns true if a is strictly greater than zero.
func (a Amount) IsPositive() bool {
	return a.d.IsPositive()
}

// IsZero returns true if a equals zero.
func (a Amount) IsZero() bool {
	return a.d.IsZero()
}

// DivFloorInt64 returns floor(a / unit) as int64. unit must be positive.
func (a Amount) DivFloorInt64(unit Amount) int64 {
	q, _ := a.d.QuoRem(unit.d, 0)
	return q.IntPart()
}

// String formats the amount as a canonical decimal string.
func (a Amount) String() string {
	return a.d.Truncate(0).String()
}

// MarshalJSON encodes the amount as a JSON string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// UnmarshalJSON decodes the amount from a JSON string.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}

	parsed, err := Parse(s)
	if err != nil {
		return err
	}

	*a = parsed

	return nil
}
