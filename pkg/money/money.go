// Package money is the single representation of currency amounts.
//
// Amounts are exact decimals. Intermediate arithmetic keeps full precision;
// Round is applied once, when a value leaves a calculation.
package money

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
)

// Amount is a currency value in dollars.
type Amount struct {
	d decimal.Decimal
}

var Zero = Amount{}

func FromDecimal(d decimal.Decimal) Amount { return Amount{d: d} }

func FromFloat(f float64) Amount { return Amount{d: decimal.NewFromFloat(f)} }

// FromCents builds an amount from an integer number of cents.
func FromCents(c int64) Amount { return Amount{d: decimal.New(c, -2)} }

// Parse reads a decimal string such as "3200" or "525.50".
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return Amount{d: d}, nil
}

// MustParse is for constants and tests.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Amount) Decimal() decimal.Decimal { return a.d }

func (a Amount) Add(b Amount) Amount { return Amount{d: a.d.Add(b.d)} }
func (a Amount) Sub(b Amount) Amount { return Amount{d: a.d.Sub(b.d)} }

func (a Amount) Mul(f decimal.Decimal) Amount { return Amount{d: a.d.Mul(f)} }

// Round rounds half-up to whole cents. For the non-negative values this engine
// handles, decimal's half-away-from-zero is identical to half-up.
func (a Amount) Round() Amount { return Amount{d: a.d.Round(2)} }

func (a Amount) IsZero() bool              { return a.d.IsZero() }
func (a Amount) IsNegative() bool          { return a.d.IsNegative() }
func (a Amount) GreaterThan(b Amount) bool { return a.d.GreaterThan(b.d) }
func (a Amount) Equal(b Amount) bool       { return a.d.Equal(b.d) }
func (a Amount) Cmp(b Amount) int          { return a.d.Cmp(b.d) }

// Max returns the larger of a and b.
func Max(a, b Amount) Amount {
	if a.d.GreaterThanOrEqual(b.d) {
		return a
	}
	return b
}

// String formats with exactly two fraction digits.
func (a Amount) String() string { return a.d.StringFixed(2) }

// Cents returns the rounded integer cents, used by SQL stores.
func (a Amount) Cents() int64 { return a.d.Shift(2).Round(0).IntPart() }

// MarshalJSON writes a bare JSON number with two fraction digits.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.d.StringFixed(2)), nil
}

// UnmarshalJSON accepts both numbers and quoted decimal strings.
func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if bytes.Equal(b, []byte("null")) || len(b) == 0 {
		*a = Zero
		return nil
	}
	d, err := decimal.NewFromString(string(b))
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	a.d = d
	return nil
}

// MarshalYAML and UnmarshalYAML keep seed files human readable.
func (a Amount) MarshalYAML() (any, error) { return a.String(), nil }

func (a *Amount) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
