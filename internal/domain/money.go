package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is an immutable monetary amount. All comparisons are numeric, so
// representations that differ only in trailing zeros (100.0 vs 100.00) are
// equal. Money carries no validation of its own; sign and zero rules are
// enforced by the entities that use it.
type Money struct {
	value decimal.Decimal
}

// Zero is the zero monetary amount.
var Zero = Money{}

// NewMoney creates a Money from a decimal value.
func NewMoney(value decimal.Decimal) Money {
	return Money{value: value}
}

// NewMoneyFromString parses a Money from its decimal string form.
func NewMoneyFromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: cannot parse amount %q", ErrInvalidMoneyValue, s)
	}

	return Money{value: d}, nil
}

// Add returns the sum of m and other.
func (m Money) Add(other Money) Money {
	return Money{value: m.value.Add(other.value)}
}

// Sub returns the difference of m and other. The result may be negative;
// callers reject negative results where their rules require it.
func (m Money) Sub(other Money) Money {
	return Money{value: m.value.Sub(other.value)}
}

// Equal reports whether m and other are numerically equal.
func (m Money) Equal(other Money) bool {
	return m.value.Equal(other.value)
}

// GreaterThan reports whether m is numerically greater than other.
func (m Money) GreaterThan(other Money) bool {
	return m.value.GreaterThan(other.value)
}

// LessThan reports whether m is numerically less than other.
func (m Money) LessThan(other Money) bool {
	return m.value.LessThan(other.value)
}

// IsZero reports whether m is zero.
func (m Money) IsZero() bool {
	return m.value.IsZero()
}

// IsNegative reports whether m is below zero.
func (m Money) IsNegative() bool {
	return m.value.IsNegative()
}

// IsPositive reports whether m is above zero.
func (m Money) IsPositive() bool {
	return m.value.IsPositive()
}

// Decimal returns the underlying decimal value.
func (m Money) Decimal() decimal.Decimal {
	return m.value
}

func (m Money) String() string {
	return m.value.String()
}

// MarshalJSON encodes the amount as a decimal string.
func (m Money) MarshalJSON() ([]byte, error) {
	return m.value.MarshalJSON()
}

// UnmarshalJSON decodes the amount from a decimal string or number.
func (m *Money) UnmarshalJSON(data []byte) error {
	return m.value.UnmarshalJSON(data)
}
