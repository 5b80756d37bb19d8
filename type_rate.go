package fundcalc

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// newDecimal is a convenient factory for decimal.Decimal
func newDecimal[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return v
	case float32:
		return decimal.NewFromFloat32(v)
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int32:
		return decimal.NewFromInt32(v)
	case int64:
		return decimal.NewFromInt(v)
	case uint:
		return decimal.NewFromUint64(uint64(v))
	case uint32:
		return decimal.NewFromUint64(uint64(v))
	case uint64:
		return decimal.NewFromUint64(v)
	default:
		panic("unsupported type")
	}
}

// Rate is an exact decimal fraction. Carry, hurdle, fee, and recycling
// rates are all fractions in [0,1] (0.20 means 20%), never 0-100
// integers. Performance rates (IRR) may exceed 1.
type Rate struct {
	value decimal.Decimal
}

func R[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) Rate {
	return Rate{value: newDecimal(value)}
}

// ParseRate parses a fraction like "0.20". It rejects values outside
// [0,1]: config rates are fractions of a whole, a "20" here is almost
// certainly a percentage typed by mistake.
func ParseRate(s string) (Rate, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Rate{}, fmt.Errorf("invalid rate %q: %w", s, err)
	}
	r := Rate{value: d}
	if d.IsNegative() || d.GreaterThan(decimal.NewFromInt(1)) {
		return Rate{}, fmt.Errorf("rate %q out of range, want a fraction in [0,1]", s)
	}
	return r, nil
}

func (r Rate) Decimal() decimal.Decimal { return r.value }
func (r Rate) IsZero() bool             { return r.value.IsZero() }
func (r Rate) IsNegative() bool         { return r.value.IsNegative() }
func (r Rate) Equal(q Rate) bool        { return r.value.Equal(q.value) }
func (r Rate) LessThan(q Rate) bool     { return r.value.LessThan(q.value) }
func (r Rate) GreaterThan(q Rate) bool  { return r.value.GreaterThan(q.value) }
func (r Rate) Add(q Rate) Rate          { return Rate{value: r.value.Add(q.value)} }
func (r Rate) Sub(q Rate) Rate          { return Rate{value: r.value.Sub(q.value)} }
func (r Rate) Mul(q Rate) Rate          { return Rate{value: r.value.Mul(q.value)} }

// String renders the rate as a percentage for reports, e.g. "20.00%".
func (r Rate) String() string {
	return r.value.Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
}

func (r Rate) MarshalJSON() ([]byte, error) {
	return r.value.MarshalJSON()
}

func (r *Rate) UnmarshalJSON(b []byte) error {
	return r.value.UnmarshalJSON(b)
}

// UnmarshalYAML reads a rate from a YAML scalar, fund config files hold
// rates as plain fractions.
func (r *Rate) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid rate %q: %w", s, err)
	}
	r.value = d
	return nil
}
