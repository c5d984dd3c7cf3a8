package wire

import (
	"fmt"

	"github.com/shopspring/decimal"
	"google.golang.org/protobuf/encoding/protowire"
)

// Decimal is the protobuf Decimal message: an arbitrary precision number
// carried as its string form.
type Decimal struct {
	Value decimal.Decimal
}

// NewDecimal parses s into a Decimal.
func NewDecimal(s string) (*Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	return &Decimal{Value: d}, nil
}

// MustDecimal is NewDecimal for constants; it panics on invalid input.
func MustDecimal(s string) *Decimal {
	d, err := NewDecimal(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Text returns the canonical string form of d; an absent decimal is "0".
func (d *Decimal) Text() string {
	if d == nil {
		return "0"
	}
	return d.Value.String()
}

func (d *Decimal) Unmarshal(b []byte) error {
	*d = Decimal{}
	return decodeFields(b, func(v value) error {
		if v.num != 1 {
			return nil
		}
		s, err := v.string()
		if err != nil {
			return err
		}
		if s == "" {
			d.Value = decimal.Zero
			return nil
		}
		parsed, err := decimal.NewFromString(s)
		if err != nil {
			return fmt.Errorf("decimal %q: %w", s, err)
		}
		d.Value = parsed
		return nil
	})
}

func (d *Decimal) Marshal() []byte {
	var b []byte
	return appendString(b, protowire.Number(1), d.Value.String())
}
