package types

import "math"

type PositionType string

const (
	PositionTypeLong  PositionType = "LONG"
	PositionTypeShort PositionType = "SHORT"
)

// Order is a transient sized order for one instrument in one period.
// Shares is signed: positive is long, negative is short, zero means no order.
type Order struct {
	Instrument int     `csv:"instrument"`
	Symbol     string  `csv:"symbol"`
	Shares     float64 `csv:"shares"`
}

// IsZero reports whether the order carries no shares.
func (o Order) IsZero() bool {
	return o.Shares == 0
}

// Side returns the direction of the order.
func (o Order) Side() PositionType {
	if o.Shares < 0 {
		return PositionTypeShort
	}

	return PositionTypeLong
}

// Notional returns the absolute cash value of the order at price.
func (o Order) Notional(price float64) float64 {
	return math.Abs(o.Shares * price)
}
