package types

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
)

// Trade is one row of the trade history log. Close fields stay empty until
// the position is realized.
type Trade struct {
	ID          int                        `csv:"id"`
	Symbol      string                     `csv:"symbol"`
	OpenPeriod  int                        `csv:"open_period"`
	OpenTime    time.Time                  `csv:"open_time"`
	OpenPrice   float64                    `csv:"open_price"`
	Shares      float64                    `csv:"shares"`
	ClosePeriod optional.Option[int]       `csv:"close_period"`
	CloseTime   optional.Option[time.Time] `csv:"close_time"`
	ClosePrice  optional.Option[float64]   `csv:"close_price"`
	// PnL is (close price - open price) * shares, so short trades profit when the price falls.
	PnL optional.Option[float64] `csv:"pnl"`
}

// IsClosed reports whether the trade has been realized.
func (t Trade) IsClosed() bool {
	return t.ClosePrice.IsSome() && t.PnL.IsSome()
}

// Side returns the direction of the trade.
func (t Trade) Side() PositionType {
	if t.Shares < 0 {
		return PositionTypeShort
	}

	return PositionTypeLong
}

// Position is a live holding in one instrument, opened at OpenPeriod.
type Position struct {
	TradeID    int
	Symbol     string
	EntryPrice float64
	Shares     float64
	OpenPeriod int
	OpenTime   time.Time
}

// Cost returns |entry price * shares|, the cash committed when the position opened.
func (p Position) Cost() decimal.Decimal {
	return decimal.NewFromFloat(p.EntryPrice).Mul(decimal.NewFromFloat(p.Shares)).Abs()
}

// PnL returns (closePrice - entry price) * shares.
func (p Position) PnL(closePrice float64) decimal.Decimal {
	return decimal.NewFromFloat(closePrice).
		Sub(decimal.NewFromFloat(p.EntryPrice)).
		Mul(decimal.NewFromFloat(p.Shares))
}

// Credit returns the cash returned on close: cost plus PnL.
func (p Position) Credit(closePrice float64) decimal.Decimal {
	return p.Cost().Add(p.PnL(closePrice))
}
