package engine

import (
	"time"

	"github.com/GRTran/backtester/internal/types"
	"github.com/GRTran/backtester/pkg/errors"
	"github.com/moznion/go-optional"
)

// TradeLog is the append-only trade history of a run. Trade ids are their
// position in the log, starting at 0.
type TradeLog struct {
	trades []types.Trade
}

func NewTradeLog() *TradeLog {
	return &TradeLog{}
}

// NextID returns the id the next appended trade will receive.
func (l *TradeLog) NextID() int {
	return len(l.trades)
}

// Append records a newly opened trade and returns its id.
func (l *TradeLog) Append(trade types.Trade) int {
	trade.ID = len(l.trades)
	l.trades = append(l.trades, trade)

	return trade.ID
}

// Close sets the close fields of trade id.
func (l *TradeLog) Close(id int, period int, t time.Time, price float64, pnl float64) error {
	if id < 0 || id >= len(l.trades) {
		return errors.Newf(errors.ErrCodeTradeNotFound, "trade %d not found", id)
	}

	if l.trades[id].IsClosed() {
		return errors.Newf(errors.ErrCodePositionNotFound, "trade %d is already closed", id)
	}

	l.trades[id].ClosePeriod = optional.Some(period)
	l.trades[id].CloseTime = optional.Some(t)
	l.trades[id].ClosePrice = optional.Some(price)
	l.trades[id].PnL = optional.Some(pnl)

	return nil
}

// Trades returns a copy of the log.
func (l *TradeLog) Trades() []types.Trade {
	return append([]types.Trade(nil), l.trades...)
}

func (l *TradeLog) Len() int {
	return len(l.trades)
}

func (l *TradeLog) Reset() {
	l.trades = nil
}
