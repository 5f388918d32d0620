package engine

import (
	"time"

	"github.com/GRTran/backtester/internal/types"
	"github.com/GRTran/backtester/pkg/errors"
	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
)

// ClosedPosition is the realization of one position at a close price.
type ClosedPosition struct {
	Position   types.Position
	Period     int
	Time       time.Time
	ClosePrice float64
	PnL        decimal.Decimal
	Credit     decimal.Decimal
}

// Settlement is the staged result of closing every open position.
type Settlement struct {
	Closed []ClosedPosition
	Credit decimal.Decimal
}

// PositionBook holds at most one open position per instrument slot.
type PositionBook struct {
	slots []optional.Option[types.Position]
	pool  *workerPool
}

func NewPositionBook(instruments int, pool *workerPool) *PositionBook {
	return &PositionBook{
		slots: make([]optional.Option[types.Position], instruments),
		pool:  pool,
	}
}

// Open inserts a position for instrument k. It fails if k already holds one.
func (b *PositionBook) Open(k int, position types.Position) error {
	if k < 0 || k >= len(b.slots) {
		return errors.Newf(errors.ErrCodeInvalidParameter, "instrument index %d out of range", k)
	}

	if b.slots[k].IsSome() {
		return errors.Newf(errors.ErrCodePositionAlreadyOpen,
			"instrument %s already has an open position", position.Symbol)
	}

	b.slots[k] = optional.Some(position)

	return nil
}

// Get returns the open position of instrument k, if any.
func (b *PositionBook) Get(k int) optional.Option[types.Position] {
	return b.slots[k]
}

// Positions returns the open positions in instrument order.
func (b *PositionBook) Positions() []types.Position {
	var positions []types.Position

	for _, slot := range b.slots {
		if slot.IsSome() {
			positions = append(positions, slot.Unwrap())
		}
	}

	return positions
}

// OpenCount returns the number of open positions.
func (b *PositionBook) OpenCount() int {
	count := 0

	for _, slot := range b.slots {
		if slot.IsSome() {
			count++
		}
	}

	return count
}

// Settle values every open position at prices without touching the book.
// Each position returns |entry * shares| + (close - entry) * shares.
func (b *PositionBook) Settle(period int, t time.Time, prices []float64) Settlement {
	staged := make([]optional.Option[ClosedPosition], len(b.slots))

	_ = b.pool.forEach(len(b.slots), func(k int) error {
		if b.slots[k].IsNone() {
			return nil
		}

		position := b.slots[k].Unwrap()
		closePrice := prices[k]
		staged[k] = optional.Some(ClosedPosition{
			Position:   position,
			Period:     period,
			Time:       t,
			ClosePrice: closePrice,
			PnL:        position.PnL(closePrice),
			Credit:     position.Credit(closePrice),
		})

		return nil
	})

	settlement := Settlement{Credit: decimal.Zero}

	for _, closed := range staged {
		if closed.IsSome() {
			c := closed.Unwrap()
			settlement.Closed = append(settlement.Closed, c)
			settlement.Credit = settlement.Credit.Add(c.Credit)
		}
	}

	return settlement
}

// Clear removes every open position.
func (b *PositionBook) Clear() {
	for k := range b.slots {
		b.slots[k] = optional.None[types.Position]()
	}
}
