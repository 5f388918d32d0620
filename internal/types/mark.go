package types

import "time"

type MarkKind string

const (
	// MarkKindDegenerateSignal is recorded when every alpha is equal, so no orders are sized.
	MarkKindDegenerateSignal MarkKind = "degenerate_signal"
	// MarkKindInsufficientCash is recorded when the execution gate rejects an order.
	MarkKindInsufficientCash MarkKind = "insufficient_cash"
	// MarkKindStrategyError is recorded at the period where the run halted.
	MarkKindStrategyError MarkKind = "strategy_error"
	// MarkKindNegativeCash is recorded when losses on shorts leave no cash to size against.
	MarkKindNegativeCash MarkKind = "negative_cash"
)

// Mark is a diagnostic annotation on a period, optionally tied to one instrument.
type Mark struct {
	Period  int       `csv:"period"`
	Time    time.Time `csv:"time"`
	Symbol  string    `csv:"symbol"`
	Kind    MarkKind  `csv:"kind"`
	Title   string    `csv:"title"`
	Message string    `csv:"message"`
}
