package engine

import (
	"math"

	"github.com/GRTran/backtester/internal/types"
)

// SizeOutcome explains why a sizing pass produced only zero orders.
type SizeOutcome string

const (
	SizeOutcomeSized      SizeOutcome = "sized"
	SizeOutcomeDegenerate SizeOutcome = "degenerate"
	SizeOutcomeZeroTotal  SizeOutcome = "zero_total"
	SizeOutcomeNoCash     SizeOutcome = "no_cash"
)

// SizeResult holds one order per instrument, in instrument order.
type SizeResult struct {
	Orders  []types.Order
	Outcome SizeOutcome
}

// OrderSizer turns an alpha vector into signed share counts that together
// commit at most the available cash.
type OrderSizer struct {
	pool *workerPool
}

func NewOrderSizer(pool *workerPool) *OrderSizer {
	return &OrderSizer{pool: pool}
}

// Size rescales alphas onto [-1, +1] with a min-max transform and splits cash in
// proportion to each rescaled alpha over the sum of their absolute values.
// Shares are notional divided by the reference price. Non-finite alphas count as
// zero; an instrument with a non-positive or non-finite price gets no order.
func (s *OrderSizer) Size(symbols []string, alphas []float64, cash float64, prices []float64) SizeResult {
	n := len(symbols)
	result := SizeResult{
		Orders:  make([]types.Order, n),
		Outcome: SizeOutcomeSized,
	}

	for k, symbol := range symbols {
		result.Orders[k] = types.Order{Instrument: k, Symbol: symbol}
	}

	if !isFinite(cash) || cash <= 0 {
		result.Outcome = SizeOutcomeNoCash

		return result
	}

	cleaned := make([]float64, n)

	for k := range cleaned {
		if k < len(alphas) && isFinite(alphas[k]) {
			cleaned[k] = alphas[k]
		}
	}

	lo, hi := minMax(cleaned)
	if hi == lo {
		result.Outcome = SizeOutcomeDegenerate

		return result
	}

	scaled := make([]float64, n)
	_ = s.pool.forEach(n, func(k int) error {
		scaled[k] = 2*(cleaned[k]-lo)/(hi-lo) - 1

		return nil
	})

	// summed in instrument order so the result does not depend on scheduling
	total := 0.0
	for _, a := range scaled {
		total += math.Abs(a)
	}

	if total == 0 {
		result.Outcome = SizeOutcomeZeroTotal

		return result
	}

	_ = s.pool.forEach(n, func(k int) error {
		price := prices[k]
		if !isFinite(price) || price <= 0 {
			return nil
		}

		notional := scaled[k] / total * cash
		result.Orders[k].Shares = notional / price

		return nil
	})

	return result
}

func minMax(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}

	lo, hi := values[0], values[0]

	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	return lo, hi
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
