package engine

import "github.com/GRTran/backtester/internal/types"

// ExecutionGate admits an order only when its whole notional fits in the cash
// balance. It looks at the scalar balance alone, so earlier admissions in the
// same period can crowd out later orders and leave cash idle.
type ExecutionGate struct{}

func NewExecutionGate() *ExecutionGate {
	return &ExecutionGate{}
}

// Admit reports whether |shares * price| <= cash. There is no partial admission.
func (g *ExecutionGate) Admit(order types.Order, price float64, cash float64) bool {
	if order.IsZero() || !isFinite(price) || price <= 0 {
		return false
	}

	return order.Notional(price) <= cash
}
