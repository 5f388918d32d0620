package engine

import (
	"context"

	"github.com/GRTran/backtester/internal/runtime"
	"github.com/GRTran/backtester/internal/types"
)

// Lifecycle callback types for backtest phases.
// Callbacks with an error return abort the run if they return an error.

// OnRunStartCallback is called once the series and strategy are resolved, before period 0.
// runID is a unique identifier for this run.
type OnRunStartCallback func(runID string, strategyName string, totalPeriods int) error

// OnPeriodEndCallback is called after period has been committed.
type OnPeriodEndCallback func(period int, totalPeriods int, cash float64) error

// OnRunEndCallback is called when the run stops for any reason (always called via defer).
type OnRunEndCallback func(runID string, state RunState)

// LifecycleCallbacks holds all lifecycle callback functions for the backtest engine.
// All fields are pointers - nil means no callback will be invoked.
type LifecycleCallbacks struct {
	OnRunStart  *OnRunStartCallback
	OnPeriodEnd *OnPeriodEndCallback
	OnRunEnd    *OnRunEndCallback
}

type RunStatus string

const (
	RunStatusPending  RunStatus = "pending"
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusHalted   RunStatus = "halted"
)

// RunState describes where a run stopped.
type RunState struct {
	Status RunStatus
	// Period is the next period to process while running, N after completion,
	// or the period that failed when halted.
	Period int
	// Err is the error that halted the run.
	Err error
}

//nolint:interfacebloat // Engine is a core interface that naturally requires multiple methods
type Engine interface {
	// Initialize the engine with the given YAML configuration.
	Initialize(config string) error
	// LoadStrategy sets the strategy that produces alphas for the run.
	LoadStrategy(strategy runtime.StrategyRuntime) error
	// SetPriceSeries sets the series the run is simulated against.
	SetPriceSeries(series *types.PriceSeries) error
	// SetContext sets the opaque value passed to every strategy invocation.
	SetContext(value any) error
	// Run simulates the strategy over every period of the series.
	// The context can be used to abort the run between periods.
	// A strategy contract violation halts the run and is returned as *errors.StrategyError.
	Run(ctx context.Context, callbacks LifecycleCallbacks) error
	// Cash returns the cash trajectory up to the last completed period.
	Cash() []float64
	// Trades returns the trade history log.
	Trades() []types.Trade
	// Marks returns the diagnostic marks recorded during the run.
	Marks() ([]types.Mark, error)
	// State returns the current run state.
	State() RunState
	// Stats summarises the last run.
	Stats() (types.BacktestStats, error)
	// WriteResults exports stats, cash, trades and marks into folder.
	WriteResults(folder string) error
	// GetConfigSchema returns the schema of the engine configuration
	GetConfigSchema() (string, error)
}
