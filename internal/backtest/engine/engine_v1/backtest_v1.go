package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/GRTran/backtester/internal/backtest/engine"
	"github.com/GRTran/backtester/internal/logger"
	"github.com/GRTran/backtester/internal/runtime"
	"github.com/GRTran/backtester/internal/types"
	"github.com/GRTran/backtester/internal/version"
	"github.com/GRTran/backtester/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

type BacktestEngineV1 struct {
	config   BacktestEngineV1Config
	strategy runtime.StrategyRuntime
	series   *types.PriceSeries
	context  any
	log      *logger.Logger
	state    *BacktestState
	marker   *BacktestMarker
	pool     *workerPool
	sizer    *OrderSizer
	gate     *ExecutionGate

	// run state, reset by every Run
	runID      string
	startedAt  time.Time
	window     *types.PriceSeries
	book       *PositionBook
	trades     *TradeLog
	cash       []float64
	completed  int
	runState   engine.RunState
	rejected   int
	degenerate int
}

func NewBacktestEngineV1() engine.Engine {
	return &BacktestEngineV1{
		config:   EmptyConfig(),
		strategy: nil,
		series:   nil,
		context:  nil,
		log:      nil,
		state:    nil,
		marker:   nil,
		gate:     NewExecutionGate(),
		runState: engine.RunState{Status: engine.RunStatusPending},
	}
}

// Initialize implements engine.Engine.
func (b *BacktestEngineV1) Initialize(config string) error {
	cfg := EmptyConfig()

	err := yaml.Unmarshal([]byte(config), &cfg)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse engine config", err)
	}

	if err := cfg.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "engine config is invalid", err)
	}

	if cfg.EngineVersion != "" {
		if err := version.CheckVersionCompatibility(version.GetVersion(), cfg.EngineVersion); err != nil {
			return err
		}
	}

	b.config = cfg

	b.log, err = logger.NewLoggerWithLevel(cfg.LogLevel)
	if err != nil {
		return errors.Wrap(errors.ErrCodeBacktestInitFailed, "failed to create logger", err)
	}

	b.log.Debug("Backtest engine initialized",
		zap.String("config", config),
	)

	b.state, err = NewBacktestState(b.log)
	if err != nil {
		return errors.Wrap(errors.ErrCodeBacktestInitFailed, "failed to create backtest state", err)
	}

	if err := b.state.Initialize(); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestInitFailed, "failed to initialize state", err)
	}

	b.marker, err = NewBacktestMarker(b.log)
	if err != nil {
		return errors.Wrap(errors.ErrCodeBacktestInitFailed, "failed to create backtest marker", err)
	}

	b.pool = newWorkerPool(cfg.Workers)
	b.sizer = NewOrderSizer(b.pool)

	return nil
}

// LoadStrategy implements engine.Engine.
func (b *BacktestEngineV1) LoadStrategy(strategy runtime.StrategyRuntime) error {
	if strategy == nil {
		return errors.New(errors.ErrCodeBacktestNoStrategy, "strategy is nil")
	}

	b.strategy = strategy

	if b.log != nil {
		b.log.Debug("Strategy loaded", zap.String("strategy", strategy.Name()))
	}

	return nil
}

// SetPriceSeries implements engine.Engine.
func (b *BacktestEngineV1) SetPriceSeries(series *types.PriceSeries) error {
	if series == nil {
		return errors.New(errors.ErrCodeBacktestNoPriceSeries, "price series is nil")
	}

	if err := series.Validate(types.FieldOpen, types.FieldAdjClose); err != nil {
		return err
	}

	b.series = series

	return nil
}

// SetContext implements engine.Engine.
func (b *BacktestEngineV1) SetContext(value any) error {
	b.context = value

	return nil
}

// Run implements engine.Engine.
func (b *BacktestEngineV1) Run(ctx context.Context, callbacks engine.LifecycleCallbacks) (err error) {
	if err := b.preRunCheck(); err != nil {
		return err
	}

	if err := b.reset(); err != nil {
		return err
	}

	total := b.window.Len()

	defer func() {
		if err != nil && b.runState.Status == engine.RunStatusRunning {
			b.runState = engine.RunState{Status: engine.RunStatusHalted, Period: b.completed, Err: err}
		}

		if recordErr := b.state.Record(b.window.Times(), b.Cash(), b.trades.Trades()); recordErr != nil {
			b.log.Error("Failed to record results", zap.Error(recordErr))

			if err == nil {
				err = recordErr
			}
		}

		if callbacks.OnRunEnd != nil {
			(*callbacks.OnRunEnd)(b.runID, b.runState)
		}
	}()

	if callbacks.OnRunStart != nil {
		if err := (*callbacks.OnRunStart)(b.runID, b.strategy.Name(), total); err != nil {
			return errors.Wrap(errors.ErrCodeCallbackFailed, "run start callback failed", err)
		}
	}

	b.log.Info("Backtest started",
		zap.String("run_id", b.runID),
		zap.String("strategy", b.strategy.Name()),
		zap.Int("periods", total),
		zap.Int("instruments", b.window.NumInstruments()),
		zap.Float64("initial_cash", b.config.InitialCash),
	)

	for i := 0; i < total; i++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			b.log.Warn("Backtest aborted", zap.Int("period", i), zap.Error(ctxErr))

			return errors.Wrap(errors.ErrCodeBacktestAborted, "backtest aborted between periods", ctxErr)
		}

		if err := b.step(i); err != nil {
			b.runState = engine.RunState{Status: engine.RunStatusHalted, Period: i, Err: err}
			b.log.Warn("Backtest halted",
				zap.Int("period", i),
				zap.Error(err),
			)

			if markErr := b.marker.Mark(types.Mark{
				Period:  i,
				Time:    b.window.Time(i),
				Kind:    types.MarkKindStrategyError,
				Title:   "Run halted",
				Message: err.Error(),
			}); markErr != nil {
				b.log.Error("Failed to record halt mark", zap.Error(markErr))
			}

			return err
		}

		b.completed = i + 1
		b.runState.Period = b.completed

		if callbacks.OnPeriodEnd != nil {
			if err := (*callbacks.OnPeriodEnd)(i, total, b.cash[i]); err != nil {
				return errors.Wrap(errors.ErrCodeCallbackFailed, "period end callback failed", err)
			}
		}
	}

	b.runState = engine.RunState{Status: engine.RunStatusComplete, Period: total}

	b.log.Info("Backtest complete",
		zap.String("run_id", b.runID),
		zap.Float64("final_cash", b.cash[total-1]),
		zap.Int("trades", b.trades.Len()),
		zap.Int("rejected_orders", b.rejected),
	)

	return nil
}

// step runs period i: close, size, open, then commits. Nothing is written
// unless every stage succeeds.
func (b *BacktestEngineV1) step(i int) error {
	n := b.window.NumInstruments()
	last := b.window.Len() - 1
	t := b.window.Time(i)
	symbols := b.window.Instruments()

	b.log.Debug("Processing period",
		zap.Int("period", i),
		zap.Time("time", t),
		zap.Int("open_positions", b.book.OpenCount()),
	)

	// close at this period's adjusted close
	settlement := b.book.Settle(i, t, b.window.Row(i, types.FieldAdjClose))
	cashNow := decimal.NewFromFloat(b.cash[i]).Add(settlement.Credit)
	cashNowFloat, _ := cashNow.Float64()

	var marks []types.Mark

	// size from history up to and including period i
	orders := make([]types.Order, n)

	if i > 0 && i < last {
		alphas, err := runtime.CallAlphas(b.strategy, i, b.window.Upto(i), b.context)
		if err != nil {
			return err
		}

		sized := b.sizer.Size(symbols, alphas, cashNowFloat, b.window.Row(i, types.FieldAdjClose))
		orders = sized.Orders

		switch sized.Outcome {
		case SizeOutcomeDegenerate:
			b.log.Debug("Degenerate alpha vector, no orders placed", zap.Int("period", i))
			marks = append(marks, types.Mark{
				Period:  i,
				Time:    t,
				Kind:    types.MarkKindDegenerateSignal,
				Title:   "Degenerate signal",
				Message: "all alphas are equal",
			})
		case SizeOutcomeNoCash:
			b.log.Debug("No cash available to size orders", zap.Int("period", i), zap.Float64("cash", cashNowFloat))
			marks = append(marks, types.Mark{
				Period:  i,
				Time:    t,
				Kind:    types.MarkKindNegativeCash,
				Title:   "No cash",
				Message: fmt.Sprintf("cash %v leaves nothing to allocate", cashNowFloat),
			})
		}
	}

	// open at the next period's open against the running balance
	var opened []types.Position

	nextCash := cashNow
	rejected := 0

	if i < last {
		nextTime := b.window.Time(i + 1)
		openPrices := b.window.Row(i+1, types.FieldOpen)
		nextID := b.trades.NextID()

		for k, order := range orders {
			if order.IsZero() {
				continue
			}

			price := openPrices[k]
			running, _ := nextCash.Float64()

			if !b.gate.Admit(order, price, running) {
				rejected++

				marks = append(marks, types.Mark{
					Period: i,
					Time:   t,
					Symbol: order.Symbol,
					Kind:   types.MarkKindInsufficientCash,
					Title:  "Order rejected",
					Message: fmt.Sprintf("notional %v at open %v exceeds cash %v",
						order.Notional(price), price, running),
				})

				continue
			}

			position := types.Position{
				TradeID:    nextID,
				Symbol:     order.Symbol,
				EntryPrice: price,
				Shares:     order.Shares,
				OpenPeriod: i + 1,
				OpenTime:   nextTime,
			}
			nextID++

			opened = append(opened, position)
			nextCash = nextCash.Sub(position.Cost())
		}
	}

	return b.commit(i, cashNowFloat, nextCash, settlement, opened, marks, rejected)
}

func (b *BacktestEngineV1) commit(i int, cashNow float64, nextCash decimal.Decimal, settlement Settlement, opened []types.Position, marks []types.Mark, rejected int) error {
	for _, closed := range settlement.Closed {
		pnl, _ := closed.PnL.Float64()
		if err := b.trades.Close(closed.Position.TradeID, closed.Period, closed.Time, closed.ClosePrice, pnl); err != nil {
			return err
		}
	}

	b.book.Clear()
	b.cash[i] = cashNow

	if i+1 < len(b.cash) {
		b.cash[i+1], _ = nextCash.Float64()
	}

	for _, position := range opened {
		k, _ := b.window.InstrumentIndex(position.Symbol)

		id := b.trades.Append(types.Trade{
			Symbol:     position.Symbol,
			OpenPeriod: position.OpenPeriod,
			OpenTime:   position.OpenTime,
			OpenPrice:  position.EntryPrice,
			Shares:     position.Shares,
		})
		if id != position.TradeID {
			return errors.Newf(errors.ErrCodeUnknown, "trade id %d does not match staged id %d", id, position.TradeID)
		}

		if err := b.book.Open(k, position); err != nil {
			return err
		}
	}

	degenerate, err := recordMarks(b.marker, marks)
	if err != nil {
		return err
	}

	b.degenerate += degenerate

	b.rejected += rejected

	return nil
}

// Cash implements engine.Engine.
func (b *BacktestEngineV1) Cash() []float64 {
	if b.cash == nil {
		return nil
	}

	n := min(b.completed+1, len(b.cash))

	return append([]float64(nil), b.cash[:n]...)
}

// Trades implements engine.Engine.
func (b *BacktestEngineV1) Trades() []types.Trade {
	if b.trades == nil {
		return nil
	}

	return b.trades.Trades()
}

// Marks implements engine.Engine.
func (b *BacktestEngineV1) Marks() ([]types.Mark, error) {
	if b.marker == nil {
		return nil, errors.New(errors.ErrCodeBacktestNotInitialized, "engine is not initialized")
	}

	return b.marker.GetMarks()
}

// State implements engine.Engine.
func (b *BacktestEngineV1) State() engine.RunState {
	return b.runState
}

// Stats implements engine.Engine.
func (b *BacktestEngineV1) Stats() (types.BacktestStats, error) {
	if b.state == nil {
		return types.BacktestStats{}, errors.New(errors.ErrCodeBacktestStateNil, "backtest state is nil")
	}

	if b.runState.Status == engine.RunStatusPending {
		return types.BacktestStats{}, errors.New(errors.ErrCodeBacktestNotInitialized, "backtest has not been run")
	}

	stats, err := b.state.GetStats(b.config.InitialCash)
	if err != nil {
		return types.BacktestStats{}, fmt.Errorf("failed to get stats: %w", err)
	}

	stats.ID = b.runID
	stats.Timestamp = b.startedAt
	stats.EngineVersion = version.GetVersion()
	stats.Strategy = types.StrategyInfo{Name: b.strategy.Name()}
	stats.Instruments = b.window.Instruments()
	stats.Diagnostics = types.Diagnostics{
		RejectedOrders:    b.rejected,
		DegenerateSignals: b.degenerate,
	}

	switch b.runState.Status {
	case engine.RunStatusHalted:
		stats.Status = types.RunStatusHalted
		period := b.runState.Period
		stats.HaltedAtPeriod = &period
	default:
		stats.Status = types.RunStatusComplete
	}

	return stats, nil
}

// WriteResults implements engine.Engine.
func (b *BacktestEngineV1) WriteResults(folder string) error {
	stats, err := b.Stats()
	if err != nil {
		return err
	}

	format := b.config.ResultsFormat

	cashPath, tradesPath, err := b.state.Write(folder, format)
	if err != nil {
		return errors.Wrap(errors.ErrCodeBacktestWriteFailed, "failed to write state", err)
	}

	marksPath, err := b.marker.Write(folder, format)
	if err != nil {
		return errors.Wrap(errors.ErrCodeBacktestWriteFailed, "failed to write marks", err)
	}

	stats.CashFilePath = cashPath
	stats.TradesFilePath = tradesPath
	stats.MarksFilePath = marksPath

	if err := types.WriteBacktestStats(filepath.Join(folder, "stats.yaml"), stats); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestWriteFailed, "failed to write stats", err)
	}

	return nil
}

// GetConfigSchema implements engine.Engine.
func (b *BacktestEngineV1) GetConfigSchema() (string, error) {
	config := b.config

	schema, err := config.GenerateSchemaJSON()
	if err != nil {
		return "", fmt.Errorf("failed to generate schema: %w", err)
	}

	return schema, nil
}

// Config returns the parsed engine configuration.
func (b *BacktestEngineV1) Config() BacktestEngineV1Config {
	return b.config
}

func (b *BacktestEngineV1) reset() error {
	start := time.Time{}
	end := time.Time{}

	if b.config.StartTime.IsSome() {
		start = b.config.StartTime.Unwrap()
	}

	if b.config.EndTime.IsSome() {
		end = b.config.EndTime.Unwrap()
	}

	window, err := b.series.Window(start, end)
	if err != nil {
		return err
	}

	if err := b.state.Cleanup(); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestInitFailed, "failed to cleanup state", err)
	}

	if err := b.marker.Cleanup(); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestInitFailed, "failed to cleanup marker", err)
	}

	b.window = window
	b.runID = uuid.New().String()
	b.startedAt = time.Now().UTC()
	b.book = NewPositionBook(window.NumInstruments(), b.pool)
	b.trades = NewTradeLog()
	b.cash = make([]float64, window.Len())
	b.cash[0] = b.config.InitialCash
	b.completed = 0
	b.rejected = 0
	b.degenerate = 0
	b.runState = engine.RunState{Status: engine.RunStatusRunning, Period: 0}

	return nil
}

func (b *BacktestEngineV1) preRunCheck() error {
	if b.log == nil || b.state == nil || b.marker == nil {
		return errors.New(errors.ErrCodeBacktestNotInitialized, "engine is not initialized")
	}

	if b.strategy == nil {
		b.log.Error("No strategy loaded")

		return errors.New(errors.ErrCodeBacktestNoStrategy, "no strategy loaded")
	}

	if b.series == nil {
		b.log.Error("No price series set")

		return errors.New(errors.ErrCodeBacktestNoPriceSeries, "no price series set")
	}

	return nil
}
