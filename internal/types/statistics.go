package types

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RunStatus string

const (
	RunStatusComplete RunStatus = "complete"
	RunStatusHalted   RunStatus = "halted"
)

type TradePnl struct {
	// Realized PnL. Sum of the pnl of all closed trades.
	RealizedPnL float64 `yaml:"realized_pnl"`
	// Maximum loss. Minimum realized pnl of a single trade.
	MaximumLoss float64 `yaml:"maximum_loss"`
	// Maximum profit. Maximum realized pnl of a single trade.
	MaximumProfit float64 `yaml:"maximum_profit"`
	// Average realized pnl per closed trade.
	AveragePnL float64 `yaml:"average_pnl"`
}

type TradeResult struct {
	// Count of all trades.
	NumberOfTrades int `yaml:"number_of_trades"`
	// Count of trades with positive shares.
	NumberOfLongTrades int `yaml:"number_of_long_trades"`
	// Count of trades with negative shares.
	NumberOfShortTrades int `yaml:"number_of_short_trades"`
	// Count of winning trades that has positive pnl.
	NumberOfWinningTrades int `yaml:"number_of_winning_trades"`
	// Count of losing trades that has negative pnl.
	NumberOfLosingTrades int `yaml:"number_of_losing_trades"`
	// Win rate over closed trades.
	WinRate float64 `yaml:"win_rate"`
}

// TradeStats summarises the trades of a single symbol.
type TradeStats struct {
	Symbol      string      `yaml:"symbol"`
	TradeResult TradeResult `yaml:"trade_result"`
	TradePnl    TradePnl    `yaml:"trade_pnl"`
}

type CashResult struct {
	InitialCash float64 `yaml:"initial_cash"`
	FinalCash   float64 `yaml:"final_cash"`
	// Total return as a fraction of the initial cash.
	TotalReturn float64 `yaml:"total_return"`
	// Maximum drawdown of the cash trajectory as a fraction of its running peak.
	MaxDrawdown float64 `yaml:"max_drawdown"`
}

type Diagnostics struct {
	RejectedOrders    int `yaml:"rejected_orders"`
	DegenerateSignals int `yaml:"degenerate_signals"`
}

// StrategyInfo contains metadata about the strategy that generated stats.
type StrategyInfo struct {
	Name string `yaml:"name" json:"name"`
}

type BacktestStats struct {
	// ID is the unique identifier for this backtest run.
	ID string `yaml:"id" json:"id"`
	// Timestamp is when this backtest run was executed.
	Timestamp time.Time `yaml:"timestamp" json:"timestamp"`
	// EngineVersion is the version of the engine that produced the run.
	EngineVersion string       `yaml:"engine_version" json:"engine_version"`
	Strategy      StrategyInfo `yaml:"strategy" json:"strategy"`
	Status        RunStatus    `yaml:"status" json:"status"`
	// HaltedAtPeriod is set when a strategy error stopped the run.
	HaltedAtPeriod *int     `yaml:"halted_at_period,omitempty" json:"halted_at_period,omitempty"`
	Periods        int      `yaml:"periods" json:"periods"`
	Instruments    []string `yaml:"instruments" json:"instruments"`

	Cash        CashResult   `yaml:"cash"`
	TradeResult TradeResult  `yaml:"trade_result"`
	TradePnl    TradePnl     `yaml:"trade_pnl"`
	Diagnostics Diagnostics  `yaml:"diagnostics"`
	Symbols     []TradeStats `yaml:"symbols"`

	// CashFilePath is the path to the cash trajectory file.
	CashFilePath string `yaml:"cash_file_path" json:"cash_file_path"`
	// TradesFilePath is the path to the trades file.
	TradesFilePath string `yaml:"trades_file_path" json:"trades_file_path"`
	// MarksFilePath is the path to the marks file.
	MarksFilePath string `yaml:"marks_file_path" json:"marks_file_path"`
}

// MaxDrawdown returns the largest peak-to-trough fall of cash relative to the peak.
// Peaks at or below zero are skipped.
func MaxDrawdown(cash []float64) float64 {
	peak := 0.0
	maxDD := 0.0

	for _, c := range cash {
		if c > peak {
			peak = c
		}

		if peak <= 0 {
			continue
		}

		if dd := (peak - c) / peak; dd > maxDD {
			maxDD = dd
		}
	}

	return maxDD
}

func WriteBacktestStats(path string, stats BacktestStats) error {
	data, err := yaml.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal backtest stats to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write backtest stats to file: %w", err)
	}

	return nil
}

func ReadBacktestStats(path string) (BacktestStats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return BacktestStats{}, fmt.Errorf("failed to read backtest stats file: %w", err)
	}

	var stats BacktestStats
	if err := yaml.Unmarshal(data, &stats); err != nil {
		return BacktestStats{}, fmt.Errorf("failed to unmarshal backtest stats: %w", err)
	}

	return stats, nil
}
