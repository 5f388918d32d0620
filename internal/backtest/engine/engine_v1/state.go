package engine

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/GRTran/backtester/internal/logger"
	"github.com/GRTran/backtester/internal/types"
	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"
)

// BacktestState is the results store of a run. The engine records the cash
// trajectory and trade log into it once the period loop stops; stats and
// exports are computed from these tables.
type BacktestState struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

func NewBacktestState(logger *logger.Logger) (*BacktestState, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		logger.Error("Failed to open database", zap.Error(err))

		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &BacktestState{
		logger: logger,
		db:     db,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}, nil
}

// Initialize creates the cash and trades tables.
func (b *BacktestState) Initialize() error {
	_, err := b.db.Exec(`
		CREATE TABLE IF NOT EXISTS cash (
			period INTEGER PRIMARY KEY,
			time TIMESTAMP,
			cash DOUBLE
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create cash table: %w", err)
	}

	_, err = b.db.Exec(`
		CREATE TABLE IF NOT EXISTS trades (
			id INTEGER PRIMARY KEY,
			symbol TEXT,
			open_period INTEGER,
			open_time TIMESTAMP,
			open_price DOUBLE,
			shares DOUBLE,
			close_period INTEGER,
			close_time TIMESTAMP,
			close_price DOUBLE,
			pnl DOUBLE
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create trades table: %w", err)
	}

	return nil
}

// Record stores the cash trajectory and the trade log in one transaction.
// times[i] is the timestamp of cash[i].
func (b *BacktestState) Record(times []time.Time, cash []float64, trades []types.Trade) error {
	if len(cash) > len(times) {
		return fmt.Errorf("cash has %d entries but only %d timestamps", len(cash), len(times))
	}

	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	cashStmt, err := tx.Prepare(`INSERT INTO cash (period, time, cash) VALUES (?, ?, ?)`)
	if err != nil {
		tx.Rollback()

		return fmt.Errorf("failed to prepare cash insert: %w", err)
	}
	defer cashStmt.Close()

	for i, c := range cash {
		if _, err := cashStmt.Exec(i, times[i], c); err != nil {
			tx.Rollback()

			return fmt.Errorf("failed to insert cash for period %d: %w", i, err)
		}
	}

	tradeStmt, err := tx.Prepare(`
		INSERT INTO trades (id, symbol, open_period, open_time, open_price, shares, close_period, close_time, close_price, pnl)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()

		return fmt.Errorf("failed to prepare trade insert: %w", err)
	}
	defer tradeStmt.Close()

	for _, t := range trades {
		_, err := tradeStmt.Exec(
			t.ID, t.Symbol, t.OpenPeriod, t.OpenTime, t.OpenPrice, t.Shares,
			nullable(t.ClosePeriod), nullable(t.CloseTime), nullable(t.ClosePrice), nullable(t.PnL),
		)
		if err != nil {
			tx.Rollback()

			return fmt.Errorf("failed to insert trade %d: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit results: %w", err)
	}

	b.logger.Debug("Recorded backtest results",
		zap.Int("periods", len(cash)),
		zap.Int("trades", len(trades)),
	)

	return nil
}

// GetCash returns the recorded cash trajectory in period order.
func (b *BacktestState) GetCash() ([]float64, error) {
	rows, err := b.sq.
		Select("cash").
		From("cash").
		OrderBy("period ASC").
		RunWith(b.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query cash: %w", err)
	}
	defer rows.Close()

	var cash []float64

	for rows.Next() {
		var c float64
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan cash: %w", err)
		}

		cash = append(cash, c)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cash: %w", err)
	}

	return cash, nil
}

// GetAllTrades returns all recorded trades ordered by id.
func (b *BacktestState) GetAllTrades() ([]types.Trade, error) {
	rows, err := b.sq.
		Select(
			"id", "symbol", "open_period", "open_time", "open_price", "shares",
			"close_period", "close_time", "close_price", "pnl",
		).
		From("trades").
		OrderBy("id ASC").
		RunWith(b.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	var trades []types.Trade

	for rows.Next() {
		var trade types.Trade

		var closePeriod sql.NullInt64

		var closeTime sql.NullTime

		var closePrice, pnl sql.NullFloat64

		err := rows.Scan(
			&trade.ID,
			&trade.Symbol,
			&trade.OpenPeriod,
			&trade.OpenTime,
			&trade.OpenPrice,
			&trade.Shares,
			&closePeriod,
			&closeTime,
			&closePrice,
			&pnl,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}

		if closePeriod.Valid {
			trade.ClosePeriod = optional.Some(int(closePeriod.Int64))
		}

		if closeTime.Valid {
			trade.CloseTime = optional.Some(closeTime.Time)
		}

		if closePrice.Valid {
			trade.ClosePrice = optional.Some(closePrice.Float64)
		}

		if pnl.Valid {
			trade.PnL = optional.Some(pnl.Float64)
		}

		trades = append(trades, trade)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trades: %w", err)
	}

	return trades, nil
}

func (b *BacktestState) calculateTradeResult(where squirrel.Sqlizer) (types.TradeResult, error) {
	query := b.sq.
		Select(
			"COUNT(*)",
			"COUNT(*) FILTER (WHERE shares > 0)",
			"COUNT(*) FILTER (WHERE shares < 0)",
			"COUNT(*) FILTER (WHERE pnl > 0)",
			"COUNT(*) FILTER (WHERE pnl < 0)",
			"COUNT(pnl)",
		).
		From("trades")
	if where != nil {
		query = query.Where(where)
	}

	var result types.TradeResult

	var closed int

	err := query.RunWith(b.db).QueryRow().Scan(
		&result.NumberOfTrades,
		&result.NumberOfLongTrades,
		&result.NumberOfShortTrades,
		&result.NumberOfWinningTrades,
		&result.NumberOfLosingTrades,
		&closed,
	)
	if err != nil {
		return types.TradeResult{}, fmt.Errorf("failed to calculate trade result: %w", err)
	}

	if closed > 0 {
		result.WinRate = float64(result.NumberOfWinningTrades) / float64(closed)
	}

	return result, nil
}

func (b *BacktestState) calculateTradePnl(where squirrel.Sqlizer) (types.TradePnl, error) {
	query := b.sq.
		Select(
			"COALESCE(SUM(pnl), 0)",
			"COALESCE(MIN(pnl), 0)",
			"COALESCE(MAX(pnl), 0)",
			"COALESCE(AVG(pnl), 0)",
		).
		From("trades")
	if where != nil {
		query = query.Where(where)
	}

	var pnl types.TradePnl

	err := query.RunWith(b.db).QueryRow().Scan(
		&pnl.RealizedPnL,
		&pnl.MaximumLoss,
		&pnl.MaximumProfit,
		&pnl.AveragePnL,
	)
	if err != nil {
		return types.TradePnl{}, fmt.Errorf("failed to calculate trade pnl: %w", err)
	}

	return pnl, nil
}

// GetStats computes run-wide and per-symbol statistics from the recorded tables.
func (b *BacktestState) GetStats(initialCash float64) (types.BacktestStats, error) {
	var stats types.BacktestStats

	tradeResult, err := b.calculateTradeResult(nil)
	if err != nil {
		return stats, err
	}

	tradePnl, err := b.calculateTradePnl(nil)
	if err != nil {
		return stats, err
	}

	cash, err := b.GetCash()
	if err != nil {
		return stats, err
	}

	stats.TradeResult = tradeResult
	stats.TradePnl = tradePnl
	stats.Periods = len(cash)
	stats.Cash = types.CashResult{
		InitialCash: initialCash,
		FinalCash:   initialCash,
		MaxDrawdown: types.MaxDrawdown(cash),
	}

	if len(cash) > 0 {
		stats.Cash.FinalCash = cash[len(cash)-1]
	}

	if initialCash != 0 {
		stats.Cash.TotalReturn = (stats.Cash.FinalCash - initialCash) / initialCash
	}

	rows, err := b.sq.
		Select("DISTINCT symbol").
		From("trades").
		OrderBy("symbol").
		RunWith(b.db).
		Query()
	if err != nil {
		return stats, fmt.Errorf("failed to get unique symbols: %w", err)
	}
	defer rows.Close()

	var symbols []string

	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return stats, fmt.Errorf("failed to scan symbol: %w", err)
		}

		symbols = append(symbols, symbol)
	}

	if err = rows.Err(); err != nil {
		return stats, fmt.Errorf("error iterating symbols: %w", err)
	}

	for _, symbol := range symbols {
		symbolResult, err := b.calculateTradeResult(squirrel.Eq{"symbol": symbol})
		if err != nil {
			return stats, err
		}

		symbolPnl, err := b.calculateTradePnl(squirrel.Eq{"symbol": symbol})
		if err != nil {
			return stats, err
		}

		stats.Symbols = append(stats.Symbols, types.TradeStats{
			Symbol:      symbol,
			TradeResult: symbolResult,
			TradePnl:    symbolPnl,
		})
	}

	return stats, nil
}

// Write exports the cash and trades tables into folder.
func (b *BacktestState) Write(folder string, format ResultsFormat) (cashPath string, tradesPath string, err error) {
	if err := os.MkdirAll(folder, 0755); err != nil {
		return "", "", fmt.Errorf("failed to create directory: %w", err)
	}

	cashPath, err = exportTable(b.db, "cash", "period", folder, format)
	if err != nil {
		return "", "", err
	}

	tradesPath, err = exportTable(b.db, "trades", "id", folder, format)
	if err != nil {
		return "", "", err
	}

	b.logger.Info("Successfully exported backtest results",
		zap.String("cash", cashPath),
		zap.String("trades", tradesPath),
	)

	return cashPath, tradesPath, nil
}

// Cleanup resets the database state.
func (b *BacktestState) Cleanup() error {
	// Use raw SQL for dropping tables - Squirrel doesn't have DROP syntax
	_, err := b.db.Exec(`
		DROP TABLE IF EXISTS trades;
		DROP TABLE IF EXISTS cash;
	`)
	if err != nil {
		return fmt.Errorf("failed to cleanup tables: %w", err)
	}

	return b.Initialize()
}

// Close closes the database connection.
func (b *BacktestState) Close() error {
	if b == nil || b.db == nil {
		return nil
	}

	return b.db.Close()
}
