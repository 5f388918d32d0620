package writer

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/GRTran/backtester/internal/logger"
	"github.com/GRTran/backtester/internal/types"
	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"
)

// DuckDBWriter buffers bars in an in-memory DuckDB table and exports them on
// Finalize. The export format follows the output extension: .csv writes a
// long-format CSV with a header, anything else writes parquet.
type DuckDBWriter struct {
	db         *sql.DB
	tx         *sql.Tx
	stmt       *sql.Stmt
	outputPath string
	rows       int
	logger     *logger.Logger
}

// NewDuckDBWriter creates a new DuckDBWriter exporting to outputPath.
func NewDuckDBWriter(outputPath string, logger *logger.Logger) MarketDataWriter {
	return &DuckDBWriter{
		outputPath: outputPath,
		logger:     logger,
	}
}

// Initialize opens the database, creates the market_data table, begins a
// transaction and prepares the insert statement.
func (w *DuckDBWriter) Initialize() (err error) {
	w.db, err = sql.Open("duckdb", ":memory:")
	if err != nil {
		return fmt.Errorf("failed to open DuckDB connection: %w", err)
	}

	_, err = w.db.Exec(`
		CREATE TABLE IF NOT EXISTS market_data (
			id TEXT,
			time TIMESTAMP,
			symbol TEXT,
			open DOUBLE,
			high DOUBLE,
			low DOUBLE,
			close DOUBLE,
			adj_close DOUBLE,
			volume DOUBLE
		)
	`)
	if err != nil {
		w.db.Close()

		return fmt.Errorf("failed to create table: %w", err)
	}

	w.tx, err = w.db.Begin()
	if err != nil {
		w.db.Close()

		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	w.stmt, err = w.tx.Prepare(`
		INSERT INTO market_data (id, time, symbol, open, high, low, close, adj_close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		w.tx.Rollback()
		w.db.Close()

		return fmt.Errorf("failed to prepare statement: %w", err)
	}

	w.rows = 0

	return nil
}

// Write inserts one bar. Bars without an id get a fresh uuid.
func (w *DuckDBWriter) Write(data types.MarketData) error {
	if w.stmt == nil {
		return fmt.Errorf("writer not initialized or statement is nil")
	}

	id := data.Id
	if id == "" {
		id = uuid.New().String()
	}

	_, err := w.stmt.Exec(
		id,
		data.Time.UTC(),
		data.Symbol,
		data.Open,
		data.High,
		data.Low,
		data.Close,
		data.AdjClose,
		data.Volume,
	)
	if err != nil {
		return fmt.Errorf("failed to insert data: %w", err)
	}

	w.rows++

	return nil
}

// Finalize commits the transaction and exports the table ordered by time and symbol.
func (w *DuckDBWriter) Finalize() (outputPath string, err error) {
	if w.tx == nil {
		return "", fmt.Errorf("writer not initialized or transaction is nil")
	}

	if err = w.tx.Commit(); err != nil {
		w.tx.Rollback()

		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	w.tx = nil

	format := "(FORMAT PARQUET)"
	if strings.EqualFold(filepath.Ext(w.outputPath), ".csv") {
		format = "(FORMAT CSV, HEADER)"
	}

	_, err = w.db.Exec(fmt.Sprintf(`COPY (SELECT * FROM market_data ORDER BY time, symbol) TO '%s' %s`,
		strings.ReplaceAll(w.outputPath, "'", "''"), format))
	if err != nil {
		return "", fmt.Errorf("failed to export market data: %w", err)
	}

	w.logger.Info("Exported market data", zap.String("path", w.outputPath), zap.Int("rows", w.rows))

	return w.outputPath, nil
}

// Close releases the statement and connection, rolling back an unfinished transaction.
func (w *DuckDBWriter) Close() error {
	var closeErrors []error

	if w.stmt != nil {
		if err := w.stmt.Close(); err != nil {
			closeErrors = append(closeErrors, fmt.Errorf("failed to close statement: %w", err))
		}

		w.stmt = nil
	}

	if w.tx != nil {
		if err := w.tx.Rollback(); err != nil {
			w.logger.Warn("Failed to rollback transaction during close", zap.Error(err))
		}

		w.tx = nil
	}

	if w.db != nil {
		if err := w.db.Close(); err != nil {
			closeErrors = append(closeErrors, fmt.Errorf("failed to close db connection: %w", err))
		}

		w.db = nil
	}

	return errors.Join(closeErrors...)
}

// GetOutputPath implements MarketDataWriter.
func (w *DuckDBWriter) GetOutputPath() string {
	return w.outputPath
}
