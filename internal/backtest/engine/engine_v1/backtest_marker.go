package engine

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/GRTran/backtester/internal/logger"
	"github.com/GRTran/backtester/internal/marker"
	"github.com/GRTran/backtester/internal/types"
	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"
)

var _ marker.Marker = (*BacktestMarker)(nil)

// recordMarks writes the marks of a committed period and reports how many
// were degenerate signals.
func recordMarks(m marker.Marker, marks []types.Mark) (int, error) {
	degenerate := 0

	for _, mark := range marks {
		if err := m.Mark(mark); err != nil {
			return degenerate, fmt.Errorf("failed to record mark: %w", err)
		}

		if mark.Kind == types.MarkKindDegenerateSignal {
			degenerate++
		}
	}

	return degenerate, nil
}

// BacktestMarker implements the Marker interface for backtesting purposes.
// It records diagnostic marks in a DuckDB database.
type BacktestMarker struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewBacktestMarker creates a new instance of BacktestMarker.
func NewBacktestMarker(logger *logger.Logger) (*BacktestMarker, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		logger.Error("Failed to open database", zap.Error(err))

		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		logger.Error("Failed to connect to database", zap.Error(err))
		db.Close()

		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	marker := &BacktestMarker{
		logger: logger,
		db:     db,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}

	if err := marker.initialize(); err != nil {
		db.Close()

		return nil, err
	}

	return marker, nil
}

// Mark implements the Marker interface.
func (m *BacktestMarker) Mark(mark types.Mark) error {
	if m == nil || m.db == nil {
		return fmt.Errorf("backtest marker or database is nil")
	}

	var nextID int

	err := m.db.QueryRow("SELECT nextval('mark_id_seq')").Scan(&nextID)
	if err != nil {
		return fmt.Errorf("failed to get next ID from sequence: %w", err)
	}

	insertQuery := m.sq.
		Insert("marks").
		Columns("id", "period", "time", "symbol", "kind", "title", "message").
		Values(nextID, mark.Period, mark.Time, mark.Symbol, string(mark.Kind), mark.Title, mark.Message).
		RunWith(m.db)

	if _, err := insertQuery.Exec(); err != nil {
		return fmt.Errorf("failed to insert mark: %w", err)
	}

	return nil
}

// GetMarks implements the Marker interface.
func (m *BacktestMarker) GetMarks() ([]types.Mark, error) {
	if m == nil || m.db == nil {
		return nil, fmt.Errorf("backtest marker or database is nil")
	}

	rows, err := m.sq.
		Select("period", "time", "symbol", "kind", "title", "message").
		From("marks").
		OrderBy("id ASC").
		RunWith(m.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query marks: %w", err)
	}
	defer rows.Close()

	var marks []types.Mark

	for rows.Next() {
		var mark types.Mark

		var kind string

		if err := rows.Scan(&mark.Period, &mark.Time, &mark.Symbol, &kind, &mark.Title, &mark.Message); err != nil {
			return nil, fmt.Errorf("failed to scan mark: %w", err)
		}

		mark.Kind = types.MarkKind(kind)
		marks = append(marks, mark)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating marks: %w", err)
	}

	return marks, nil
}

// CountByKind returns how many marks of kind were recorded.
func (m *BacktestMarker) CountByKind(kind types.MarkKind) (int, error) {
	if m == nil || m.db == nil {
		return 0, fmt.Errorf("backtest marker or database is nil")
	}

	var count int

	err := m.sq.
		Select("COUNT(*)").
		From("marks").
		Where(squirrel.Eq{"kind": string(kind)}).
		RunWith(m.db).
		QueryRow().
		Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count marks: %w", err)
	}

	return count, nil
}

// Write exports the marks into folder and returns the written file path.
func (m *BacktestMarker) Write(folder string, format ResultsFormat) (string, error) {
	if m == nil || m.db == nil || m.logger == nil {
		return "", fmt.Errorf("backtest marker, database, or logger is nil")
	}

	if err := os.MkdirAll(folder, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	marksPath, err := exportTable(m.db, "marks", "id", folder, format)
	if err != nil {
		return "", err
	}

	m.logger.Info("Successfully exported marks",
		zap.String("marks", marksPath),
	)

	return marksPath, nil
}

// Cleanup resets the database state.
func (m *BacktestMarker) Cleanup() error {
	if m == nil || m.db == nil {
		return fmt.Errorf("backtest marker or database is nil")
	}

	_, err := m.db.Exec(`
		DROP TABLE IF EXISTS marks;
		DROP SEQUENCE IF EXISTS mark_id_seq;
	`)
	if err != nil {
		return fmt.Errorf("failed to cleanup marks table: %w", err)
	}

	return m.initialize()
}

// Close closes the database connection.
func (m *BacktestMarker) Close() error {
	if m == nil || m.db == nil {
		return nil
	}

	return m.db.Close()
}

func (m *BacktestMarker) initialize() error {
	if m == nil || m.db == nil {
		return fmt.Errorf("backtest marker or database is nil")
	}

	_, err := m.db.Exec(`CREATE SEQUENCE IF NOT EXISTS mark_id_seq`)
	if err != nil {
		return fmt.Errorf("failed to create sequence: %w", err)
	}

	_, err = m.db.Exec(`
		CREATE TABLE IF NOT EXISTS marks (
			id INTEGER PRIMARY KEY,
			period INTEGER,
			time TIMESTAMP,
			symbol TEXT,
			kind TEXT,
			title TEXT,
			message TEXT
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create marks table: %w", err)
	}

	return nil
}
