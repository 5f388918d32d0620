package datasource

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/GRTran/backtester/internal/logger"
	"github.com/GRTran/backtester/internal/types"
	"github.com/GRTran/backtester/pkg/errors"
	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"
)

var requiredColumns = []string{"time", "symbol", "open", "high", "low", "close", "volume"}

type DuckDBDataSource struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewDataSource creates a DuckDB data source backed by the database at path.
// Use ":memory:" for an in-process database. Market data is attached by Initialize.
func NewDataSource(path string, logger *logger.Logger) (DataSource, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, err
	}

	return &DuckDBDataSource{
		db:     db,
		logger: logger,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}, nil
}

// Initialize implements DataSource. A .csv path is read with read_csv_auto,
// anything else with read_parquet. When the file has no adj_close column the
// close column stands in for it.
func (d *DuckDBDataSource) Initialize(path string) error {
	d.logger.Debug("Initializing DuckDB data source", zap.String("path", path))

	reader := "read_parquet"
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		reader = "read_csv_auto"
	}

	for _, view := range []string{"market_data", "raw_market_data"} {
		if _, err := d.db.Exec(fmt.Sprintf("DROP VIEW IF EXISTS %s", view)); err != nil {
			return fmt.Errorf("failed to drop existing view: %w", err)
		}
	}

	_, err := d.db.Exec(fmt.Sprintf(`CREATE VIEW raw_market_data AS SELECT * FROM %s('%s')`,
		reader, strings.ReplaceAll(path, "'", "''")))
	if err != nil {
		return errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "failed to read %s", path)
	}

	columns, err := d.columns()
	if err != nil {
		return err
	}

	for _, c := range requiredColumns {
		if !columns[c] {
			return errors.Newf(errors.ErrCodeMissingField, "market data in %s has no %s column", path, c)
		}
	}

	adjClose := "close"
	if columns["adj_close"] {
		adjClose = "adj_close"
	}

	_, err = d.db.Exec(fmt.Sprintf(`
		CREATE VIEW market_data AS
		SELECT
			CAST(time AS TIMESTAMP) AS time,
			CAST(symbol AS VARCHAR) AS symbol,
			CAST(open AS DOUBLE) AS open,
			CAST(high AS DOUBLE) AS high,
			CAST(low AS DOUBLE) AS low,
			CAST(close AS DOUBLE) AS close,
			CAST(%s AS DOUBLE) AS adj_close,
			CAST(volume AS DOUBLE) AS volume
		FROM raw_market_data
	`, adjClose))
	if err != nil {
		return fmt.Errorf("failed to create market_data view: %w", err)
	}

	return nil
}

func (d *DuckDBDataSource) columns() (map[string]bool, error) {
	rows, err := d.db.Query("SELECT * FROM raw_market_data LIMIT 0")
	if err != nil {
		return nil, fmt.Errorf("failed to inspect market data: %w", err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to inspect market data: %w", err)
	}

	columns := make(map[string]bool, len(names))
	for _, name := range names {
		columns[strings.ToLower(name)] = true
	}

	return columns, nil
}

func timeRange(q squirrel.SelectBuilder, start optional.Option[time.Time], end optional.Option[time.Time]) squirrel.SelectBuilder {
	if start.IsSome() {
		q = q.Where(squirrel.GtOrEq{"time": start.Unwrap()})
	}

	if end.IsSome() {
		q = q.Where(squirrel.LtOrEq{"time": end.Unwrap()})
	}

	return q
}

// Count implements DataSource.
func (d *DuckDBDataSource) Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error) {
	query, args, err := timeRange(d.sq.Select("COUNT(*)").From("market_data"), start, end).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var count int
	if err := d.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count market data", err)
	}

	return count, nil
}

// ReadAll implements DataSource.
func (d *DuckDBDataSource) ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) func(yield func(types.MarketData, error) bool) {
	return func(yield func(types.MarketData, error) bool) {
		d.logger.Debug("Reading market data from DuckDB")

		query, args, err := timeRange(
			d.sq.Select("time", "symbol", "open", "high", "low", "close", "adj_close", "volume").From("market_data"),
			start, end,
		).OrderBy("time ASC", "symbol ASC").ToSql()
		if err != nil {
			yield(types.MarketData{}, fmt.Errorf("failed to build query: %w", err))

			return
		}

		rows, err := d.db.Query(query, args...)
		if err != nil {
			yield(types.MarketData{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query market data", err))

			return
		}
		defer rows.Close()

		for rows.Next() {
			var bar types.MarketData

			err := rows.Scan(&bar.Time, &bar.Symbol, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.AdjClose, &bar.Volume)
			if err != nil {
				yield(types.MarketData{}, fmt.Errorf("failed to scan row: %w", err))

				return
			}

			bar.Time = bar.Time.UTC()

			if !yield(bar, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(types.MarketData{}, fmt.Errorf("error iterating rows: %w", err))
		}
	}
}

// Symbols implements DataSource.
func (d *DuckDBDataSource) Symbols() ([]string, error) {
	query, args, err := d.sq.Select("DISTINCT symbol").From("market_data").OrderBy("symbol").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build symbols query: %w", err)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query symbols", err)
	}
	defer rows.Close()

	var symbols []string

	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}

		symbols = append(symbols, symbol)
	}

	return symbols, rows.Err()
}

// Close implements DataSource.
func (d *DuckDBDataSource) Close() error {
	return d.db.Close()
}
