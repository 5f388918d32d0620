package datasource

import (
	"time"

	"github.com/GRTran/backtester/internal/types"
	"github.com/moznion/go-optional"
)

// DataSource is a read-only source of long-format bars.
type DataSource interface {
	// Initialize loads the data file at path. Parquet and CSV are supported depending on the implementation.
	Initialize(path string) error
	// ReadAll yields every bar in [start, end], ordered by time then symbol.
	ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) func(yield func(types.MarketData, error) bool)
	// Count returns the number of bars in [start, end].
	Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error)
	// Symbols returns the distinct symbols in the data, sorted.
	Symbols() ([]string, error)
	// Close releases any resources held by the data source
	Close() error
}
