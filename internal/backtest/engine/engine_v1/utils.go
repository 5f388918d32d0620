package engine

import (
	"database/sql"
	"fmt"
	"path/filepath"

	"github.com/moznion/go-optional"
)

// ResultsFolder returns <root>/<strategy>/<start>_<end>, with "all" for an open side.
func ResultsFolder(root string, strategyName string, config BacktestEngineV1Config) string {
	strategyFolder := filepath.Join(root, strategyName)

	if config.StartTime.IsNone() && config.EndTime.IsNone() {
		return filepath.Join(strategyFolder, "all")
	}

	startTimeStr := "all"
	endTimeStr := "all"

	if config.StartTime.IsSome() {
		startTimeStr = config.StartTime.Unwrap().Format("20060102")
	}

	if config.EndTime.IsSome() {
		endTimeStr = config.EndTime.Unwrap().Format("20060102")
	}

	return filepath.Join(strategyFolder, fmt.Sprintf("%s_%s", startTimeStr, endTimeStr))
}

// exportTable copies table into folder/<table>.<ext> and returns the file path.
// Raw SQL since squirrel has no COPY support.
func exportTable(db *sql.DB, table string, orderBy string, folder string, format ResultsFormat) (string, error) {
	path := filepath.Join(folder, table+format.Extension())

	var options string

	switch format {
	case ResultsFormatCSV:
		options = "(FORMAT CSV, HEADER)"
	default:
		options = "(FORMAT PARQUET)"
	}

	query := fmt.Sprintf(`COPY (SELECT * FROM %s ORDER BY %s) TO '%s' %s`, table, orderBy, path, options)
	if _, err := db.Exec(query); err != nil {
		return "", fmt.Errorf("failed to export %s: %w", table, err)
	}

	return path, nil
}

func nullable[T any](o optional.Option[T]) any {
	if o.IsSome() {
		return o.Unwrap()
	}

	return nil
}
