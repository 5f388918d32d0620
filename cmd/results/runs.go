package main

import (
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/GRTran/backtester/internal/types"
	"github.com/GRTran/backtester/pkg/errors"
)

const statsFileName = "stats.yaml"

// Run is one results folder written by the backtest command.
type Run struct {
	// Name is the folder relative to the results root, e.g. zscore/all.
	Name   string
	Folder string
	Stats  types.BacktestStats
}

// FindRuns walks root for stats files and returns the runs sorted by name.
// Unreadable stats files are skipped.
func FindRuns(root string) ([]Run, error) {
	var runs []Run

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() || d.Name() != statsFileName {
			return nil
		}

		stats, err := types.ReadBacktestStats(path)
		if err != nil {
			return nil
		}

		folder := filepath.Dir(path)

		name, err := filepath.Rel(root, folder)
		if err != nil {
			name = folder
		}

		runs = append(runs, Run{Name: filepath.ToSlash(name), Folder: folder, Stats: stats})

		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "failed to scan %s", root)
	}

	sort.Slice(runs, func(a, b int) bool { return runs[a].Name < runs[b].Name })

	return runs, nil
}
