package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/GRTran/backtester/internal/types"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleStats(name string, status types.RunStatus) types.BacktestStats {
	return types.BacktestStats{
		ID:          "run-" + name,
		Strategy:    types.StrategyInfo{Name: name},
		Status:      status,
		Periods:     250,
		Instruments: []string{"AAPL", "MSFT"},
		Cash: types.CashResult{
			InitialCash: 10000,
			FinalCash:   11000,
			TotalReturn: 0.1,
			MaxDrawdown: 0.05,
		},
		TradeResult: types.TradeResult{NumberOfTrades: 4, WinRate: 0.5},
		Symbols: []types.TradeStats{
			{
				Symbol:      "AAPL",
				TradeResult: types.TradeResult{NumberOfTrades: 3, NumberOfLongTrades: 2, NumberOfShortTrades: 1, WinRate: 2.0 / 3},
				TradePnl:    types.TradePnl{RealizedPnL: 900, MaximumProfit: 700, MaximumLoss: -100},
			},
			{
				Symbol:      "MSFT",
				TradeResult: types.TradeResult{NumberOfTrades: 1, NumberOfLongTrades: 1},
				TradePnl:    types.TradePnl{RealizedPnL: 100, MaximumProfit: 100},
			},
		},
	}
}

// writeResults lays out root/<strategy>/all/stats.yaml for each strategy.
func writeResults(t *testing.T, root string, strategies ...string) {
	t.Helper()

	for _, name := range strategies {
		folder := filepath.Join(root, name, "all")
		require.NoError(t, os.MkdirAll(folder, 0755))
		require.NoError(t, types.WriteBacktestStats(filepath.Join(folder, statsFileName), sampleStats(name, types.RunStatusComplete)))
	}
}

func TestFindRuns(t *testing.T) {
	root := t.TempDir()
	writeResults(t, root, "zscore", "momentum")

	// a stray file that is not a stats file is ignored
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0644))
	// an unreadable stats file is skipped
	require.NoError(t, os.MkdirAll(filepath.Join(root, "broken"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "broken", statsFileName), []byte("periods: [oops"), 0644))

	runs, err := FindRuns(root)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "momentum/all", runs[0].Name)
	assert.Equal(t, "zscore/all", runs[1].Name)
	assert.Equal(t, "run-zscore", runs[1].Stats.ID)
	assert.Equal(t, filepath.Join(root, "zscore", "all"), runs[1].Folder)

	_, err = FindRuns(filepath.Join(root, "missing"))
	assert.Error(t, err)
}

func TestFormatChange(t *testing.T) {
	assert.Equal(t, "12.50% ▲", FormatChange(0.125))
	assert.Equal(t, "-3.00% ▼", FormatChange(-0.03))
	assert.Equal(t, "0.00%", FormatChange(0))
}

func TestSymbolRows(t *testing.T) {
	rows := SymbolRows(sampleStats("zscore", types.RunStatusComplete))

	require.Len(t, rows, 2)
	assert.Equal(t, "AAPL", rows[0][0])
	assert.Equal(t, "3", rows[0][1])
	assert.Equal(t, "66.7%", rows[0][4])
	assert.Equal(t, "900.00", rows[0][5])
	assert.Equal(t, "-100.00", rows[0][7])
}

func TestRunSummary(t *testing.T) {
	stats := sampleStats("zscore", types.RunStatusHalted)
	period := 12
	stats.HaltedAtPeriod = &period

	summary := RunSummary(stats)
	assert.Contains(t, summary, "11000.00")
	assert.Contains(t, summary, "10.00% ▲")
	assert.Contains(t, summary, "period 12")
}

func TestBrowseRuns(t *testing.T) {
	root := t.TempDir()
	writeResults(t, root, "zscore")

	tm := teatest.NewTestModel(t, NewModel(root), teatest.WithInitialTermSize(100, 40))

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("zscore/all"))
	}, teatest.WithDuration(2*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("Final cash")) && bytes.Contains(bts, []byte("AAPL"))
	}, teatest.WithDuration(2*time.Second))

	err := tm.Quit()
	assert.NoError(t, err)
}

func TestRootInput(t *testing.T) {
	root := t.TempDir()
	writeResults(t, root, "random")

	tm := teatest.NewTestModel(t, NewModel(""), teatest.WithInitialTermSize(100, 40))

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("Results folder"))
	}, teatest.WithDuration(2*time.Second))

	tm.Type(root)
	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("random/all"))
	}, teatest.WithDuration(2*time.Second))

	err := tm.Quit()
	assert.NoError(t, err)
}

func TestStateTransitions(t *testing.T) {
	runs := []Run{{Name: "zscore/all", Folder: "results/zscore/all", Stats: sampleStats("zscore", types.RunStatusComplete)}}

	t.Run("loaded runs open the run list", func(t *testing.T) {
		m := NewModel("")

		newModel, _ := m.Update(RunsLoadedMsg{Root: "results", Runs: runs})
		updated := newModel.(Model)

		assert.Equal(t, StateRunSelect, updated.state)
		assert.Equal(t, "results", updated.root)
		assert.Len(t, updated.runList.Items(), 1)
	})

	t.Run("load error returns to the root input", func(t *testing.T) {
		m := NewModel("")
		m.state = StateRunSelect

		newModel, _ := m.Update(LoadErrorMsg{Err: assert.AnError})
		updated := newModel.(Model)

		assert.Equal(t, StateRootInput, updated.state)
		assert.Contains(t, updated.View(), assert.AnError.Error())
	})

	t.Run("esc walks back from detail to list to input", func(t *testing.T) {
		m := NewModel("")
		newModel, _ := m.Update(RunsLoadedMsg{Root: "results", Runs: runs})
		newModel, _ = newModel.Update(tea.KeyMsg{Type: tea.KeyEnter})
		assert.Equal(t, StateRunDetail, newModel.(Model).state)

		newModel, _ = newModel.Update(tea.KeyMsg{Type: tea.KeyEsc})
		assert.Equal(t, StateRunSelect, newModel.(Model).state)

		newModel, _ = newModel.Update(tea.KeyMsg{Type: tea.KeyEsc})
		assert.Equal(t, StateRootInput, newModel.(Model).state)
	})

	t.Run("empty root stays on the input", func(t *testing.T) {
		m := NewModel("")

		newModel, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		assert.Equal(t, StateRootInput, newModel.(Model).state)
		assert.Nil(t, cmd)
	})
}

func TestQuitBehavior(t *testing.T) {
	t.Run("ctrl+c quits from the root input", func(t *testing.T) {
		tm := teatest.NewTestModel(t, NewModel(""), teatest.WithInitialTermSize(80, 24))

		tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})

		tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))
	})

	t.Run("q quits from the run list", func(t *testing.T) {
		root := t.TempDir()
		writeResults(t, root, "constant")

		tm := teatest.NewTestModel(t, NewModel(root), teatest.WithInitialTermSize(80, 24))

		teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
			return bytes.Contains(bts, []byte("constant/all"))
		}, teatest.WithDuration(2*time.Second))

		tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})

		tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))
	})
}

func TestWindowResize(t *testing.T) {
	newModel, _ := NewModel("").Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	updated := newModel.(Model)

	assert.Equal(t, 120, updated.width)
	assert.Equal(t, 40, updated.height)
}
