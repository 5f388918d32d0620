package main

import (
	"fmt"
	"strings"

	"github.com/GRTran/backtester/internal/types"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
)

// listItem implements list.Item for the run list.
type listItem struct {
	name        string
	description string
}

func (i listItem) Title() string       { return i.name }
func (i listItem) Description() string { return i.description }
func (i listItem) FilterValue() string { return i.name }

func runItem(run Run) listItem {
	stats := run.Stats

	return listItem{
		name: run.Name,
		description: fmt.Sprintf("%s | %d periods | %d instruments | return %s",
			stats.Status, stats.Periods, len(stats.Instruments), FormatChange(stats.Cash.TotalReturn)),
	}
}

// NewRunList creates the list of runs. Filtering stays off so the list index
// matches the run slice.
func NewRunList(runs []Run) list.Model {
	items := make([]list.Item, 0, len(runs))
	for _, run := range runs {
		items = append(items, runItem(run))
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true

	l := list.New(items, delegate, 0, 0)
	l.Title = "Select Run"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return l
}

// NewRootInput creates the text input for the results root.
func NewRootInput(root string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "results"
	ti.SetValue(root)
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 60
	ti.Prompt = "> "

	return ti
}

// NewSymbolTable creates the table of per-symbol trade statistics.
func NewSymbolTable() table.Model {
	columns := []table.Column{
		{Title: "Symbol", Width: 10},
		{Title: "Trades", Width: 8},
		{Title: "Long", Width: 6},
		{Title: "Short", Width: 6},
		{Title: "Win Rate", Width: 10},
		{Title: "Realized PnL", Width: 14},
		{Title: "Max Profit", Width: 12},
		{Title: "Max Loss", Width: 12},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)

	t.SetStyles(s)

	return t
}

// SymbolRows renders one table row per traded symbol, in stats order.
func SymbolRows(stats types.BacktestStats) []table.Row {
	rows := make([]table.Row, 0, len(stats.Symbols))

	for _, symbol := range stats.Symbols {
		rows = append(rows, table.Row{
			symbol.Symbol,
			fmt.Sprintf("%d", symbol.TradeResult.NumberOfTrades),
			fmt.Sprintf("%d", symbol.TradeResult.NumberOfLongTrades),
			fmt.Sprintf("%d", symbol.TradeResult.NumberOfShortTrades),
			fmt.Sprintf("%.1f%%", symbol.TradeResult.WinRate*100),
			fmt.Sprintf("%.2f", symbol.TradePnl.RealizedPnL),
			fmt.Sprintf("%.2f", symbol.TradePnl.MaximumProfit),
			fmt.Sprintf("%.2f", symbol.TradePnl.MaximumLoss),
		})
	}

	return rows
}

// RunSummary renders the run level figures shown above the symbol table.
func RunSummary(stats types.BacktestStats) string {
	lines := [][2]string{
		{"Run", stats.ID},
		{"Strategy", stats.Strategy.Name},
		{"Status", string(stats.Status)},
		{"Periods", fmt.Sprintf("%d", stats.Periods)},
		{"Initial cash", fmt.Sprintf("%.2f", stats.Cash.InitialCash)},
		{"Final cash", fmt.Sprintf("%.2f", stats.Cash.FinalCash)},
		{"Total return", FormatChange(stats.Cash.TotalReturn)},
		{"Max drawdown", fmt.Sprintf("%.2f%%", stats.Cash.MaxDrawdown*100)},
		{"Trades", fmt.Sprintf("%d (win rate %.1f%%)", stats.TradeResult.NumberOfTrades, stats.TradeResult.WinRate*100)},
		{"Rejected orders", fmt.Sprintf("%d", stats.Diagnostics.RejectedOrders)},
	}

	if stats.HaltedAtPeriod != nil {
		lines = append(lines, [2]string{"Halted at", fmt.Sprintf("period %d", *stats.HaltedAtPeriod)})
	}

	var s strings.Builder
	for _, line := range lines {
		s.WriteString(LabelStyle.Render(line[0]))
		s.WriteString(line[1])
		s.WriteString("\n")
	}

	return s.String()
}
