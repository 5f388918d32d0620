package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Application states.
const (
	StateRootInput = iota
	StateRunSelect
	StateRunDetail
)

// Model is the Bubble Tea model of the results browser.
type Model struct {
	state       int
	rootInput   textinput.Model
	runList     list.Model
	symbolTable table.Model
	root        string
	runs        []Run
	selected    int
	err         error
	width       int
	height      int
}

// NewModel creates a model that scans root on start. An empty root waits for
// one to be typed.
func NewModel(root string) Model {
	return Model{
		state:       StateRootInput,
		rootInput:   NewRootInput(root),
		runList:     NewRunList(nil),
		symbolTable: NewSymbolTable(),
		root:        root,
	}
}

func loadRuns(root string) tea.Cmd {
	return func() tea.Msg {
		runs, err := FindRuns(root)
		if err != nil {
			return LoadErrorMsg{Err: err}
		}

		if len(runs) == 0 {
			return LoadErrorMsg{Err: fmt.Errorf("no backtest results under %s", root)}
		}

		return RunsLoadedMsg{Root: root, Runs: runs}
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if m.root != "" {
		return loadRuns(m.root)
	}

	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if m.state != StateRootInput {
				return m, tea.Quit
			}
		case "esc":
			return m.handleEsc()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.runList.SetSize(msg.Width, msg.Height-4)
		m.symbolTable.SetWidth(msg.Width)
		m.symbolTable.SetHeight(max(msg.Height-18, 3))

		return m, nil

	case RunsLoadedMsg:
		m.root = msg.Root
		m.runs = msg.Runs
		m.err = nil
		m.runList = NewRunList(msg.Runs)

		if m.width > 0 {
			m.runList.SetSize(m.width, m.height-4)
		}
		m.rootInput.Blur()
		m.state = StateRunSelect

		return m, nil

	case LoadErrorMsg:
		m.err = msg.Err
		m.state = StateRootInput
		m.rootInput.Focus()

		return m, nil
	}

	switch m.state {
	case StateRootInput:
		return m.updateRootInput(msg)
	case StateRunSelect:
		return m.updateRunSelect(msg)
	case StateRunDetail:
		return m.updateRunDetail(msg)
	}

	return m, nil
}

func (m Model) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case StateRunSelect:
		m.state = StateRootInput
		m.rootInput.Focus()

		return m, textinput.Blink
	case StateRunDetail:
		m.state = StateRunSelect
	}

	return m, nil
}

func (m Model) updateRootInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		root := strings.TrimSpace(m.rootInput.Value())
		if root != "" {
			return m, loadRuns(root)
		}
	}

	var cmd tea.Cmd
	m.rootInput, cmd = m.rootInput.Update(msg)

	return m, cmd
}

func (m Model) updateRunSelect(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		index := m.runList.Index()
		if index >= 0 && index < len(m.runs) {
			m.selected = index
			m.symbolTable.SetRows(SymbolRows(m.runs[index].Stats))
			m.state = StateRunDetail

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.runList, cmd = m.runList.Update(msg)

	return m, cmd
}

func (m Model) updateRunDetail(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.symbolTable, cmd = m.symbolTable.Update(msg)

	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	var s strings.Builder

	switch m.state {
	case StateRootInput:
		s.WriteString(TitleStyle.Render("Backtest Results"))
		s.WriteString("\n\n")
		s.WriteString("Results folder:\n\n")
		s.WriteString(m.rootInput.View())
		s.WriteString("\n\n")

		if m.err != nil {
			s.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			s.WriteString("\n\n")
		}

		s.WriteString(HelpStyle.Render("Press Enter to scan, ctrl+c to quit"))

	case StateRunSelect:
		s.WriteString(m.runList.View())
		s.WriteString("\n")
		s.WriteString(HelpStyle.Render(fmt.Sprintf("%s | Enter: open | Esc: change folder | q: quit", m.root)))

	case StateRunDetail:
		run := m.runs[m.selected]

		s.WriteString(TitleStyle.Render(run.Name))
		s.WriteString("\n\n")
		s.WriteString(RunSummary(run.Stats))
		s.WriteString("\n")

		if len(run.Stats.Symbols) == 0 {
			s.WriteString("No trades\n")
		} else {
			s.WriteString(m.symbolTable.View())
		}

		s.WriteString("\n")
		s.WriteString(HelpStyle.Render(fmt.Sprintf("%s | Esc: back | q: quit", run.Folder)))
	}

	return s.String()
}
