package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	TitleStyle = lipgloss.NewStyle().Bold(true)

	HelpStyle = lipgloss.NewStyle().Faint(true)

	ErrorStyle = lipgloss.NewStyle().Bold(true)

	LabelStyle = lipgloss.NewStyle().Faint(true).Width(18)
)

// FormatChange formats a fraction as a percentage with a direction marker.
func FormatChange(value float64) string {
	s := fmt.Sprintf("%.2f%%", value*100)

	switch {
	case value > 0:
		return s + " ▲"
	case value < 0:
		return s + " ▼"
	}

	return s
}
