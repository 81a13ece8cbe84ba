package report

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hakim/scandeck/internal/models"
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	MutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	failureStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	progressStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("226"))

	outputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("40"))
)

// IndicatorStyle returns the colour used for an indicator.
func IndicatorStyle(i models.Indicator) lipgloss.Style {
	switch i {
	case models.IndicatorSuccess:
		return successStyle
	case models.IndicatorFailure:
		return failureStyle
	default:
		return progressStyle
	}
}

// Badge renders a status string in its indicator colour.
func Badge(status string, i models.Indicator) string {
	if status == "" {
		status = "pending"
	}
	return IndicatorStyle(i).Render(status)
}

// Heading is the one-line label for a scan, e.g. "NMAP - example.com".
func Heading(tool, target string) string {
	if target == "" {
		return strings.ToUpper(tool)
	}
	return strings.ToUpper(tool) + " - " + target
}
