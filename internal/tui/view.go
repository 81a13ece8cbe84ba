package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hakim/scandeck/internal/history"
	"github.com/hakim/scandeck/internal/report"
)

var (
	docStyle = lipgloss.NewStyle().Margin(0, 1)

	itemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15"))

	selectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("226")).
				Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

const (
	listHelp   = "↑/k up • ↓/j down • enter open • r refresh • q quit"
	detailHelp = "↑/↓ scroll • s save • esc back • q quit"
)

func (m model) View() string {
	v := m.agg.View()

	var b strings.Builder
	title := report.TitleStyle.Render("Scan History")
	if m.refreshing {
		title += " " + m.spinner.View()
	}
	b.WriteString(title + "\n\n")

	help := listHelp
	switch {
	case v.Kind == history.ViewLoading:
		b.WriteString(m.spinner.View() + " " + report.MutedStyle.Render(v.Kind.Message()) + "\n")
	case v.Kind == history.ViewLoadFailed:
		msg := v.Kind.Message()
		if v.Err != nil {
			msg += ": " + v.Err.Error()
		}
		b.WriteString(errorStyle.Render(msg) + "\n")
	case v.Kind == history.ViewEmpty:
		b.WriteString(report.MutedStyle.Render(v.Kind.Message()) + "\n")
	case v.Selected != nil:
		sel := v.Selected
		b.WriteString(report.TitleStyle.Render(report.Heading(sel.Tool, sel.Target)))
		b.WriteString("  " + report.Badge(string(sel.Status), sel.Status.Indicator()) + "\n")
		b.WriteString(report.MutedStyle.Render(fmt.Sprintf("Scanned on %s", sel.CreatedDisplay())) + "\n\n")
		b.WriteString(m.detail.View() + "\n")
		help = detailHelp
	default:
		for i, r := range v.Records {
			line := fmt.Sprintf("%s  %s",
				report.Heading(r.Tool, r.Target),
				report.MutedStyle.Render(r.CreatedDisplay()))
			badge := report.Badge(string(r.Status), r.Status.Indicator())
			if i == m.cursor {
				b.WriteString(selectedItemStyle.Render("> "+line) + "  " + badge + "\n")
			} else {
				b.WriteString(itemStyle.Render("  "+line) + "  " + badge + "\n")
			}
		}
	}

	if m.notice != "" {
		b.WriteString("\n" + helpStyle.Render(m.notice) + "\n")
	}
	b.WriteString("\n" + helpStyle.Render(help) + "\n")
	return docStyle.Render(b.String())
}
