package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.resize(msg.Width, msg.Height), nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case refreshedMsg:
		m.refreshing = false
		m.clampCursor()
		if sel := m.agg.Selected(); sel != nil {
			m.detail.SetContent(sel.Result)
		}
		return m, nil

	case exportedMsg:
		if msg.err != nil {
			m.notice = fmt.Sprintf("export failed: %v", msg.err)
		} else {
			m.notice = "saved " + msg.path
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" || key == "q" {
		return m, tea.Quit
	}

	if sel := m.agg.Selected(); sel != nil {
		switch key {
		case "esc", "backspace":
			m.agg.ClearSelection()
			m.notice = ""
			return m, nil
		case "s":
			return m, m.export(*sel)
		}
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd
	}

	records := m.agg.Records()
	switch key {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(records)-1 {
			m.cursor++
		}
	case "enter":
		if m.cursor < len(records) {
			if err := m.agg.Select(records[m.cursor]); err != nil {
				m.notice = err.Error()
				return m, nil
			}
			m.notice = ""
			m.detail.SetContent(records[m.cursor].Result)
			m.detail.GotoTop()
		}
	case "r":
		if m.refreshing {
			return m, nil
		}
		m.refreshing = true
		m.notice = ""
		return m, m.refresh()
	}
	return m, nil
}

func (m *model) clampCursor() {
	n := len(m.agg.Records())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}
