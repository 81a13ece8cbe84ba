// Package tui is the interactive history browser.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hakim/scandeck/internal/history"
	"github.com/hakim/scandeck/internal/models"
	"github.com/hakim/scandeck/internal/storage"
)

const (
	defaultDetailWidth  = 80
	defaultDetailHeight = 16
	minDetailHeight     = 3
)

type model struct {
	agg        *history.Aggregator
	ctx        context.Context
	exportDir  string
	spinner    spinner.Model
	detail     viewport.Model
	cursor     int
	refreshing bool
	notice     string
	width      int
	height     int
	now        func() time.Time
}

type refreshedMsg struct{}

type exportedMsg struct {
	path string
	err  error
}

func newModel(ctx context.Context, agg *history.Aggregator, exportDir string) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))

	return model{
		agg:        agg,
		ctx:        ctx,
		exportDir:  exportDir,
		spinner:    s,
		detail:     viewport.New(defaultDetailWidth, defaultDetailHeight),
		refreshing: true,
		now:        time.Now,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.refresh())
}

// refresh runs one aggregator refresh off the UI loop.
func (m model) refresh() tea.Cmd {
	agg, ctx := m.agg, m.ctx
	return func() tea.Msg {
		agg.Refresh(ctx)
		return refreshedMsg{}
	}
}

func (m model) export(rec models.ScanRecord) tea.Cmd {
	dir, at := m.exportDir, m.now()
	return func() tea.Msg {
		path, err := storage.SaveResult(dir, rec, at)
		return exportedMsg{path: path, err: err}
	}
}

func (m model) resize(width, height int) model {
	m.width, m.height = width, height
	w := width - 2
	if w <= 0 {
		w = defaultDetailWidth
	}
	h := defaultDetailHeight
	if height > 0 {
		// title, meta line, blank, help
		h = height - 6
	}
	if h < minDetailHeight {
		h = minDetailHeight
	}
	m.detail.Width = w
	m.detail.Height = h
	return m
}
