package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hakim/scandeck/internal/history"
)

// Run opens the history browser and blocks until the user quits.
func Run(ctx context.Context, agg *history.Aggregator, exportDir string) error {
	prog := tea.NewProgram(newModel(ctx, agg, exportDir), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := prog.Run()
	return err
}
