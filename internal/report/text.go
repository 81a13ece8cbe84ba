package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/hakim/scandeck/internal/history"
	"github.com/hakim/scandeck/internal/models"
)

// WriteOutcome prints the result of a single dispatch.
func WriteOutcome(w io.Writer, o *models.ScanOutcome) error {
	if o == nil {
		_, err := fmt.Fprintln(w, MutedStyle.Render("No scan has been run."))
		return err
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render(Heading(o.Tool, o.Target)))
	b.WriteString("  ")
	b.WriteString(Badge(string(o.Status), o.Status.Indicator()))
	b.WriteString("\n")
	if o.Pending() {
		b.WriteString(MutedStyle.Render("Running scan...") + "\n")
	} else if o.Output != "" {
		b.WriteString(outputStyle.Render(o.Output))
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// HistoryTable renders records as a bordered table in the given order.
func HistoryTable(records []models.ScanRecord) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(MutedStyle).
		Headers("ID", "TOOL", "TARGET", "STATUS", "CREATED").
		StyleFunc(func(row, col int) lipgloss.Style {
			return lipgloss.NewStyle().Padding(0, 1)
		})

	for _, r := range records {
		t.Row(
			r.ID,
			r.Tool,
			r.Target,
			Badge(string(r.Status), r.Status.Indicator()),
			r.CreatedDisplay(),
		)
	}
	return t.String()
}

// WriteRecord prints the detail view of one record.
func WriteRecord(w io.Writer, rec models.ScanRecord) error {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(Heading(rec.Tool, rec.Target)))
	b.WriteString("  ")
	b.WriteString(Badge(string(rec.Status), rec.Status.Indicator()))
	b.WriteString("\n")
	b.WriteString(MutedStyle.Render(fmt.Sprintf("ID: %s | Created: %s", rec.ID, rec.CreatedDisplay())))
	b.WriteString("\n\n")
	if rec.Result == "" {
		b.WriteString(MutedStyle.Render("(no output)"))
	} else {
		b.WriteString(outputStyle.Render(rec.Result))
	}
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteView prints whatever the history view currently shows: a status
// message, the table, or the selected record.
func WriteView(w io.Writer, v history.View) error {
	switch v.Kind {
	case history.ViewLoading, history.ViewEmpty:
		_, err := fmt.Fprintln(w, MutedStyle.Render(v.Kind.Message()))
		return err
	case history.ViewLoadFailed:
		msg := v.Kind.Message()
		if v.Err != nil {
			msg += ": " + v.Err.Error()
		}
		_, err := fmt.Fprintln(w, failureStyle.Render(msg))
		return err
	}

	if v.Selected != nil {
		return WriteRecord(w, *v.Selected)
	}
	_, err := fmt.Fprintln(w, HistoryTable(v.Records))
	return err
}

// JournalTable renders local dispatch journal entries.
func JournalTable(entries []*models.JournalEntry) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(MutedStyle).
		Headers("ID", "TOOL", "TARGET", "STATE", "STARTED", "DURATION").
		StyleFunc(func(row, col int) lipgloss.Style {
			return lipgloss.NewStyle().Padding(0, 1)
		})

	for _, e := range entries {
		duration := "-"
		if e.Finished() {
			duration = e.Duration().Round(100 * time.Millisecond).String()
		}
		t.Row(
			shortID(e.ID),
			e.Tool,
			e.Target,
			Badge(e.State, e.Status.Indicator()),
			e.StartedAt.Local().Format("2006-01-02 15:04:05"),
			duration,
		)
	}
	return t.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
