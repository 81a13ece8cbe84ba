package report

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hakim/scandeck/internal/models"
)

// HistoryMarkdown builds a markdown report of the scan history.
func HistoryMarkdown(records []models.ScanRecord, backend string, generated time.Time) string {
	var b strings.Builder

	// Header
	b.WriteString("# Scan History Report\n\n")
	if backend != "" {
		b.WriteString(fmt.Sprintf("**Backend:** %s\n", backend))
	}
	b.WriteString(fmt.Sprintf("**Date:** %s\n", generated.Format("2006-01-02 15:04:05")))

	var completed, failed, other int
	for _, r := range records {
		switch r.Status.Indicator() {
		case models.IndicatorSuccess:
			completed++
		case models.IndicatorFailure:
			failed++
		default:
			other++
		}
	}
	b.WriteString(fmt.Sprintf("**Total:** %d | **Completed:** %d | **Failed:** %d | **In progress:** %d\n\n",
		len(records), completed, failed, other))

	// Summary table
	b.WriteString("## Scans\n\n")
	if len(records) == 0 {
		b.WriteString("No scans yet.\n\n")
		return b.String()
	}
	b.WriteString("| ID | Tool | Target | Status | Created |\n")
	b.WriteString("|----|------|--------|--------|---------|\n")
	for _, r := range records {
		b.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s |\n",
			r.ID, r.Tool, escapeCell(r.Target), escapeCell(string(r.Status)), r.CreatedDisplay()))
	}
	b.WriteString("\n")

	// Raw output per scan
	b.WriteString("## Results\n\n")
	for _, r := range records {
		b.WriteString(fmt.Sprintf("### %s\n\n", Heading(r.Tool, r.Target)))
		b.WriteString(fmt.Sprintf("Status: `%s` | Created: %s\n\n", r.Status, r.CreatedDisplay()))
		if r.Result == "" {
			b.WriteString("_No output._\n\n")
			continue
		}
		b.WriteString("```\n")
		b.WriteString(strings.TrimRight(r.Result, "\n"))
		b.WriteString("\n```\n\n")
	}

	return b.String()
}

// WriteHistoryReport writes HistoryMarkdown to outputPath.
func WriteHistoryReport(records []models.ScanRecord, backend, outputPath string) error {
	content := HistoryMarkdown(records, backend, time.Now())
	if err := os.WriteFile(outputPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("writing report to %s: %w", outputPath, err)
	}
	return nil
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
