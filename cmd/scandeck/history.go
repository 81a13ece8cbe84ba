package main

import (
	"fmt"
	"os"
	"time"

	"github.com/hakim/scandeck/internal/history"
	"github.com/hakim/scandeck/internal/report"
	"github.com/hakim/scandeck/internal/storage"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the scans recorded by the backend",
	Long: `Display the backend's scan history, in the order the backend returns it
(newest first for the reference backend).

Use --format markdown --out FILE to write a report including every scan's raw
output. Use 'scandeck history show ID' to open a single scan.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		outPath, _ := cmd.Flags().GetString("out")

		client, err := newClient()
		if err != nil {
			return err
		}
		agg := history.New(client, logger)
		agg.Refresh(cmd.Context())
		view := agg.View()

		switch format {
		case "table":
			if err := report.WriteView(os.Stdout, view); err != nil {
				return err
			}
		case "markdown":
			if view.Kind == history.ViewLoadFailed {
				return fmt.Errorf("loading history: %w", view.Err)
			}
			if outPath == "" {
				fmt.Print(report.HistoryMarkdown(view.Records, client.BaseURL(), time.Now()))
				return nil
			}
			if err := report.WriteHistoryReport(view.Records, client.BaseURL(), outPath); err != nil {
				return err
			}
			fmt.Printf("Report written to %s\n", outPath)
		default:
			return fmt.Errorf("unknown format %q (table, markdown)", format)
		}

		if view.Kind == history.ViewLoadFailed {
			return fmt.Errorf("loading history: %w", view.Err)
		}
		if view.Kind == history.ViewRecords {
			fmt.Printf("Total: %d scan(s)\n", len(view.Records))
		}
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show one scan's raw output",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		save, _ := cmd.Flags().GetBool("save")
		id := args[0]

		client, err := newClient()
		if err != nil {
			return err
		}

		rec, err := history.New(client, logger).Open(cmd.Context(), id, client)
		if err != nil {
			return err
		}
		if err := report.WriteRecord(os.Stdout, *rec); err != nil {
			return err
		}

		if save {
			path, err := storage.SaveResult(cfg.ExportDir, *rec, time.Now())
			if err != nil {
				return err
			}
			fmt.Printf("\n[+] Saved to %s\n", path)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().String("format", "table", "output format: table or markdown")
	historyCmd.Flags().String("out", "", "write the markdown report to this file")
	historyShowCmd.Flags().Bool("save", false, "write the raw output to export_dir")
	historyCmd.AddCommand(historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}
