package main

import (
	"fmt"

	"github.com/hakim/scandeck/internal/report"
	"github.com/hakim/scandeck/internal/storage"
	"github.com/spf13/cobra"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Show scans dispatched from this machine",
	Long: `Lists the local dispatch journal kept in db_path: one entry per scan
submitted from this client with its tool, target, timing and terminal state.

The journal is independent of the backend's history and holds no output.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tool, _ := cmd.Flags().GetString("tool")
		limit, _ := cmd.Flags().GetInt("limit")

		if cfg.DBPath == "" {
			return fmt.Errorf("journal disabled: db_path is empty")
		}
		journal, err := storage.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer journal.Close()

		entries, err := journal.List(tool, limit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No dispatches recorded yet")
			return nil
		}

		fmt.Println(report.JournalTable(entries))
		fmt.Printf("Total: %d dispatch(es)\n", len(entries))
		return nil
	},
}

func init() {
	journalCmd.Flags().String("tool", "", "only show dispatches for this tool")
	journalCmd.Flags().Int("limit", 20, "maximum rows (0 = all)")
	rootCmd.AddCommand(journalCmd)
}
