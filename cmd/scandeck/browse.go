package main

import (
	"github.com/hakim/scandeck/internal/history"
	"github.com/hakim/scandeck/internal/tui"
	"github.com/spf13/cobra"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse scan history interactively",
	Long: `Opens a terminal browser over the backend's scan history. Select a scan to
read its output, press s to save it to export_dir, r to refresh.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		return tui.Run(cmd.Context(), history.New(client, logger), cfg.ExportDir)
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}
