package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hakim/scandeck/internal/config"
	"github.com/hakim/scandeck/internal/storage"
	"github.com/spf13/cobra"
)

var (
	initForce bool
	initDir   string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize scandeck with default configuration",
	Long: `Creates a default configuration file (scandeck.yaml), the export directory,
and the local dispatch journal database.

This is typically the first command you run when setting up scandeck.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := filepath.Join(initDir, "scandeck.yaml")

		// Check if config already exists
		if _, err := os.Stat(configPath); err == nil && !initForce {
			return fmt.Errorf("config file already exists at %s. Use --force to overwrite", configPath)
		}

		if err := config.WriteDefault(configPath); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		fmt.Printf("Created %s with default configuration\n", configPath)

		// Load the config we just created to get paths
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		exportDir := filepath.Join(initDir, cfg.ExportDir)
		if err := storage.EnsureDir(exportDir); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}
		fmt.Printf("Created export directory: %s\n", exportDir)

		if cfg.DBPath != "" {
			dbPath := filepath.Join(initDir, cfg.DBPath)
			journal, err := storage.Open(dbPath)
			if err != nil {
				return fmt.Errorf("failed to initialize journal: %w", err)
			}
			journal.Close()
			fmt.Printf("Initialized journal: %s\n", dbPath)
		}

		fmt.Println()
		fmt.Println("Scandeck initialized successfully!")
		fmt.Printf("Backend: %s (edit backend.base_url to change)\n", cfg.Backend.BaseURL)
		fmt.Println("Run 'scandeck health' to check the backend.")
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite existing config file")
	initCmd.Flags().StringVar(&initDir, "dir", ".", "output directory")
	rootCmd.AddCommand(initCmd)
}
