package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hakim/scandeck/internal/api"
	"github.com/hakim/scandeck/internal/config"
	"github.com/hakim/scandeck/internal/logging"
	"github.com/spf13/cobra"
)

var (
	cfgFile    string
	verbose    bool
	backendURL string
	cfg        *config.Config
	logger     = logging.Discard()
	logCloser  io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "scandeck",
	Short: "Dispatch security scans to a scan backend and browse their history",
	Long: `Scandeck is a terminal control surface for a remote scan execution backend.

It submits scan jobs (nmap, nikto, nuclei, sslyze, ZAP, OpenVAS) for a target,
shows the raw tool output once the backend answers, and lets you browse and
export the history of scans the backend has recorded.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config loading for commands that don't need it
		skipConfig := map[string]bool{
			"init":    true,
			"help":    true,
			"version": true,
		}
		if skipConfig[cmd.Name()] {
			return nil
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if backendURL != "" {
			cfg.Backend.BaseURL = backendURL
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid --backend: %w", err)
			}
		}

		logger, logCloser = logging.New(cfg.Log, verbose)
		slog.SetDefault(logger)
		logger.Debug("config loaded", slog.String("backend", cfg.Backend.BaseURL))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			logCloser.Close()
		}
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path (default: search ./scandeck.yaml, ./configs, ~/.config/scandeck)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend", "", "override backend.base_url")

	// Version flag
	rootCmd.Version = "0.1.0-dev"
}

// Execute runs the root command. Interrupts cancel in-flight requests.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// newClient builds the backend client from the loaded config.
func newClient() (*api.Client, error) {
	client, err := api.New(cfg.Backend.BaseURL,
		api.WithTimeout(cfg.Backend.RequestTimeout()),
		api.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("backend client: %w", err)
	}
	return client, nil
}
