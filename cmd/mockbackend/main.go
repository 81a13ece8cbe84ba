// Command mockbackend serves an in-memory scan backend for demos and local
// development.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hakim/scandeck/internal/logging"
	"github.com/hakim/scandeck/internal/mockbackend"
	"github.com/spf13/cobra"
)

var (
	addr     string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "mockbackend",
	Short: "Serve a canned scan backend over HTTP",
	Long: `Runs an HTTP server exposing POST /scan/{tool}, GET /scans, GET /scans/{id}
and GET /health with canned tool output. Targets beginning with "fail." produce
failed scans. Nothing is executed and history lives in memory.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := slog.New(logging.ContextHandler{
			Handler: logging.NewHandler(os.Stderr, logging.ParseLevel(logLevel), "text"),
		})

		srv := &http.Server{
			Addr:              addr,
			Handler:           mockbackend.New(mockbackend.WithLogger(logger)),
			ReadHeaderTimeout: 5 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errc := make(chan error, 1)
		go func() {
			logger.Info("mock backend listening", slog.String("addr", addr))
			errc <- srv.ListenAndServe()
		}()

		select {
		case err := <-errc:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serving: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	rootCmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8000", "listen address")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
