package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the scan backend and its history store respond",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		var (
			status  string
			count   int
			histErr error
		)
		g, ctx := errgroup.WithContext(cmd.Context())
		g.Go(func() error {
			s, err := client.Health(ctx)
			if err != nil {
				return fmt.Errorf("health: %w", err)
			}
			status = s
			return nil
		})
		g.Go(func() error {
			// History failures are reported but do not cancel the health probe.
			records, err := client.ListScans(context.WithoutCancel(ctx))
			if err != nil {
				histErr = err
				return nil
			}
			count = len(records)
			return nil
		})
		err = g.Wait()

		fmt.Printf("Backend: %s\n", client.BaseURL())
		if err != nil {
			fmt.Printf("  [-] service: %v\n", err)
		} else {
			fmt.Printf("  [+] service: %s\n", status)
		}
		if histErr != nil {
			fmt.Printf("  [-] history: %v\n", histErr)
		} else {
			fmt.Printf("  [+] history: %d scan(s) recorded\n", count)
		}

		if err != nil {
			return err
		}
		if histErr != nil {
			return fmt.Errorf("history: %w", histErr)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
