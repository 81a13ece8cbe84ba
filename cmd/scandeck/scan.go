package main

import (
	"fmt"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/hakim/scandeck/internal/models"
	"github.com/hakim/scandeck/internal/notify"
	"github.com/hakim/scandeck/internal/pipeline"
	"github.com/hakim/scandeck/internal/report"
	"github.com/hakim/scandeck/internal/storage"
	"github.com/hakim/scandeck/internal/tools"
	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Dispatch a scan to the backend and wait for its result",
	Long: `Submit a scan of a target to the backend with one or more tools.

Each tool gets its own request; several tools run concurrently and their
outcomes are printed as they arrive. A failed or unreachable scan is reported
in its outcome, never retried.

Every submission is recorded in the local journal (db_path) unless --no-journal
is given. The journal keeps timing and terminal state, not output.

Examples:
  scandeck scan --tool nmap -t example.com
  scandeck scan --tool nmap --tool nuclei -t example.com --options "-sV"
  scandeck scan --preset web -t https://app.example.com --save
  scandeck scan --tool openvas-start`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// ── 1. Read all flags ──────────────────────────────────────────────────
		toolNames, _ := cmd.Flags().GetStringSlice("tool")
		presetName, _ := cmd.Flags().GetString("preset")
		target, _ := cmd.Flags().GetString("target")
		options, _ := cmd.Flags().GetString("options")
		webhookURL, _ := cmd.Flags().GetString("notify-webhook")
		save, _ := cmd.Flags().GetBool("save")
		noJournal, _ := cmd.Flags().GetBool("no-journal")
		maxParallel, _ := cmd.Flags().GetInt("max-parallel")

		// ── 2. Resolve tools (preset first, explicit --tool appended) ─────────
		if presetName != "" {
			preset, err := pipeline.GetPreset(presetName)
			if err != nil {
				return err
			}
			toolNames = append(preset.Tools, toolNames...)
		}
		if len(toolNames) == 0 {
			return fmt.Errorf("no tool selected. Use --tool or --preset (see 'scandeck tools')")
		}

		catalog, err := cfg.Catalog()
		if err != nil {
			return err
		}
		var selected []tools.Tool
		for _, name := range toolNames {
			if slices.ContainsFunc(selected, func(t tools.Tool) bool { return t.Name == name }) {
				continue
			}
			tool, err := catalog.Lookup(name)
			if err != nil {
				return err
			}
			selected = append(selected, tool)
		}

		// ── 3. Wire backend, journal and webhook ───────────────────────────────
		client, err := newClient()
		if err != nil {
			return err
		}

		batch := pipeline.BatchConfig{
			Target:        target,
			Options:       options,
			Tools:         selected,
			Dispatcher:    client,
			Scope:         cfg.Scope,
			Logger:        logger,
			MaxConcurrent: maxParallel,
		}

		if !noJournal && cfg.DBPath != "" {
			journal, err := storage.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer journal.Close()
			batch.Journal = journal
		}

		if webhookURL == "" {
			webhookURL = cfg.Notify.WebhookURL
		}
		if hook := notify.New(webhookURL, nil); hook.Enabled() {
			batch.Notifier = hook
		}

		// ── 4. Run and print outcomes as they arrive ───────────────────────────
		var out sync.Mutex
		batch.OnStart = func(tool string) {
			out.Lock()
			defer out.Unlock()
			fmt.Printf("[*] %s: dispatched to %s\n", tool, client.BaseURL())
		}
		batch.OnDone = func(r pipeline.Result) {
			out.Lock()
			defer out.Unlock()
			if r.Err != nil {
				fmt.Printf("[-] %v\n", r.Err)
				return
			}
			fmt.Println()
			report.WriteOutcome(os.Stdout, r.Outcome)
			fmt.Println(report.MutedStyle.Render(fmt.Sprintf("%s in %s", r.State, r.Elapsed.Round(time.Millisecond))))
		}

		results, err := pipeline.Run(cmd.Context(), batch)
		if err != nil {
			return err
		}

		// ── 5. Optional export and summary ─────────────────────────────────────
		failed := 0
		now := time.Now()
		for _, r := range results {
			if !r.Succeeded() {
				failed++
			}
			if save && r.Outcome != nil {
				rec := models.ScanRecord{Tool: r.Outcome.Tool, Target: r.Outcome.Target, Result: r.Outcome.Output}
				path, err := storage.SaveResult(cfg.ExportDir, rec, now)
				if err != nil {
					fmt.Printf("[!] Warning: %v\n", err)
					continue
				}
				fmt.Printf("[+] Saved %s output to %s\n", r.Tool, path)
			}
		}

		fmt.Println()
		fmt.Printf("Summary: %d/%d scan(s) completed\n", len(results)-failed, len(results))
		if failed > 0 {
			return fmt.Errorf("%d scan(s) did not complete", failed)
		}
		return nil
	},
}

func init() {
	scanCmd.Flags().StringSlice("tool", nil, "tool to run (repeatable; see 'scandeck tools')")
	scanCmd.Flags().String("preset", "", "named tool group: web, network, full")
	scanCmd.Flags().StringP("target", "t", "", "scan target (host, IP, CIDR or URL)")
	scanCmd.Flags().String("options", "", "extra tool options passed through to the backend")
	scanCmd.Flags().String("notify-webhook", "", "HTTP webhook URL to POST a completion summary to")
	scanCmd.Flags().Bool("save", false, "write each outcome's output to export_dir")
	scanCmd.Flags().Bool("no-journal", false, "do not record this dispatch in the local journal")
	scanCmd.Flags().Int("max-parallel", 0, "limit concurrent dispatches (0 = one per tool)")
	rootCmd.AddCommand(scanCmd)
}
