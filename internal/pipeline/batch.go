// Package pipeline runs one scan per selected tool against a shared target,
// journaling and announcing each terminal outcome.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/hakim/scandeck/internal/models"
	"github.com/hakim/scandeck/internal/notify"
	"github.com/hakim/scandeck/internal/scanjob"
	"github.com/hakim/scandeck/internal/tools"
)

// Journal is the minimal bbolt contract required by the batch runner.
// Using an interface keeps the package testable without a real database.
type Journal interface {
	Begin(req models.ScanRequest) (string, error)
	Finish(id, state string, status models.OutcomeStatus) error
}

// Notifier announces a finished dispatch. *notify.Webhook satisfies it.
type Notifier interface {
	SendCompletion(ctx context.Context, ev notify.Event) error
}

// BatchConfig controls a single Run.
type BatchConfig struct {
	Target  string
	Options string
	Tools   []tools.Tool

	// Dispatcher reaches the backend. Required.
	Dispatcher scanjob.Dispatcher
	Scope      scanjob.ScopeConfig

	// Journal and Notifier are optional.
	Journal  Journal
	Notifier Notifier
	Logger   *slog.Logger

	// MaxConcurrent caps simultaneous dispatches. Zero means one per tool.
	MaxConcurrent int

	// OnStart is called when a tool's request is about to be dispatched.
	OnStart func(tool string)
	// OnDone is called once per tool, with either a terminal outcome or a
	// validation error. Calls may come from several goroutines.
	OnDone func(r Result)
}

// Result summarises one tool's run.
type Result struct {
	Tool      string
	Outcome   *models.ScanOutcome
	State     scanjob.State
	JournalID string
	Elapsed   time.Duration

	// Err is set when the request never left the client (validation).
	Err error
}

// Succeeded reports whether the backend completed the scan.
func (r Result) Succeeded() bool {
	return r.Err == nil && r.State == scanjob.StateSucceeded
}

// Run dispatches the target to every tool concurrently, each through its own
// controller, and returns results in tool order. Controllers share nothing, so
// one tool's failure never affects another.
func Run(ctx context.Context, cfg BatchConfig) ([]Result, error) {
	if cfg.Dispatcher == nil {
		return nil, errors.New("pipeline: dispatcher must not be nil")
	}
	if len(cfg.Tools) == 0 {
		return nil, errors.New("pipeline: no tools selected")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	limit := cfg.MaxConcurrent
	if limit <= 0 || limit > len(cfg.Tools) {
		limit = len(cfg.Tools)
	}

	results := make([]Result, len(cfg.Tools))
	p := pool.New().WithMaxGoroutines(limit)
	for i, tool := range cfg.Tools {
		p.Go(func() {
			results[i] = runOne(ctx, cfg, tool, logger)
			if cfg.OnDone != nil {
				cfg.OnDone(results[i])
			}
		})
	}
	p.Wait()

	return results, nil
}

func runOne(ctx context.Context, cfg BatchConfig, tool tools.Tool, logger *slog.Logger) Result {
	res := Result{Tool: tool.Name}
	var started time.Time

	var ctrl *scanjob.Controller
	observer := func(from, to scanjob.State) {
		if to != scanjob.StateDispatching {
			return
		}
		started = time.Now()
		if cfg.OnStart != nil {
			cfg.OnStart(tool.Name)
		}
		if cfg.Journal == nil {
			return
		}
		pending := ctrl.Outcome()
		id, err := cfg.Journal.Begin(models.ScanRequest{
			Tool:    pending.Tool,
			Target:  pending.Target,
			Options: ctrl.Options(),
		})
		if err != nil {
			logger.WarnContext(ctx, "journal write failed", slog.String("tool", tool.Name), slog.String("error", err.Error()))
			return
		}
		res.JournalID = id
	}

	ctrl = scanjob.New(tool, cfg.Dispatcher,
		scanjob.WithLogger(logger),
		scanjob.WithScope(cfg.Scope),
		scanjob.WithObserver(observer),
	)
	// Input is never locked before the first submit.
	_ = ctrl.SetTarget(cfg.Target)
	_ = ctrl.SetOptions(cfg.Options)

	outcome, err := ctrl.Submit(ctx)
	res.State = ctrl.State()
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", tool.Name, err)
		return res
	}
	res.Outcome = outcome
	res.Elapsed = time.Since(started)

	if cfg.Journal != nil && res.JournalID != "" {
		if err := cfg.Journal.Finish(res.JournalID, res.State.String(), outcome.Status); err != nil {
			logger.WarnContext(ctx, "journal update failed", slog.String("tool", tool.Name), slog.String("error", err.Error()))
		}
	}
	if cfg.Notifier != nil {
		ev := notify.Event{Outcome: outcome, State: res.State.String(), JournalID: res.JournalID, Elapsed: res.Elapsed}
		if err := cfg.Notifier.SendCompletion(ctx, ev); err != nil {
			logger.WarnContext(ctx, "webhook notification failed", slog.String("tool", tool.Name), slog.String("error", err.Error()))
		}
	}
	return res
}
