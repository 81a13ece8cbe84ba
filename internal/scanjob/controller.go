// Package scanjob owns the lifecycle of a single scan submission: input
// validation, dispatch to the execution backend, and capture of the terminal
// outcome.
package scanjob

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/hakim/scandeck/internal/logging"
	"github.com/hakim/scandeck/internal/models"
	"github.com/hakim/scandeck/internal/tools"
)

// State is a step in the submission lifecycle.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateDispatching
	StateAwaitingResponse
	StateSucceeded
	StateFailedRemote
	StateFailedTransport
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateDispatching:
		return "dispatching"
	case StateAwaitingResponse:
		return "awaiting-response"
	case StateSucceeded:
		return "succeeded"
	case StateFailedRemote:
		return "failed-remote"
	case StateFailedTransport:
		return "failed-transport"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Busy reports whether a request is outstanding.
func (s State) Busy() bool {
	return s == StateDispatching || s == StateAwaitingResponse
}

// Terminal reports whether the state ends a submission.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailedRemote || s == StateFailedTransport
}

// Dispatcher sends one scan request to the execution backend.
// *api.Client satisfies it.
type Dispatcher interface {
	Dispatch(ctx context.Context, req models.ScanRequest) (*models.ScanOutcome, error)
}

// Observer is called after every state change, outside the controller lock.
type Observer func(from, to State)

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithScope restricts targets to the given scope.
func WithScope(s ScopeConfig) Option {
	return func(c *Controller) { c.scope = s }
}

// WithObserver registers a state change callback.
func WithObserver(o Observer) Option {
	return func(c *Controller) { c.observer = o }
}

// Controller manages one scan submission at a time for a fixed tool. At
// most one request is outstanding; the state itself is the guard.
type Controller struct {
	tool       tools.Tool
	dispatcher Dispatcher
	scope      ScopeConfig
	logger     *slog.Logger
	observer   Observer

	mu      sync.Mutex
	state   State
	target  string
	options string
	outcome *models.ScanOutcome
}

// New creates an idle controller bound to tool.
func New(tool tools.Tool, d Dispatcher, opts ...Option) *Controller {
	c := &Controller{
		tool:       tool,
		dispatcher: d,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(slog.String("component", "scanjob"), slog.String("tool", tool.Name))
	return c
}

// Tool returns the tool this controller dispatches.
func (c *Controller) Tool() tools.Tool { return c.tool }

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Target returns the pending target input.
func (c *Controller) Target() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

// Options returns the pending options input.
func (c *Controller) Options() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.options
}

// Outcome returns a copy of the latest outcome, or nil before the first
// submission. While a request is outstanding the outcome is pending.
func (c *Controller) Outcome() *models.ScanOutcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.outcome == nil {
		return nil
	}
	out := *c.outcome
	return &out
}

// SetTarget updates the pending target. Rejected while a request is outstanding.
func (c *Controller) SetTarget(v string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Busy() {
		return ErrInputLocked
	}
	c.target = v
	return nil
}

// SetOptions updates the pending options. Rejected while a request is outstanding.
func (c *Controller) SetOptions(v string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Busy() {
		return ErrInputLocked
	}
	c.options = v
	return nil
}

// Discard drops the current outcome and returns to idle.
func (c *Controller) Discard() error {
	c.mu.Lock()
	if c.state.Busy() {
		c.mu.Unlock()
		return ErrSubmitInFlight
	}
	from := c.state
	c.state = StateIdle
	c.outcome = nil
	c.mu.Unlock()

	c.notify(from, StateIdle)
	return nil
}

// Submit validates the pending input, dispatches exactly one request and
// blocks until it resolves. Backend and transport failures are returned as
// outcomes, not errors. The error is non-nil only for local rejections: a
// *ValidationError (state unchanged, backend not contacted) or
// ErrSubmitInFlight.
func (c *Controller) Submit(ctx context.Context) (*models.ScanOutcome, error) {
	c.mu.Lock()
	if c.state.Busy() {
		c.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	prev := c.state
	c.state = StateValidating
	req, err := c.buildRequest()
	if err != nil {
		c.state = prev
		c.mu.Unlock()
		c.notify(prev, StateValidating)
		c.notify(StateValidating, prev)
		c.logger.DebugContext(ctx, "scan rejected", slog.String("reason", err.Error()))
		return nil, err
	}
	c.state = StateDispatching
	c.outcome = &models.ScanOutcome{Tool: req.Tool, Target: req.Target}
	c.mu.Unlock()

	c.notify(prev, StateValidating)
	c.notify(StateValidating, StateDispatching)

	ctx = logging.ContextAttrs(ctx, slog.String("target", req.Target))
	c.logger.InfoContext(ctx, "dispatching scan")

	c.transition(StateDispatching, StateAwaitingResponse)
	resp, err := c.dispatch(ctx, req)

	c.mu.Lock()
	outcome, next := c.resolve(req, resp, err)
	c.outcome = outcome
	c.state = next
	result := *outcome
	c.mu.Unlock()

	c.notify(StateAwaitingResponse, next)

	if next == StateFailedTransport {
		c.logger.WarnContext(ctx, "scan transport failure", slog.String("error", err.Error()))
	} else {
		c.logger.InfoContext(ctx, "scan finished", slog.String("status", string(outcome.Status)))
	}
	return &result, nil
}

// buildRequest shapes the pending input into a ScanRequest. Must hold c.mu.
func (c *Controller) buildRequest() (models.ScanRequest, error) {
	target := strings.TrimSpace(c.target)
	if target == "" && c.tool.RequiresTarget {
		return models.ScanRequest{}, &ValidationError{Field: "target", Reason: "a target is required"}
	}
	if target != "" {
		if err := c.scope.Check(target); err != nil {
			return models.ScanRequest{}, &ValidationError{Field: "target", Reason: err.Error()}
		}
	}
	return models.ScanRequest{
		Target:  target,
		Tool:    c.tool.Name,
		Options: c.options,
	}, nil
}

// dispatch calls the dispatcher, converting a panic into an error so the
// controller always reaches a terminal state.
func (c *Controller) dispatch(ctx context.Context, req models.ScanRequest) (out *models.ScanOutcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("dispatch panicked: %v", r)
		}
	}()
	out, err = c.dispatcher.Dispatch(ctx, req)
	switch {
	case err != nil:
	case out == nil:
		err = fmt.Errorf("empty response from backend")
	case !out.Status.IsTerminal():
		err = fmt.Errorf("response from backend has no status")
	}
	return out, err
}

// resolve maps a dispatch result onto the terminal outcome and state. The
// backend's own status decides success; it is never reinterpreted.
func (c *Controller) resolve(req models.ScanRequest, resp *models.ScanOutcome, err error) (*models.ScanOutcome, State) {
	if err != nil {
		return &models.ScanOutcome{
			Tool:   req.Tool,
			Target: req.Target,
			Output: fmt.Sprintf("Error: %v", err),
			Status: models.OutcomeError,
		}, StateFailedTransport
	}

	out := *resp
	if out.Tool == "" {
		out.Tool = req.Tool
	}
	if out.Target == "" {
		out.Target = req.Target
	}
	if out.Status == models.OutcomeCompleted {
		return &out, StateSucceeded
	}
	return &out, StateFailedRemote
}

func (c *Controller) transition(from, to State) {
	c.mu.Lock()
	c.state = to
	c.mu.Unlock()
	c.notify(from, to)
}

func (c *Controller) notify(from, to State) {
	if c.observer != nil {
		c.observer(from, to)
	}
}
