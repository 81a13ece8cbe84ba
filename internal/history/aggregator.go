// Package history surfaces previously executed scans from the backend and
// tracks which one, if any, is open for detail display.
package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hakim/scandeck/internal/models"
)

// ErrNotInHistory rejects selecting a record absent from the current list.
var ErrNotInHistory = errors.New("record is not in the current history")

// State is the load status of the history list.
type State int

const (
	StateLoading State = iota
	StateLoaded
	StateLoadFailed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateLoadFailed:
		return "load-failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Source retrieves scan history. *api.Client satisfies it.
type Source interface {
	ListScans(ctx context.Context) ([]models.ScanRecord, error)
}

// Aggregator holds the most recently fetched history and the current
// selection. All methods are safe for concurrent use.
type Aggregator struct {
	source Source
	logger *slog.Logger

	mu         sync.Mutex
	state      State
	records    []models.ScanRecord
	selected   *models.ScanRecord
	err        error
	generation uint64
	inflight   int
}

// New creates an aggregator in the loading state. Call Refresh to activate it.
func New(source Source, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		source: source,
		logger: logger.With(slog.String("component", "history")),
		state:  StateLoading,
	}
}

// Refresh fetches the history and replaces the held list. On failure the
// list is emptied and the state becomes load-failed; the error is kept for
// display and never returned. When refreshes overlap, the one started last
// wins.
func (a *Aggregator) Refresh(ctx context.Context) {
	a.mu.Lock()
	a.generation++
	gen := a.generation
	a.inflight++
	a.mu.Unlock()

	records, err := a.fetch(ctx)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.inflight--
	if gen != a.generation {
		a.logger.DebugContext(ctx, "discarding stale history refresh")
		return
	}

	if err != nil {
		a.logger.WarnContext(ctx, "history load failed", slog.String("error", err.Error()))
		a.state = StateLoadFailed
		a.records = nil
		a.err = err
		a.selected = nil
		return
	}

	a.state = StateLoaded
	a.records = records
	a.err = nil
	a.reconcileSelection()
	a.logger.DebugContext(ctx, "history loaded", slog.Int("count", len(records)))
}

func (a *Aggregator) fetch(ctx context.Context) (records []models.ScanRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			records, err = nil, fmt.Errorf("history source panicked: %v", r)
		}
	}()
	records, err = a.source.ListScans(ctx)
	if err != nil {
		return nil, err
	}
	return append([]models.ScanRecord{}, records...), nil
}

// reconcileSelection keeps the selection only if its ID survived the
// refresh, re-pointing it at the fresh copy. Must hold a.mu.
func (a *Aggregator) reconcileSelection() {
	if a.selected == nil {
		return
	}
	if rec, ok := a.find(a.selected.ID); ok {
		a.selected = &rec
		return
	}
	a.selected = nil
}

// Select opens rec for detail display, replacing any prior selection.
func (a *Aggregator) Select(rec models.ScanRecord) error {
	return a.SelectID(rec.ID)
}

// SelectID opens the record with the given ID for detail display.
func (a *Aggregator) SelectID(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	rec, ok := a.find(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotInHistory, id)
	}
	a.selected = &rec
	return nil
}

// ClearSelection returns to the list view.
func (a *Aggregator) ClearSelection() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.selected = nil
}

// Selected returns the selected record, or nil.
func (a *Aggregator) Selected() *models.ScanRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.selected == nil {
		return nil
	}
	rec := *a.selected
	return &rec
}

// State returns the load state.
func (a *Aggregator) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Err returns the cause of the last failed load, or nil.
func (a *Aggregator) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

// Refreshing reports whether a refresh is outstanding.
func (a *Aggregator) Refreshing() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.inflight > 0
}

// Records returns the held list in server order.
func (a *Aggregator) Records() []models.ScanRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]models.ScanRecord{}, a.records...)
}

// Lookup finds a record in the held list by ID.
func (a *Aggregator) Lookup(id string) (models.ScanRecord, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.find(id)
}

func (a *Aggregator) find(id string) (models.ScanRecord, bool) {
	for _, rec := range a.records {
		if rec.ID == id {
			return rec, true
		}
	}
	return models.ScanRecord{}, false
}
