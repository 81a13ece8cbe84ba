package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/hakim/scandeck/internal/api"
	"github.com/hakim/scandeck/internal/models"
)

// ErrNoSuchScan is returned by Open when neither the list nor the backend
// knows the ID.
var ErrNoSuchScan = errors.New("no such scan")

// Fetcher retrieves a single record by ID. *api.Client satisfies it.
type Fetcher interface {
	GetScan(ctx context.Context, id string) (*models.ScanRecord, error)
}

// Open returns the record with the given ID. A record in the held list is
// selected; one outside the list window is fetched from f and returned
// without becoming the selection. The list is refreshed first unless it has
// already loaded.
func (a *Aggregator) Open(ctx context.Context, id string, f Fetcher) (*models.ScanRecord, error) {
	if a.State() != StateLoaded {
		a.Refresh(ctx)
	}
	if a.State() == StateLoadFailed {
		return nil, fmt.Errorf("loading history: %w", a.Err())
	}

	err := a.SelectID(id)
	if err == nil {
		return a.Selected(), nil
	}
	if !errors.Is(err, ErrNotInHistory) || f == nil {
		return nil, err
	}

	rec, err := f.GetScan(ctx, id)
	if errors.Is(err, api.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchScan, id)
	}
	if err != nil {
		return nil, fmt.Errorf("fetching scan %s: %w", id, err)
	}
	return rec, nil
}
