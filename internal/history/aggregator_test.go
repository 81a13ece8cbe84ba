package history

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hakim/scandeck/internal/api"
	"github.com/hakim/scandeck/internal/logging"
	"github.com/hakim/scandeck/internal/mockbackend"
	"github.com/hakim/scandeck/internal/models"
)

type stubSource struct {
	mu      sync.Mutex
	records []models.ScanRecord
	err     error
	calls   int
}

func (s *stubSource) ListScans(context.Context) ([]models.ScanRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}

func (s *stubSource) set(records []models.ScanRecord, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records, s.err = records, err
}

var sample = []models.ScanRecord{
	{ID: "c", Tool: "nuclei", Target: "10.0.0.5", Status: "running", CreatedAt: "2025-01-03T00:00:00"},
	{ID: "a", Tool: "nmap", Target: "example.com", Status: "completed", CreatedAt: "2025-01-01T00:00:00", Result: "22/tcp open ssh"},
	{ID: "b", Tool: "nikto", Target: "example.com", Status: "failed", CreatedAt: "2025-01-02T00:00:00"},
}

func newAggregator(src Source) *Aggregator {
	return New(src, logging.Discard())
}

func TestStartsLoading(t *testing.T) {
	a := newAggregator(&stubSource{})
	assert.Equal(t, StateLoading, a.State())
	assert.Equal(t, ViewLoading, a.View().Kind)
	assert.Empty(t, a.Records())
}

func TestRefreshKeepsServerOrder(t *testing.T) {
	a := newAggregator(&stubSource{records: sample})
	a.Refresh(context.Background())

	require.Equal(t, StateLoaded, a.State())
	ids := []string{}
	for _, r := range a.Records() {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"c", "a", "b"}, ids)

	v := a.View()
	assert.Equal(t, ViewRecords, v.Kind)
	assert.Len(t, v.Records, 3)
	assert.Nil(t, v.Err)
}

func TestEmptyHistoryFromBackend(t *testing.T) {
	srv := httptest.NewServer(mockbackend.New())
	t.Cleanup(srv.Close)
	client, err := api.New(srv.URL, api.WithLogger(logging.Discard()))
	require.NoError(t, err)

	a := newAggregator(client)
	a.Refresh(context.Background())

	assert.Equal(t, StateLoaded, a.State())
	assert.Empty(t, a.Records())
	v := a.View()
	assert.Equal(t, ViewEmpty, v.Kind)
	assert.Equal(t, "No scans yet", v.Kind.Message())
}

func TestUnreachableBackendIsLoadFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	client, err := api.New(url, api.WithLogger(logging.Discard()))
	require.NoError(t, err)

	a := newAggregator(client)
	a.Refresh(context.Background())

	assert.Equal(t, StateLoadFailed, a.State())
	assert.Empty(t, a.Records())
	v := a.View()
	assert.Equal(t, ViewLoadFailed, v.Kind)
	assert.Error(t, v.Err)
	assert.NotEqual(t, ViewEmpty.Message(), v.Kind.Message())
}

func TestFailureDropsPreviousRecordsAndRecovers(t *testing.T) {
	src := &stubSource{records: sample}
	a := newAggregator(src)
	a.Refresh(context.Background())
	require.NoError(t, a.SelectID("a"))

	src.set(nil, errors.New("connection refused"))
	a.Refresh(context.Background())
	assert.Equal(t, StateLoadFailed, a.State())
	assert.Empty(t, a.Records())
	assert.Nil(t, a.Selected())
	assert.EqualError(t, a.Err(), "connection refused")

	src.set(sample[:1], nil)
	a.Refresh(context.Background())
	assert.Equal(t, StateLoaded, a.State())
	assert.Len(t, a.Records(), 1)
	assert.NoError(t, a.Err())
	assert.Equal(t, 3, src.calls)
}

func TestSelectIsIdempotent(t *testing.T) {
	a := newAggregator(&stubSource{records: sample})
	a.Refresh(context.Background())

	require.NoError(t, a.Select(sample[1]))
	first := a.View()
	require.NoError(t, a.Select(sample[1]))
	second := a.View()

	assert.Equal(t, first, second)
	assert.Equal(t, "22/tcp open ssh", second.Selected.Result)
}

func TestSelectReplacesAndClearAlwaysClears(t *testing.T) {
	a := newAggregator(&stubSource{records: sample})
	a.Refresh(context.Background())

	for _, id := range []string{"a", "b", "c", "a"} {
		require.NoError(t, a.SelectID(id))
		assert.Equal(t, id, a.Selected().ID)
	}
	a.ClearSelection()
	assert.Nil(t, a.Selected())
	a.ClearSelection()
	assert.Nil(t, a.View().Selected)
}

func TestSelectRequiresPresence(t *testing.T) {
	a := newAggregator(&stubSource{records: sample})

	err := a.Select(sample[0])
	assert.ErrorIs(t, err, ErrNotInHistory, "nothing is loaded yet")

	a.Refresh(context.Background())
	err = a.SelectID("zzz")
	assert.ErrorIs(t, err, ErrNotInHistory)
	assert.Nil(t, a.Selected())
}

func TestSelectionSurvivesRefreshByID(t *testing.T) {
	src := &stubSource{records: sample}
	a := newAggregator(src)
	a.Refresh(context.Background())
	require.NoError(t, a.SelectID("c"))

	updated := []models.ScanRecord{
		{ID: "c", Tool: "nuclei", Target: "10.0.0.5", Status: "completed", Result: "done"},
	}
	src.set(updated, nil)
	a.Refresh(context.Background())
	require.NotNil(t, a.Selected())
	assert.Equal(t, models.RecordCompleted, a.Selected().Status)

	src.set(sample[1:], nil)
	a.Refresh(context.Background())
	assert.Nil(t, a.Selected())
}

func TestUnknownStatusesAreNotErrors(t *testing.T) {
	a := newAggregator(&stubSource{records: []models.ScanRecord{
		{ID: "x", Status: "queued"},
		{ID: "y", Status: "timeout"},
	}})
	a.Refresh(context.Background())

	require.Equal(t, StateLoaded, a.State())
	for _, r := range a.Records() {
		assert.Equal(t, models.IndicatorInProgress, r.Status.Indicator())
	}
}

// gatedSource blocks each call until the test hands it a result.
type gatedSource struct {
	calls chan chan []models.ScanRecord
}

func (g *gatedSource) ListScans(context.Context) ([]models.ScanRecord, error) {
	reply := make(chan []models.ScanRecord)
	g.calls <- reply
	return <-reply, nil
}

func TestLatestRefreshWins(t *testing.T) {
	src := &gatedSource{calls: make(chan chan []models.ScanRecord)}
	a := newAggregator(src)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() { defer wg.Done(); a.Refresh(context.Background()) }()
	older := <-src.calls

	wg.Add(1)
	go func() { defer wg.Done(); a.Refresh(context.Background()) }()
	newer := <-src.calls
	assert.True(t, a.Refreshing())

	newer <- []models.ScanRecord{{ID: "new"}}
	older <- []models.ScanRecord{{ID: "old"}}
	wg.Wait()

	require.Len(t, a.Records(), 1)
	assert.Equal(t, "new", a.Records()[0].ID)
	assert.False(t, a.Refreshing())
}

type panicSource struct{}

func (panicSource) ListScans(context.Context) ([]models.ScanRecord, error) { panic("boom") }

func TestPanickingSourceBecomesLoadFailure(t *testing.T) {
	a := newAggregator(panicSource{})
	a.Refresh(context.Background())
	assert.Equal(t, StateLoadFailed, a.State())
	assert.ErrorContains(t, a.Err(), "boom")
}

func TestServerErrorIsLoadFailureNotUnreachable(t *testing.T) {
	backend := mockbackend.New()
	backend.SetHistoryFailure(true)
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)
	client, err := api.New(srv.URL, api.WithLogger(logging.Discard()))
	require.NoError(t, err)

	a := newAggregator(client)
	a.Refresh(context.Background())

	v := a.View()
	assert.Equal(t, ViewLoadFailed, v.Kind)
	assert.Equal(t, "Could not load scan history", v.Kind.Message())
	assert.ErrorContains(t, v.Err, "database unavailable")
}
