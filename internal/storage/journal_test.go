package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hakim/scandeck/internal/models"
)

func openJournal(t *testing.T) (*Journal, *time.Time) {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })

	clock := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	j.now = func() time.Time { return clock }
	return j, &clock
}

func TestJournalBeginAndFinish(t *testing.T) {
	j, clock := openJournal(t)

	id, err := j.Begin(models.ScanRequest{Tool: "nmap", Target: "example.com", Options: "-sV"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	e, err := j.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "nmap", e.Tool)
	assert.Equal(t, "example.com", e.Target)
	assert.Equal(t, "-sV", e.Options)
	assert.Equal(t, "dispatching", e.State)
	assert.False(t, e.Finished())
	assert.Zero(t, e.Duration())

	*clock = clock.Add(90 * time.Second)
	require.NoError(t, j.Finish(id, "succeeded", models.OutcomeCompleted))

	e, err = j.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "succeeded", e.State)
	assert.Equal(t, models.OutcomeCompleted, e.Status)
	assert.True(t, e.Finished())
	assert.Equal(t, 90*time.Second, e.Duration())
}

func TestJournalFinishKeepsFirstFinishTime(t *testing.T) {
	j, clock := openJournal(t)
	id, err := j.Begin(models.ScanRequest{Tool: "nikto", Target: "a.example"})
	require.NoError(t, err)

	require.NoError(t, j.Finish(id, "failed-remote", models.OutcomeFailed))
	first, err := j.Get(id)
	require.NoError(t, err)

	*clock = clock.Add(time.Hour)
	require.NoError(t, j.Finish(id, "failed-remote", models.OutcomeFailed))
	second, err := j.Get(id)
	require.NoError(t, err)
	assert.Equal(t, first.FinishedAt, second.FinishedAt)
}

func TestJournalMissingEntry(t *testing.T) {
	j, _ := openJournal(t)

	_, err := j.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, j.Finish("nope", "succeeded", models.OutcomeCompleted), ErrNotFound)
}

func TestJournalListNewestFirst(t *testing.T) {
	j, clock := openJournal(t)

	var ids []string
	for _, tool := range []string{"nmap", "nikto", "nmap"} {
		id, err := j.Begin(models.ScanRequest{Tool: tool, Target: "example.com"})
		require.NoError(t, err)
		ids = append(ids, id)
		*clock = clock.Add(time.Minute)
	}

	all, err := j.List("", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ids[2], all[0].ID)
	assert.Equal(t, ids[0], all[2].ID)

	nmap, err := j.List("nmap", 0)
	require.NoError(t, err)
	require.Len(t, nmap, 2)
	assert.Equal(t, ids[2], nmap[0].ID)

	limited, err := j.List("", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	none, err := j.List("sslyze", 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestJournalSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := Open(path)
	require.NoError(t, err)
	id, err := j.Begin(models.ScanRequest{Tool: "openvas-start"})
	require.NoError(t, err)
	require.NoError(t, j.Close())

	j, err = Open(path)
	require.NoError(t, err)
	defer j.Close()
	e, err := j.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "openvas-start", e.Tool)
}
