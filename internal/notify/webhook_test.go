package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hakim/scandeck/internal/models"
)

func TestSendCompletion(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	hook := New(srv.URL, srv.Client())
	err := hook.SendCompletion(context.Background(), Event{
		Outcome:   &models.ScanOutcome{Tool: "nmap", Target: "example.com", Status: models.OutcomeCompleted, Output: "secret"},
		State:     "succeeded",
		JournalID: "j-1",
		Elapsed:   2500 * time.Millisecond,
	})
	require.NoError(t, err)

	assert.Equal(t, "nmap", got["tool"])
	assert.Equal(t, "example.com", got["target"])
	assert.Equal(t, "completed", got["status"])
	assert.Equal(t, "succeeded", got["state"])
	assert.Equal(t, "j-1", got["journal_id"])
	assert.Equal(t, 2.5, got["elapsed_seconds"])
	assert.NotContains(t, got, "output")
}

func TestSendCompletionNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := New(srv.URL, nil).SendCompletion(context.Background(), Event{
		Outcome: &models.ScanOutcome{Tool: "nikto", Status: models.OutcomeFailed},
	})
	assert.ErrorContains(t, err, "non-2xx status 502")
}

func TestDisabledWebhookIsNoop(t *testing.T) {
	var nilHook *Webhook
	assert.False(t, nilHook.Enabled())
	assert.NoError(t, nilHook.SendCompletion(context.Background(), Event{}))

	hook := New("", nil)
	assert.False(t, hook.Enabled())
	assert.NoError(t, hook.SendCompletion(context.Background(), Event{}))
}

func TestSendCompletionRequiresOutcome(t *testing.T) {
	err := New("http://127.0.0.1:1", nil).SendCompletion(context.Background(), Event{})
	assert.ErrorContains(t, err, "no outcome")
}
