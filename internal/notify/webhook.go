// Package notify posts scan completion events to a webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hakim/scandeck/internal/models"
)

const defaultTimeout = 10 * time.Second

// Webhook sends completion notifications. A nil or URL-less Webhook is a no-op.
type Webhook struct {
	URL    string
	client *http.Client
}

// completionPayload is the JSON body posted to the webhook endpoint.
type completionPayload struct {
	Tool           string  `json:"tool"`
	Target         string  `json:"target"`
	Status         string  `json:"status"`
	State          string  `json:"state"`
	JournalID      string  `json:"journal_id,omitempty"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
}

// New returns a webhook posting to url. An empty url disables notifications.
func New(url string, client *http.Client) *Webhook {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Webhook{URL: url, client: client}
}

// Event describes one finished dispatch.
type Event struct {
	Outcome   *models.ScanOutcome
	State     string
	JournalID string
	Elapsed   time.Duration
}

// Enabled reports whether notifications will be sent.
func (w *Webhook) Enabled() bool {
	return w != nil && w.URL != ""
}

// SendCompletion posts the event to the webhook. The scan output is not
// included. Errors are non-fatal; callers should treat them as warnings.
func (w *Webhook) SendCompletion(ctx context.Context, ev Event) error {
	if !w.Enabled() {
		return nil
	}
	if ev.Outcome == nil {
		return fmt.Errorf("notify: event has no outcome")
	}

	payload := completionPayload{
		Tool:           ev.Outcome.Tool,
		Target:         ev.Outcome.Target,
		Status:         string(ev.Outcome.Status),
		State:          ev.State,
		JournalID:      ev.JournalID,
		ElapsedSeconds: ev.Elapsed.Seconds(),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("notify: marshaling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify: posting to %s: %w", w.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notify: webhook returned non-2xx status %d", resp.StatusCode)
	}
	return nil
}
