package models

import "time"

// JournalEntry is the local record of one submission started from this
// client. It never carries scan output.
type JournalEntry struct {
	ID         string        `json:"id"`
	Tool       string        `json:"tool"`
	Target     string        `json:"target"`
	Options    string        `json:"options,omitempty"`
	State      string        `json:"state"`
	Status     OutcomeStatus `json:"status,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt *time.Time    `json:"finished_at,omitempty"`
}

// Finished reports whether the submission reached a terminal state.
func (e *JournalEntry) Finished() bool {
	return e.FinishedAt != nil
}

// Duration returns how long the submission took, or zero while unfinished.
func (e *JournalEntry) Duration() time.Duration {
	if e.FinishedAt == nil {
		return 0
	}
	return e.FinishedAt.Sub(e.StartedAt)
}
