package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ScanRequest is the job body posted to the execution backend.
type ScanRequest struct {
	Target  string `json:"target"`
	Tool    string `json:"tool"`
	Options string `json:"options"`
}

// ScanOutcome is the result of one dispatched request.
type ScanOutcome struct {
	Tool   string        `json:"tool"`
	Target string        `json:"target"`
	Output string        `json:"output"`
	Status OutcomeStatus `json:"status"`
}

// Pending reports whether the outcome has not reached a terminal status.
func (o *ScanOutcome) Pending() bool {
	return !o.Status.IsTerminal()
}

// ScanRecord is a historical scan entry held by the backend store.
type ScanRecord struct {
	ID        string       `json:"id"`
	Tool      string       `json:"tool"`
	Target    string       `json:"target"`
	Status    RecordStatus `json:"status"`
	CreatedAt string       `json:"created_at"`
	Result    string       `json:"result"`
}

// UnmarshalJSON accepts the record ID as a JSON string or number. Backends
// keyed by a serial column send integers; the ID is kept opaque either way.
func (r *ScanRecord) UnmarshalJSON(data []byte) error {
	type plain ScanRecord
	aux := struct {
		*plain
		ID json.RawMessage `json:"id"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	id, err := decodeID(aux.ID)
	if err != nil {
		return err
	}
	r.ID = id
	return nil
}

func decodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		err := json.Unmarshal(raw, &s)
		return s, err
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("scan id must be a string or number, got %s", raw)
	}
	return n.String(), nil
}

// createdAtLayouts covers the timestamp shapes the backend has been seen to
// emit: Python isoformat() without a zone, and RFC 3339 with one.
var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
}

// CreatedTime parses CreatedAt. Timestamps without a zone are taken as UTC.
func (r ScanRecord) CreatedTime() (time.Time, bool) {
	raw := strings.TrimSpace(r.CreatedAt)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// CreatedDisplay formats CreatedAt for humans, falling back to the raw value.
func (r ScanRecord) CreatedDisplay() string {
	t, ok := r.CreatedTime()
	if !ok {
		return r.CreatedAt
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
