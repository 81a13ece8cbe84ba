package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordStatusIndicator(t *testing.T) {
	tests := []struct {
		status RecordStatus
		want   Indicator
	}{
		{RecordCompleted, IndicatorSuccess},
		{RecordFailed, IndicatorFailure},
		{RecordPending, IndicatorInProgress},
		{RecordRunning, IndicatorInProgress},
		{"timeout", IndicatorInProgress},
		{"error", IndicatorInProgress},
		{"", IndicatorInProgress},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.Indicator())
		})
	}
}

func TestOutcomeStatusIndicator(t *testing.T) {
	assert.Equal(t, IndicatorSuccess, OutcomeCompleted.Indicator())
	assert.Equal(t, IndicatorFailure, OutcomeFailed.Indicator())
	assert.Equal(t, IndicatorFailure, OutcomeError.Indicator())
	assert.Equal(t, IndicatorInProgress, OutcomePending.Indicator())
	assert.False(t, OutcomePending.IsTerminal())
	assert.True(t, OutcomeError.IsTerminal())
}

func TestCreatedTime(t *testing.T) {
	r := ScanRecord{CreatedAt: "2025-01-02T03:04:05.123456"}
	got, ok := r.CreatedTime()
	require.True(t, ok)
	assert.Equal(t, 2025, got.Year())
	assert.Equal(t, 5, got.Second())

	r.CreatedAt = "2025-01-02T03:04:05+02:00"
	got, ok = r.CreatedTime()
	require.True(t, ok)
	assert.Equal(t, 1, got.UTC().Hour())

	r.CreatedAt = "yesterday"
	_, ok = r.CreatedTime()
	assert.False(t, ok)
	assert.Equal(t, "yesterday", r.CreatedDisplay())
}

func TestScanRecordDecodesOpaqueID(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"string", `{"id":"a1b2","tool":"nmap"}`, "a1b2"},
		{"integer", `{"id":17,"tool":"nmap"}`, "17"},
		{"large integer", `{"id":9007199254740993,"tool":"nmap"}`, "9007199254740993"},
		{"missing", `{"tool":"nmap"}`, ""},
		{"null", `{"id":null,"tool":"nmap"}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec ScanRecord
			require.NoError(t, json.Unmarshal([]byte(tt.body), &rec))
			assert.Equal(t, tt.want, rec.ID)
			assert.Equal(t, "nmap", rec.Tool)
		})
	}
}

func TestScanRecordRejectsStructuredID(t *testing.T) {
	var rec ScanRecord
	err := json.Unmarshal([]byte(`{"id":{"oid":1}}`), &rec)
	assert.ErrorContains(t, err, "scan id must be a string or number")
}

func TestScanRecordEncodesIDAsString(t *testing.T) {
	data, err := json.Marshal(ScanRecord{ID: "17", Tool: "nmap"})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"id":"17"`)
}
