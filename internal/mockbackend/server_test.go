package mockbackend

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hakim/scandeck/internal/models"
)

func do(t *testing.T, s http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestScanPersistsRecordNewestFirst(t *testing.T) {
	clock := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s := New(WithClock(func() time.Time { clock = clock.Add(time.Minute); return clock }))

	rec := do(t, s, http.MethodPost, "/scan/nmap", `{"target":"example.com","tool":"nmap","options":""}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var out models.ScanOutcome
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.Equal(t, models.OutcomeCompleted, out.Status)
	assert.Contains(t, out.Output, "22/tcp open ssh")

	do(t, s, http.MethodPost, "/scan/nikto", `{"target":"fail.example.com","tool":"nikto"}`)

	records := s.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "nikto", records[0].Tool)
	assert.Equal(t, models.RecordFailed, records[0].Status)
	assert.Equal(t, "nmap", records[1].Tool)
	assert.Equal(t, 2, s.Dispatches())
}

func TestUnknownToolIs404(t *testing.T) {
	s := New(WithTools("nmap"))
	rec := do(t, s, http.MethodPost, "/scan/metasploit", `{"target":"x","tool":"metasploit"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 0, s.Dispatches())
}

func TestListScansEmptyIsArray(t *testing.T) {
	rec := do(t, New(), http.MethodGet, "/scans", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"scans":[]}`, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHistoryFailure(t *testing.T) {
	s := New()
	s.SetHistoryFailure(true)
	rec := do(t, s, http.MethodGet, "/scans", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "database unavailable")
}

func TestGetScan(t *testing.T) {
	s := New(WithRecords(models.ScanRecord{ID: "abc", Tool: "nmap", Status: "running"}))

	rec := do(t, s, http.MethodGet, "/scans/abc", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"running"`)

	rec = do(t, s, http.MethodGet, "/scans/zzz", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPreflight(t *testing.T) {
	rec := do(t, New(), http.MethodOptions, "/scan/nmap", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
