// Package mockbackend is an in-process stand-in for the scan execution and
// history backend. It speaks the same HTTP API, runs no tools, and keeps
// history in memory.
package mockbackend

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hakim/scandeck/internal/models"
)

// historyLimit matches the backend's page size for GET /scans.
const historyLimit = 50

// Runner produces the output and status for a scan request.
type Runner func(ctx context.Context, req models.ScanRequest) (string, models.OutcomeStatus)

// Server implements the backend API over an in-memory history.
type Server struct {
	router chi.Router
	runner Runner
	tools  map[string]bool
	now    func() time.Time
	logger *slog.Logger

	mu          sync.Mutex
	records     []models.ScanRecord // newest first
	dispatches  int
	failHistory bool
}

// Option configures a Server.
type Option func(*Server)

// WithRunner replaces the canned scan runner.
func WithRunner(r Runner) Option {
	return func(s *Server) { s.runner = r }
}

// WithTools restricts POST /scan/{tool} to the given identifiers.
func WithTools(names ...string) Option {
	return func(s *Server) {
		s.tools = make(map[string]bool, len(names))
		for _, n := range names {
			s.tools[n] = true
		}
	}
}

// WithRecords seeds the history, newest first.
func WithRecords(records ...models.ScanRecord) Option {
	return func(s *Server) { s.records = append([]models.ScanRecord(nil), records...) }
}

// WithClock sets the time source for created_at stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New creates a mock backend. Without WithTools every tool name is accepted.
func New(opts ...Option) *Server {
	s := &Server{
		runner: CannedRunner,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(slog.String("component", "mockbackend"))
	s.routes()
	return s
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(corsMiddleware)

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Post("/scan/{tool}", s.handleScan)
	r.Get("/scans", s.handleListScans)
	r.Get("/scans/{id}", s.handleGetScan)

	s.router = r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Dispatches returns how many scan requests have been received.
func (s *Server) Dispatches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dispatches
}

// Records returns a copy of the history, newest first.
func (s *Server) Records() []models.ScanRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ScanRecord(nil), s.records...)
}

// SetHistoryFailure makes GET /scans answer 500 until cleared.
func (s *Server) SetHistoryFailure(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failHistory = fail
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Vulnerability Scanner API",
		"status":  "running",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	tool := chi.URLParam(r, "tool")
	if s.tools != nil && !s.tools[tool] {
		writeDetail(w, http.StatusNotFound, "Not Found")
		return
	}

	var req models.ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, fmt.Sprintf("invalid body: %v", err))
		return
	}

	s.mu.Lock()
	s.dispatches++
	s.mu.Unlock()

	output, status := s.runner(r.Context(), req)
	outcome := models.ScanOutcome{
		Tool:   tool,
		Target: req.Target,
		Output: output,
		Status: status,
	}

	// Only completed and failed runs are persisted, as the real backend does.
	if status == models.OutcomeCompleted || status == models.OutcomeFailed {
		rec := models.ScanRecord{
			ID:        uuid.New().String(),
			Tool:      tool,
			Target:    req.Target,
			Status:    models.RecordStatus(status),
			CreatedAt: s.now().UTC().Format("2006-01-02T15:04:05.000000"),
			Result:    output,
		}
		s.mu.Lock()
		s.records = append([]models.ScanRecord{rec}, s.records...)
		s.mu.Unlock()
	}

	s.logger.Debug("scan handled",
		slog.String("tool", tool),
		slog.String("target", req.Target),
		slog.String("status", string(status)))

	writeJSON(w, http.StatusOK, outcome)
}

func (s *Server) handleListScans(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	fail := s.failHistory
	records := s.records
	if len(records) > historyLimit {
		records = records[:historyLimit]
	}
	records = append([]models.ScanRecord{}, records...)
	s.mu.Unlock()

	if fail {
		writeDetail(w, http.StatusInternalServerError, "database unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"scans": records})
}

func (s *Server) handleGetScan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.records {
		if rec.ID == id {
			writeJSON(w, http.StatusOK, rec)
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "Scan not found")
}

// CannedRunner returns plausible tool output. Targets starting with "fail."
// produce a failed status so callers can exercise both outcomes.
func CannedRunner(_ context.Context, req models.ScanRequest) (string, models.OutcomeStatus) {
	if strings.HasPrefix(req.Target, "fail.") {
		return fmt.Sprintf("%s: failed to resolve %q", req.Tool, req.Target), models.OutcomeFailed
	}
	switch req.Tool {
	case "nmap":
		return fmt.Sprintf("Nmap scan report for %s\n22/tcp open ssh\n80/tcp open http\n", req.Target), models.OutcomeCompleted
	case "nikto":
		return fmt.Sprintf(`{"host":%q,"vulnerabilities":[]}`, req.Target), models.OutcomeCompleted
	case "nuclei":
		return fmt.Sprintf(`{"template-id":"tech-detect","host":%q,"severity":"info"}`, req.Target), models.OutcomeCompleted
	case "openvas-start":
		return "OpenVAS scanner service started", models.OutcomeCompleted
	default:
		return fmt.Sprintf("%s finished against %s", req.Tool, req.Target), models.OutcomeCompleted
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
