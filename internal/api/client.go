package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hakim/scandeck/internal/models"
)

// maxBodyBytes caps how much of a response is read. Raw tool output for a
// large nuclei or nikto run can be several megabytes.
const maxBodyBytes = 64 << 20

// Client talks to the scan execution and history backend.
type Client struct {
	baseURL *url.URL
	client  *http.Client
	timeout *time.Duration
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client. The client is never
// modified; a timeout set with WithTimeout applies to a copy.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithTimeout sets the transport timeout for one request/response cycle.
// Zero disables it. Applied after all other options regardless of order.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = &d }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client for the backend at baseURL, e.g. http://localhost:8000.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parsing backend url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("backend url %q must include scheme and host", baseURL)
	}
	u.Path = strings.TrimRight(u.Path, "/")

	c := &Client{
		baseURL: u,
		client:  &http.Client{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout != nil {
		hc := *c.client
		hc.Timeout = *c.timeout
		c.client = &hc
	}
	c.logger = c.logger.With(slog.String("component", "api"))
	return c, nil
}

// BaseURL returns the backend origin the client targets.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Dispatch posts a scan job and waits for the backend's result. The backend
// runs scans synchronously, so this blocks until the tool finishes.
func (c *Client) Dispatch(ctx context.Context, req models.ScanRequest) (*models.ScanOutcome, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling scan request: %w", err)
	}

	endpoint := c.endpoint("scan", req.Tool)
	c.logger.DebugContext(ctx, "dispatching scan",
		slog.String("tool", req.Tool),
		slog.String("target", req.Target),
		slog.String("url", endpoint))

	var out models.ScanOutcome
	if err := c.do(ctx, http.MethodPost, endpoint, body, &out); err != nil {
		return nil, err
	}
	if out.Status == "" {
		return nil, &TransportError{Op: http.MethodPost, URL: endpoint,
			Err: fmt.Errorf("%w: missing status field", ErrMalformedResponse)}
	}
	return &out, nil
}

type listScansResponse struct {
	Scans []models.ScanRecord `json:"scans"`
}

// ListScans returns the backend's scan history in the order it was sent.
// A missing or null scans field is an empty history.
func (c *Client) ListScans(ctx context.Context) ([]models.ScanRecord, error) {
	var resp listScansResponse
	if err := c.do(ctx, http.MethodGet, c.endpoint("scans"), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Scans == nil {
		return []models.ScanRecord{}, nil
	}
	c.logger.DebugContext(ctx, "fetched scan history", slog.Int("count", len(resp.Scans)))
	return resp.Scans, nil
}

// GetScan fetches one record by ID. Returns ErrNotFound when the backend
// answers 404.
func (c *Client) GetScan(ctx context.Context, id string) (*models.ScanRecord, error) {
	if id == "" {
		return nil, fmt.Errorf("scan id cannot be empty")
	}
	var rec models.ScanRecord
	err := c.do(ctx, http.MethodGet, c.endpoint("scans", id), nil, &rec)
	var se *StatusError
	if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

type healthResponse struct {
	Status string `json:"status"`
}

// Health queries the backend health endpoint and returns its status string.
func (c *Client) Health(ctx context.Context) (string, error) {
	var resp healthResponse
	if err := c.do(ctx, http.MethodGet, c.endpoint("health"), nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

func (c *Client) endpoint(segments ...string) string {
	u := *c.baseURL
	escaped := make([]string, 0, len(segments))
	for _, s := range segments {
		escaped = append(escaped, url.PathEscape(s))
	}
	u.Path = c.baseURL.Path + "/" + strings.Join(segments, "/")
	u.RawPath = c.baseURL.Path + "/" + strings.Join(escaped, "/")
	return u.String()
}

func (c *Client) do(ctx context.Context, method, endpoint string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "backend request failed",
			slog.String("method", method),
			slog.String("url", endpoint),
			slog.String("error", err.Error()))
		return &TransportError{Op: method, URL: endpoint, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &TransportError{Op: method, URL: endpoint, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode, Detail: errorDetail(raw)}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &TransportError{Op: method, URL: endpoint,
			Err: fmt.Errorf("%w: %v", ErrMalformedResponse, err)}
	}
	return nil
}

// errorDetail extracts a FastAPI-style {"detail": ...} message, falling back
// to the trimmed raw body.
func errorDetail(raw []byte) string {
	var problem struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(raw, &problem); err == nil && problem.Detail != nil {
		if s, ok := problem.Detail.(string); ok {
			return s
		}
		if b, err := json.Marshal(problem.Detail); err == nil {
			return string(b)
		}
	}
	detail := strings.TrimSpace(string(raw))
	if len(detail) > 200 {
		detail = detail[:200] + "..."
	}
	return detail
}
