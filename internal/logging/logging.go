package logging

import (
	"context"
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config describes where and how diagnostic logs are written. CLI results
// go to stdout; logs go to stderr and, optionally, a rotating file.
type Config struct {
	Level          string `mapstructure:"level" yaml:"level"`
	Format         string `mapstructure:"format" yaml:"format"`
	FilePath       string `mapstructure:"file_path" yaml:"file_path,omitempty"`
	FileMaxSizeMB  int    `mapstructure:"file_max_size_mb" yaml:"file_max_size_mb,omitempty"`
	FileMaxFiles   int    `mapstructure:"file_max_files" yaml:"file_max_files,omitempty"`
	FileMaxAgeDays int    `mapstructure:"file_max_age_days" yaml:"file_max_age_days,omitempty"`
}

// DefaultConfig returns warn-level text logs on stderr.
func DefaultConfig() Config {
	return Config{
		Level:          "warn",
		Format:         "text",
		FileMaxSizeMB:  20,
		FileMaxFiles:   3,
		FileMaxAgeDays: 14,
	}
}

type ctxKey struct{}

// ContextHandler appends attributes stored in the context by ContextAttrs.
type ContextHandler struct {
	slog.Handler
}

func (h ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs, ok := ctx.Value(ctxKey{}).([]slog.Attr); ok {
		r.AddAttrs(attrs...)
	}
	return h.Handler.Handle(ctx, r)
}

func (h ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return ContextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h ContextHandler) WithGroup(name string) slog.Handler {
	return ContextHandler{Handler: h.Handler.WithGroup(name)}
}

// ContextAttrs returns a child context carrying attrs for every record
// logged with it.
func ContextAttrs(ctx context.Context, attrs ...slog.Attr) context.Context {
	prev, _ := ctx.Value(ctxKey{}).([]slog.Attr)
	merged := make([]slog.Attr, 0, len(prev)+len(attrs))
	merged = append(merged, prev...)
	merged = append(merged, attrs...)
	return context.WithValue(ctx, ctxKey{}, merged)
}

// New builds a logger from cfg. verbose forces debug level. The returned
// closer is non-nil only when a log file is open.
func New(cfg Config, verbose bool) (*slog.Logger, io.Closer) {
	level := ParseLevel(cfg.Level)
	if verbose {
		level = slog.LevelDebug
	}

	var w io.Writer = os.Stderr
	var closer io.Closer
	if cfg.FilePath != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    orDefault(cfg.FileMaxSizeMB, 20),
			MaxBackups: orDefault(cfg.FileMaxFiles, 3),
			MaxAge:     orDefault(cfg.FileMaxAgeDays, 14),
		}
		w = io.MultiWriter(os.Stderr, lj)
		closer = lj
	}

	return slog.New(ContextHandler{Handler: NewHandler(w, level, cfg.Format)}), closer
}

// NewHandler creates a text or JSON handler writing to w.
func NewHandler(w io.Writer, level slog.Leveler, format string) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// ParseLevel converts a level name to slog.Level, defaulting to Info.
func ParseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ValidLevel reports whether s is a recognized level name.
func ValidLevel(s string) bool {
	switch s {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}

// ValidFormat reports whether s is a recognized output format.
func ValidFormat(s string) bool {
	return s == "text" || s == "json"
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
