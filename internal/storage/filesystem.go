package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/hakim/scandeck/internal/models"
)

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9.\-]+`)

// SanitizeTarget replaces characters unsafe for filesystem paths.
// Allows alphanumeric, dots, and hyphens. Replaces everything else with underscore.
func SanitizeTarget(target string) string {
	return unsafeChars.ReplaceAllString(target, "_")
}

// ResultFileName builds the export file name for a scan result.
// Format: {tool}_{target}_{YYYYMMDD}_{HHMMSS}.txt
func ResultFileName(tool, target string, at time.Time) string {
	if target == "" {
		target = "none"
	}
	return fmt.Sprintf("%s_%s_%s.txt",
		SanitizeTarget(tool), SanitizeTarget(target), at.UTC().Format("20060102_150405"))
}

// SaveResult writes a record's raw result into dir and returns the file path.
func SaveResult(dir string, rec models.ScanRecord, at time.Time) (string, error) {
	if err := EnsureDir(dir); err != nil {
		return "", fmt.Errorf("creating export dir: %w", err)
	}
	path := filepath.Join(dir, ResultFileName(rec.Tool, rec.Target, at))
	if err := os.WriteFile(path, []byte(rec.Result), 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// EnsureDir creates a directory and all parent directories if they don't exist
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
