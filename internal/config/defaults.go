package config

import (
	"fmt"
	"os"

	"github.com/hakim/scandeck/internal/logging"
	"github.com/hakim/scandeck/internal/tools"
	"gopkg.in/yaml.v3"
)

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			BaseURL: "http://localhost:8000",
			Timeout: "15m",
		},
		Tools:     tools.DefaultTools(),
		DBPath:    "scandeck.db",
		ExportDir: "exports",
		Log:       logging.DefaultConfig(),
	}
}

// WriteDefault writes a default configuration to the specified path
func WriteDefault(path string) error {
	cfg := DefaultConfig()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal default config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
