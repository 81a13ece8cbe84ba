package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hakim/scandeck/internal/logging"
	"github.com/hakim/scandeck/internal/scanjob"
	"github.com/hakim/scandeck/internal/tools"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g.
// SCANDECK_BACKEND_BASE_URL.
const EnvPrefix = "SCANDECK"

// Config represents the application configuration
type Config struct {
	Backend   BackendConfig       `mapstructure:"backend" yaml:"backend"`
	Tools     []tools.Tool        `mapstructure:"tools" yaml:"tools"`
	Scope     scanjob.ScopeConfig `mapstructure:"scope" yaml:"scope"`
	DBPath    string              `mapstructure:"db_path" yaml:"db_path"`
	ExportDir string              `mapstructure:"export_dir" yaml:"export_dir"`
	Notify    NotifyConfig        `mapstructure:"notify" yaml:"notify"`
	Log       logging.Config      `mapstructure:"log" yaml:"log"`
}

// BackendConfig locates the execution and history backend.
type BackendConfig struct {
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	// Timeout bounds one request/response cycle. Scans run synchronously on
	// the backend, so this must cover the slowest tool.
	Timeout string `mapstructure:"timeout" yaml:"timeout"`
}

// NotifyConfig configures completion notifications.
type NotifyConfig struct {
	WebhookURL string `mapstructure:"webhook_url" yaml:"webhook_url"`
}

// RequestTimeout returns the parsed backend timeout, zero when unset.
func (b BackendConfig) RequestTimeout() time.Duration {
	d, err := time.ParseDuration(b.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// Load reads and parses configuration from a YAML file.
// If path is empty, searches for scandeck.yaml in the current directory,
// ./configs and ~/.config/scandeck/, falling back to DefaultConfig when none
// exists. Environment variables override file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("scandeck")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")

		homeDir, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(homeDir, ".config", "scandeck"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if len(cfg.Tools) == 0 {
		cfg.Tools = tools.DefaultTools()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers scalar defaults so env overrides apply even when no
// config file provides the key.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("backend.base_url", d.Backend.BaseURL)
	v.SetDefault("backend.timeout", d.Backend.Timeout)
	v.SetDefault("db_path", d.DBPath)
	v.SetDefault("export_dir", d.ExportDir)
	v.SetDefault("notify.webhook_url", d.Notify.WebhookURL)
	v.SetDefault("scope.allowed_domains", d.Scope.AllowedDomains)
	v.SetDefault("scope.allowed_cidrs", d.Scope.AllowedCIDRs)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.file_path", d.Log.FilePath)
	v.SetDefault("log.file_max_size_mb", d.Log.FileMaxSizeMB)
	v.SetDefault("log.file_max_files", d.Log.FileMaxFiles)
	v.SetDefault("log.file_max_age_days", d.Log.FileMaxAgeDays)
}

// Catalog builds the tool catalog from the configured tool list.
func (c *Config) Catalog() (*tools.Catalog, error) {
	return tools.NewCatalog(c.Tools)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Backend.BaseURL == "" {
		errs = append(errs, errors.New("backend.base_url cannot be empty"))
	} else if u, err := url.Parse(c.Backend.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("backend.base_url %q must be an absolute URL with scheme and host", c.Backend.BaseURL))
	}

	if c.Backend.Timeout != "" {
		if d, err := time.ParseDuration(c.Backend.Timeout); err != nil {
			errs = append(errs, fmt.Errorf("backend.timeout: %w", err))
		} else if d < 0 {
			errs = append(errs, errors.New("backend.timeout must not be negative"))
		}
	}

	if _, err := tools.NewCatalog(c.Tools); err != nil {
		errs = append(errs, fmt.Errorf("tools: %w", err))
	}

	if err := c.Scope.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("scope: %w", err))
	}

	if c.Notify.WebhookURL != "" {
		if u, err := url.Parse(c.Notify.WebhookURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("notify.webhook_url %q must be an absolute URL", c.Notify.WebhookURL))
		}
	}

	if !logging.ValidLevel(c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level %q must be one of debug, info, warn, error", c.Log.Level))
	}
	if !logging.ValidFormat(c.Log.Format) {
		errs = append(errs, fmt.Errorf("log.format %q must be text or json", c.Log.Format))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}
