// Package relay provides the file-to-webhook transcript relay service.
package relay

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Default values for configuration fields
const (
	DefaultWatchDir            = "transcripts"
	DefaultWebhookURL          = "http://localhost:8080/webhook/transcript"
	DefaultArchiveDirName      = "processed"
	DefaultPollIntervalSeconds = 5
	DefaultProbeDelayMs        = 200
	DefaultRequestTimeoutSecs  = 10
)

// Config represents the relay service configuration
type Config struct {
	// WatchDir is the directory watched for transcript .txt files
	WatchDir string `toml:"watch_dir"`
	// WebhookURL receives the transcript payload
	WebhookURL string `toml:"webhook_url"`
	// Stage marks deliveries as staged rather than persisted directly
	Stage bool `toml:"stage"`
	// PollIntervalSeconds is the sleep between poll cycles
	PollIntervalSeconds int `toml:"poll_interval_seconds"`
	// ArchiveDirName is the subdirectory of WatchDir that holds delivered files
	ArchiveDirName string `toml:"archive_dir_name"`
	// ProbeDelayMs is the pause between the two stability size probes
	ProbeDelayMs int `toml:"probe_delay_ms"`
	// RequestTimeoutSeconds bounds the webhook POST
	RequestTimeoutSeconds int `toml:"request_timeout_seconds"`
	// LogDir is where daily log files are written (default ~/.relay/logs)
	LogDir string `toml:"log_dir"`
}

// Validation errors
var (
	ErrWatchDirRequired   = errors.New("watch_dir is required")
	ErrWebhookURLRequired = errors.New("webhook_url is required")
)

// DefaultConfig returns a Config with every field set to its default.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		WatchDir:              DefaultWatchDir,
		WebhookURL:            DefaultWebhookURL,
		Stage:                 true,
		PollIntervalSeconds:   DefaultPollIntervalSeconds,
		ArchiveDirName:        DefaultArchiveDirName,
		ProbeDelayMs:          DefaultProbeDelayMs,
		RequestTimeoutSeconds: DefaultRequestTimeoutSecs,
		LogDir:                filepath.Join(homeDir, ".relay", "logs"),
	}
}

// LoadFile reads a TOML config file over the defaults, so fields absent from
// the file keep their default values. Paths containing ~ are expanded to the
// user's home directory.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.expandPaths()
	return cfg, nil
}

// SaveFile writes the configuration as TOML with 0644 permissions.
func (c *Config) SaveFile(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks that all required fields are present and intervals are sane.
func (c *Config) Validate() error {
	if c.WatchDir == "" {
		return ErrWatchDirRequired
	}
	if c.WebhookURL == "" {
		return ErrWebhookURLRequired
	}
	if c.PollIntervalSeconds <= 0 {
		return fmt.Errorf("poll_interval_seconds must be positive, got %d", c.PollIntervalSeconds)
	}
	if c.ProbeDelayMs <= 0 {
		return fmt.Errorf("probe_delay_ms must be positive, got %d", c.ProbeDelayMs)
	}
	if c.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("request_timeout_seconds must be positive, got %d", c.RequestTimeoutSeconds)
	}
	return nil
}

// ApplyDefaults sets default values for optional fields that are empty or zero.
func (c *Config) ApplyDefaults() {
	if c.WatchDir == "" {
		c.WatchDir = DefaultWatchDir
	}
	if c.WebhookURL == "" {
		c.WebhookURL = DefaultWebhookURL
	}
	if c.ArchiveDirName == "" {
		c.ArchiveDirName = DefaultArchiveDirName
	}
	if c.PollIntervalSeconds == 0 {
		c.PollIntervalSeconds = DefaultPollIntervalSeconds
	}
	if c.ProbeDelayMs == 0 {
		c.ProbeDelayMs = DefaultProbeDelayMs
	}
	if c.RequestTimeoutSeconds == 0 {
		c.RequestTimeoutSeconds = DefaultRequestTimeoutSecs
	}
	if c.LogDir == "" {
		homeDir, _ := os.UserHomeDir()
		c.LogDir = filepath.Join(homeDir, ".relay", "logs")
	}
}

// ArchiveDir returns the archive subdirectory path under the watch root.
func (c *Config) ArchiveDir() string {
	return filepath.Join(c.WatchDir, c.ArchiveDirName)
}

// PollInterval returns the inter-cycle sleep as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// ProbeDelay returns the stability probe pause as a duration.
func (c *Config) ProbeDelay() time.Duration {
	return time.Duration(c.ProbeDelayMs) * time.Millisecond
}

// RequestTimeout returns the webhook request timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// expandPaths expands ~ to the user's home directory in path fields.
func (c *Config) expandPaths() {
	c.WatchDir = expandTilde(c.WatchDir)
	c.LogDir = expandTilde(c.LogDir)
}

// expandTilde expands ~ at the beginning of a path to the user's home directory.
func expandTilde(path string) string {
	if path == "" {
		return path
	}
	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
