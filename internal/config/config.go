// Package config handles chatfeed configuration loading and validation.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultAuthKey is the shared credential the channel service ships with.
const DefaultAuthKey = "authkey 0987654321"

// Config is the root configuration structure for chatfeed.
type Config struct {
	// Global settings
	Global GlobalConfig `yaml:"global" mapstructure:"global"`

	// Feed service settings
	Feed FeedConfig `yaml:"feed" mapstructure:"feed"`

	// Session persistence settings
	Session SessionConfig `yaml:"session" mapstructure:"session"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`

	// TUI settings
	TUI TUIConfig `yaml:"tui" mapstructure:"tui"`

	// Metrics settings
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

// GlobalConfig contains global chatfeed settings.
type GlobalConfig struct {
	// DataDir is where chatfeed stores its data (default: ~/.local/share/chatfeed).
	DataDir string `yaml:"data_dir" mapstructure:"data_dir"`

	// ConfigDir is where config files are stored (default: ~/.config/chatfeed).
	ConfigDir string `yaml:"config_dir" mapstructure:"config_dir"`
}

// FeedConfig describes the remote channel.
type FeedConfig struct {
	// BaseURL is the channel endpoint.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// AuthKey is sent verbatim as the Authorization header on sends.
	AuthKey string `yaml:"auth_key" mapstructure:"auth_key"`

	// PollInterval is the period between feed refreshes.
	PollInterval time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`

	// RequestTimeout bounds each request. Zero means no timeout.
	RequestTimeout time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`
}

// SessionConfig contains session persistence settings.
type SessionConfig struct {
	// DBPath is the SQLite file holding the display name.
	DBPath string `yaml:"db_path" mapstructure:"db_path"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level" mapstructure:"level"`

	// Format is the output format (json, console).
	Format string `yaml:"format" mapstructure:"format"`

	// File receives logs while the TUI owns the terminal.
	File string `yaml:"file" mapstructure:"file"`

	// EnableCaller adds caller information to logs.
	EnableCaller bool `yaml:"enable_caller" mapstructure:"enable_caller"`
}

// TUIConfig contains TUI settings.
type TUIConfig struct {
	// Theme is the color theme name (default, high-contrast).
	Theme string `yaml:"theme" mapstructure:"theme"`

	// ShowTimestamps shows message times in the feed.
	ShowTimestamps bool `yaml:"show_timestamps" mapstructure:"show_timestamps"`
}

// MetricsConfig contains the optional Prometheus listener.
type MetricsConfig struct {
	// Addr is the listen address for /metrics; empty disables it.
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// Themes lists the accepted tui.theme values.
var Themes = []string{"default", "high-contrast"}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".local", "share", "chatfeed")

	return &Config{
		Global: GlobalConfig{
			DataDir:   dataDir,
			ConfigDir: filepath.Join(homeDir, ".config", "chatfeed"),
		},
		Feed: FeedConfig{
			BaseURL:      "http://127.0.0.1:5001",
			AuthKey:      DefaultAuthKey,
			PollInterval: 3 * time.Second,
		},
		Session: SessionConfig{
			DBPath: "", // Will be set to DataDir/session.db
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		TUI: TUIConfig{
			Theme:          "default",
			ShowTimestamps: false,
		},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	base := strings.TrimSpace(c.Feed.BaseURL)
	if base == "" {
		return fmt.Errorf("feed.base_url is required")
	}
	u, err := url.Parse(base)
	if err != nil {
		return fmt.Errorf("feed.base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("feed.base_url must use http or https")
	}
	if u.Host == "" {
		return fmt.Errorf("feed.base_url must include a host")
	}

	if c.Feed.PollInterval < 100*time.Millisecond {
		return fmt.Errorf("feed.poll_interval must be at least 100ms")
	}
	if c.Feed.RequestTimeout < 0 {
		return fmt.Errorf("feed.request_timeout must not be negative")
	}

	if !validTheme(c.TUI.Theme) {
		return fmt.Errorf("tui.theme must be one of %s", strings.Join(Themes, ", "))
	}

	return nil
}

func validTheme(name string) bool {
	for _, t := range Themes {
		if strings.EqualFold(name, t) {
			return true
		}
	}
	return false
}

// EnsureDirectories creates required directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Global.DataDir,
		filepath.Dir(c.SessionDBPath()),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// SessionDBPath returns the full session database path.
func (c *Config) SessionDBPath() string {
	if c.Session.DBPath != "" {
		return c.Session.DBPath
	}
	return filepath.Join(c.Global.DataDir, "session.db")
}

// LogFilePath returns the file the TUI logs to.
func (c *Config) LogFilePath() string {
	if c.Logging.File != "" {
		return c.Logging.File
	}
	return filepath.Join(c.Global.DataDir, "chatfeed.log")
}
