package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. CHATFEED_FEED_BASE_URL.
const EnvPrefix = "CHATFEED"

// DefaultEnvFile is read from the working directory when present.
const DefaultEnvFile = ".env"

// Loader handles configuration loading with Viper.
type Loader struct {
	v          *viper.Viper
	configFile string
	envFile    string
	flags      map[string]*pflag.Flag
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{
		v:       viper.New(),
		envFile: DefaultEnvFile,
		flags:   make(map[string]*pflag.Flag),
	}
}

// SetConfigFile sets an explicit config file path.
func (l *Loader) SetConfigFile(path string) {
	l.configFile = path
}

// SetEnvFile sets the dotenv file to load; empty disables it.
func (l *Loader) SetEnvFile(path string) {
	l.envFile = path
}

// flagKeys maps CLI flag names to config keys.
var flagKeys = map[string]string{
	"base-url":      "feed.base_url",
	"auth-key":      "feed.auth_key",
	"poll-interval": "feed.poll_interval",
	"timeout":       "feed.request_timeout",
	"db":            "session.db_path",
	"log-level":     "logging.level",
	"log-format":    "logging.format",
	"log-file":      "logging.file",
	"theme":         "tui.theme",
	"metrics-addr":  "metrics.addr",
}

// BindFlags registers the flags in set that map to config keys. Only flags the
// user actually set override other sources.
func (l *Loader) BindFlags(set *pflag.FlagSet) {
	if set == nil {
		return
	}
	for name, key := range flagKeys {
		if f := set.Lookup(name); f != nil {
			l.flags[key] = f
		}
	}
}

// Load loads configuration with proper precedence:
// defaults < config file < .env < env vars < CLI flags
func (l *Loader) Load() (*Config, error) {
	// Start with defaults
	cfg := DefaultConfig()

	if err := l.loadEnvFile(); err != nil {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	l.setupViper(cfg)

	// Config file is optional unless explicitly specified
	if err := l.loadConfigFile(); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	for key, f := range l.flags {
		if err := l.v.BindPFlag(key, f); err != nil {
			return nil, fmt.Errorf("bind flag %s: %w", f.Name, err)
		}
	}

	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	expandPaths(cfg)
	cfg.Feed.BaseURL = strings.TrimSpace(cfg.Feed.BaseURL)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadEnvFile copies dotenv entries into the process environment. Variables
// already set win over the file.
func (l *Loader) loadEnvFile() error {
	if l.envFile == "" {
		return nil
	}
	if _, err := os.Stat(l.envFile); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return godotenv.Load(l.envFile)
}

// expandTilde expands ~ to the user's home directory.
func expandTilde(path string) string {
	if path == "" {
		return path
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// expandPaths expands ~ in all path-related config fields.
func expandPaths(cfg *Config) {
	cfg.Global.DataDir = expandTilde(cfg.Global.DataDir)
	cfg.Global.ConfigDir = expandTilde(cfg.Global.ConfigDir)
	cfg.Session.DBPath = expandTilde(cfg.Session.DBPath)
	cfg.Logging.File = expandTilde(cfg.Logging.File)
}

// setupViper configures Viper with defaults and environment bindings.
func (l *Loader) setupViper(cfg *Config) {
	v := l.v

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		v.AddConfigPath(filepath.Join(xdgConfig, "chatfeed"))
	}
	if homeDir, _ := os.UserHomeDir(); homeDir != "" {
		v.AddConfigPath(filepath.Join(homeDir, ".config", "chatfeed"))
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	l.setDefaults(cfg)

	// Explicit bindings so Unmarshal sees env vars for nested keys.
	bindEnvVars(v)

	v.AutomaticEnv()
}

// setDefaults sets all default values in Viper.
func (l *Loader) setDefaults(cfg *Config) {
	v := l.v

	// Global
	v.SetDefault("global.data_dir", cfg.Global.DataDir)
	v.SetDefault("global.config_dir", cfg.Global.ConfigDir)

	// Feed
	v.SetDefault("feed.base_url", cfg.Feed.BaseURL)
	v.SetDefault("feed.auth_key", cfg.Feed.AuthKey)
	v.SetDefault("feed.poll_interval", cfg.Feed.PollInterval)
	v.SetDefault("feed.request_timeout", cfg.Feed.RequestTimeout)

	// Session
	v.SetDefault("session.db_path", cfg.Session.DBPath)

	// Logging
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.enable_caller", cfg.Logging.EnableCaller)

	// TUI
	v.SetDefault("tui.theme", cfg.TUI.Theme)
	v.SetDefault("tui.show_timestamps", cfg.TUI.ShowTimestamps)

	// Metrics
	v.SetDefault("metrics.addr", cfg.Metrics.Addr)
}

// loadConfigFile attempts to load the configuration file.
func (l *Loader) loadConfigFile() error {
	if l.configFile != "" {
		l.v.SetConfigFile(l.configFile)
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	return nil
}

// ConfigFileUsed returns the config file that was loaded.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// envKeys lists every key that accepts a CHATFEED_* override.
var envKeys = []string{
	"global.data_dir",
	"global.config_dir",
	"feed.base_url",
	"feed.auth_key",
	"feed.poll_interval",
	"feed.request_timeout",
	"session.db_path",
	"logging.level",
	"logging.format",
	"logging.file",
	"logging.enable_caller",
	"tui.theme",
	"tui.show_timestamps",
	"metrics.addr",
}

// bindEnvVars binds environment variables for config keys.
func bindEnvVars(v *viper.Viper) {
	for _, key := range envKeys {
		_ = v.BindEnv(key, EnvVar(key))
	}
}

// EnvVar returns the environment variable that overrides key:
// feed.base_url -> CHATFEED_FEED_BASE_URL.
func EnvVar(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}
