package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/tOgg1/chatfeed/internal/logging"
)

// DefaultConfigPath returns where `config init` writes by default.
func DefaultConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "chatfeed", "config.yaml")
	}
	return filepath.Join(DefaultConfig().Global.ConfigDir, "config.yaml")
}

// Marshal renders cfg as YAML. With redact set the auth key is masked.
func Marshal(cfg *Config, redact bool) ([]byte, error) {
	out := *cfg
	if redact && out.Feed.AuthKey != "" {
		out.Feed.AuthKey = logging.RedactedValue
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&out); err != nil {
		return nil, fmt.Errorf("failed to serialize config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to serialize config: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile writes cfg to path. An existing file is only replaced when force
// is set.
func WriteFile(path string, cfg *Config, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file %s already exists", path)
		}
	}

	data, err := Marshal(cfg, false)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	// The file carries the shared credential.
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ReadFile parses a YAML config file on top of the defaults without
// consulting the environment.
func ReadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}
