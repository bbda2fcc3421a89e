package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ClientConfig holds settings for the phone-side commands.
type ClientConfig struct {
	// Endpoint overrides the open URL. Empty means the built-in default.
	Endpoint string `toml:"endpoint,omitempty"`
	LogLevel string `toml:"log_level,omitempty"`
}

// ClientConfigPath returns $GATE_CONFIG, or client.toml under the user
// config directory.
func ClientConfigPath() (string, error) {
	if p := os.Getenv("GATE_CONFIG"); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "gate", "client.toml"), nil
}

// LoadClient reads the TOML file at path (a missing file is not an error)
// and applies GATE_ENDPOINT and GATE_LOG_LEVEL on top.
func LoadClient(path string) (*ClientConfig, error) {
	cfg, err := LoadClientFile(path)
	if err != nil {
		return nil, err
	}
	if v := os.Getenv("GATE_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("GATE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	return cfg, nil
}

// LoadClientFile reads only the TOML file, ignoring the environment, so
// edits can be written back without capturing overrides.
func LoadClientFile(path string) (*ClientConfig, error) {
	var cfg ClientConfig
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	}
	return &cfg, nil
}

// SaveClient writes cfg to path, creating the directory when needed.
func SaveClient(path string, cfg *ClientConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Set assigns a config key by its TOML name.
func (c *ClientConfig) Set(key, value string) error {
	switch key {
	case "endpoint":
		c.Endpoint = value
	case "log_level":
		c.LogLevel = value
	default:
		return fmt.Errorf("unknown config key %q (want endpoint or log_level)", key)
	}
	return nil
}
