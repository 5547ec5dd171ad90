// Package config loads taskctl settings from config.yaml and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultServerURL = "http://localhost:5000"
	DefaultTimeout   = 10 * time.Second
)

type Config struct {
	ServerURL string        `yaml:"server_url"`
	Timeout   time.Duration `yaml:"timeout"`
}

func (c *Config) LoadDefaults() {
	c.ServerURL = DefaultServerURL
	c.Timeout = DefaultTimeout
}

// fileConfig mirrors Config with optional fields so absent keys keep defaults.
type fileConfig struct {
	ServerURL *string `yaml:"server_url"`
	Timeout   *string `yaml:"timeout"`
}

// DefaultPath is <user config dir>/taskkeeper/config.yaml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("user config dir: %w", err)
	}
	return filepath.Join(dir, "taskkeeper", "config.yaml"), nil
}

// Load applies defaults, then the YAML file at path (a missing file is
// fine), then TASKKEEPER_SERVER_URL.
func Load(path string, getenv func(string) string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if path != "" {
		if err := parseYAML(cfg, path); err != nil {
			return nil, err
		}
	}

	if v := getenv("TASKKEEPER_SERVER_URL"); v != "" {
		cfg.ServerURL = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if fc.ServerURL != nil {
		cfg.ServerURL = *fc.ServerURL
	}
	if fc.Timeout != nil {
		d, err := time.ParseDuration(*fc.Timeout)
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		cfg.Timeout = d
	}
	return nil
}

func (c *Config) Validate() error {
	if !strings.HasPrefix(c.ServerURL, "http://") && !strings.HasPrefix(c.ServerURL, "https://") {
		return fmt.Errorf("server_url must be an http(s) URL, got %q", c.ServerURL)
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	return nil
}
