// Package config loads the daemon's optional YAML configuration file and,
// when asked, watches it for live changes to the buffer-size cap.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds process-wide defaults. Every field is optional; a missing
// file or a missing field falls back to the built-in default named beside
// it below.
type Config struct {
	SocketPath     string `yaml:"socketPath"`     // default: ~/.ptysidecar/ptysidecar.sock
	MaxBufferBytes int    `yaml:"maxBufferBytes"` // default: 512 * 1024
	DefaultShell   string `yaml:"defaultShell"`   // default: /bin/bash
	DefaultCols    int    `yaml:"defaultCols"`    // default: 140
	DefaultRows    int    `yaml:"defaultRows"`    // default: 40
}

// ConfigDir returns the ptysidecar configuration directory (~/.ptysidecar/).
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".ptysidecar")
	}
	return filepath.Join(home, ".ptysidecar")
}

// DefaultPath returns ~/.ptysidecar/config.yaml.
func DefaultPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// Load reads the config from DefaultPath.
func Load() (*Config, error) {
	return LoadFrom(DefaultPath())
}

// LoadFrom reads the config from path. A missing file is not an error — it
// returns a zero-value Config, so callers should apply their own defaults
// to any field left unset.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// WithDefaults returns a copy of c with every unset field replaced by the
// built-in default.
func (c Config) WithDefaults() Config {
	if c.SocketPath == "" {
		c.SocketPath = filepath.Join(ConfigDir(), "ptysidecar.sock")
	}
	if c.MaxBufferBytes <= 0 {
		c.MaxBufferBytes = 512 * 1024
	}
	if c.DefaultShell == "" {
		c.DefaultShell = "/bin/bash"
	}
	if c.DefaultCols <= 0 {
		c.DefaultCols = 140
	}
	if c.DefaultRows <= 0 {
		c.DefaultRows = 40
	}
	return c
}
