// Package config loads exify settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultTolerance is the largest accepted spread between the timestamps of a file.
const DefaultTolerance = 30 * 24 * time.Hour

// Config holds every externally visible setting.
type Config struct {
	BaseDir   string   `toml:"base_dir"`
	Tolerance Duration `toml:"tolerance"`

	LogLevel  string `toml:"log_level"`  // debug, info, warn or error
	LogFormat string `toml:"log_format"` // auto, text or json

	Workers int      `toml:"workers"`
	Timeout Duration `toml:"timeout"` // per file

	// BackupDir receives a compressed copy of every file before it is modified.
	// Empty disables backups.
	BackupDir string `toml:"backup_dir,omitempty"`

	WhatsAppOnly bool     `toml:"whatsapp_only"`
	Extensions   []string `toml:"extensions"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		Tolerance:    Duration(DefaultTolerance),
		LogLevel:     "info",
		LogFormat:    "auto",
		Workers:      1,
		Timeout:      Duration(30 * time.Second),
		WhatsAppOnly: true,
		Extensions:   []string{".jpg", ".jpeg"},
	}
}

// Validate checks that the configuration can drive a run.
func (c *Config) Validate() error {
	var errs []error
	if c.BaseDir == "" {
		errs = append(errs, errors.New("base_dir is required"))
	}
	if c.Tolerance <= 0 {
		errs = append(errs, fmt.Errorf("tolerance must be positive, got %s", c.Tolerance))
	}
	if c.Workers <= 0 {
		errs = append(errs, fmt.Errorf("workers must be positive, got %d", c.Workers))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", c.Timeout))
	}
	switch c.LogFormat {
	case "auto", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format must be auto, text or json, got %q", c.LogFormat))
	}
	if len(c.Extensions) == 0 {
		errs = append(errs, errors.New("extensions must not be empty"))
	}
	return errors.Join(errs...)
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from r on top of the defaults.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	cfg := Default()
	if _, err := toml.NewDecoder(r).Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Write encodes cfg to w.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// DefaultPath returns $XDG_CONFIG_HOME/exify/config.toml (or the OS equivalent).
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "exify", "config.toml")
}

// Load reads path if it is set. When path is empty the default location is
// tried and silently skipped if absent.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path == "" {
		return Default(), nil
	}

	cfg, err := ReadFromFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}
