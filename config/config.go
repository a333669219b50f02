package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Config holds the tunables of the tagging and analysis tools
type Config struct {
	// LeadsheetText is the chord symbol written into new leadsheet annotations
	LeadsheetText string `json:"leadsheetText"`
	BeatsPerBar   int    `json:"beatsPerBar"`
	// RecordType is the Sequ record discriminator to scan for
	RecordType uint16 `json:"recordType"`
	// ChordToleranceDivisor sets the chord grouping tolerance to
	// ticks-per-quarter divided by this value
	ChordToleranceDivisor int    `json:"chordToleranceDivisor"`
	Workers               int    `json:"workers,omitempty"`
	LogLevel              string `json:"logLevel,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		LeadsheetText:         "C6add9",
		BeatsPerBar:           4,
		RecordType:            103,
		ChordToleranceDivisor: 16,
		LogLevel:              "info",
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "midicurator"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFile(path)
}

// LoadFile reads the config at path. Missing fields keep their defaults and
// a missing file yields the defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logrus.Debugf("No config at %s, using defaults", path)
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Validate rejects values the tools cannot work with
func (c *Config) Validate() error {
	if c.BeatsPerBar < 1 {
		return errors.Errorf("beatsPerBar must be positive, got %d", c.BeatsPerBar)
	}
	if c.ChordToleranceDivisor < 1 {
		return errors.Errorf("chordToleranceDivisor must be positive, got %d", c.ChordToleranceDivisor)
	}
	if c.Workers < 0 {
		return errors.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.LogLevel != "" {
		if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
			return err
		}
	}
	return nil
}

// Level returns the configured log level, Info when unset
func (c *Config) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

// SaveFile writes the config to path, creating its directory
func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
