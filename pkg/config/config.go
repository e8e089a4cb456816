// Package config holds application configuration and logger construction.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration.
type Config struct {
	LogLevel     string        `yaml:"log_level"`
	ScanTimeout  time.Duration `yaml:"scan_timeout"`
	DataDir      string        `yaml:"data_dir"`
	DeviceFilter string        `yaml:"device_filter"`
}

// DefaultConfig returns default configuration values. The default level
// keeps command output clean; warnings and errors still come through.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:     "warn",
		ScanTimeout:  10 * time.Second,
		DataDir:      defaultDataDir(),
		DeviceFilter: "RNode",
	}
}

// Load reads a YAML config file over the defaults. A missing file yields
// the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("malformed config %s: %w", path, err)
	}
	return cfg, nil
}

// NewLogger creates a configured logger instance.
func (c *Config) NewLogger() (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}

	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	return logger, nil
}

// ClassificationCachePath is the location of the durable classification
// blob inside the data directory.
func (c *Config) ClassificationCachePath() string {
	return filepath.Join(c.DataDir, "classifications.json")
}

// InterfaceDBPath is the location of the saved-interface database.
func (c *Config) InterfaceDBPath() string {
	return filepath.Join(c.DataDir, "interfaces.db")
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".rnodectl"
	}
	return filepath.Join(home, ".rnodectl")
}
