// Package config loads the user settings of the symdiff command.
//
// Settings live in a YAML file searched for in the XDG config directories:
//
//	variable: x        # default differentiation variable
//	precision: 64      # evaluation precision in bits
//	log_level: warn    # debug | info | warn | error
//	history: true      # persist REPL history
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/takoeight0821/symdiff/derivative"
	"gopkg.in/yaml.v3"
)

// RelPath is the location of the config file below an XDG config directory.
const RelPath = "symdiff/config.yaml"

const (
	minPrecision = 8
	maxPrecision = 1 << 16
)

type Config struct {
	Variable  string `yaml:"variable"`
	Precision uint   `yaml:"precision"`
	LogLevel  string `yaml:"log_level"`
	History   bool   `yaml:"history"`
}

// Default returns the settings used when no config file exists.
func Default() *Config {
	return &Config{
		Variable:  "x",
		Precision: 64,
		LogLevel:  "warn",
		History:   true,
	}
}

// Load reads the config file at path. Keys missing from the file keep their
// default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Find returns the path of the first config file in the XDG config
// directories, or "" if there is none.
func Find() string {
	path, err := xdg.SearchConfigFile(RelPath)
	if err != nil {
		return ""
	}
	return path
}

// LoadDefault loads the config file found by Find, falling back to Default.
func LoadDefault() (*Config, error) {
	path := Find()
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

func (c *Config) Validate() error {
	var errs []error
	if err := derivative.CheckVariable(c.Variable); err != nil {
		errs = append(errs, fmt.Errorf("variable: %w", err))
	}
	if c.Precision < minPrecision || c.Precision > maxPrecision {
		errs = append(errs, fmt.Errorf("precision: must be between %d and %d, got %d", minPrecision, maxPrecision, c.Precision))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	return errors.Join(errs...)
}

// Level returns the configured log level. It assumes c is valid.
func (c *Config) Level() slog.Level {
	level, _ := ParseLevel(c.LogLevel)
	return level
}

func ParseLevel(levelStr string) (slog.Level, error) {
	switch levelStr {
	case "debug", "DEBUG":
		return slog.LevelDebug, nil
	case "info", "INFO":
		return slog.LevelInfo, nil
	case "warn", "WARN", "warning", "WARNING", "":
		return slog.LevelWarn, nil
	case "error", "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelWarn, fmt.Errorf("unknown log level: %s", levelStr)
	}
}

// HistoryPath is where the REPL keeps its input history.
func HistoryPath() string {
	return filepath.Join(xdg.DataHome, "symdiff", "history")
}
