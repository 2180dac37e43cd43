// Package config provides configuration loading for xbrlgraph.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/agentic-research/xbrlgraph/internal/xbrl"
)

// Environment variables overriding file settings.
const (
	EnvLogLevel      = "XBRLGRAPH_LOG_LEVEL"
	EnvSuppressEmpty = "XBRLGRAPH_SUPPRESS_EMPTY"
)

// Config represents the complete xbrlgraph configuration
type Config struct {
	Logging      LoggingConfig      `yaml:"logging"`
	Labels       LabelsConfig       `yaml:"labels"`
	Presentation PresentationConfig `yaml:"presentation"`
	Company      CompanyConfig      `yaml:"company"`
	Filing       FilingConfig       `yaml:"filing"`
	Export       ExportConfig       `yaml:"export"`
}

// LoggingConfig configures the zap logger
type LoggingConfig struct {
	// Level is a zap level name (debug, info, warn, error)
	Level string `yaml:"level"`
	// Development switches to the human-readable console encoder
	Development bool `yaml:"development"`
}

// LabelsConfig configures label resolution
type LabelsConfig struct {
	// DefaultRole is used when no label role is requested (default: label)
	DefaultRole string `yaml:"default_role"`
}

// PresentationConfig configures presentation tables
type PresentationConfig struct {
	SuppressEmptyRows bool `yaml:"suppress_empty_rows"`
}

// CompanyConfig carries filer information that is not part of the filing
type CompanyConfig struct {
	// Extended adds the company fields to every value snapshot
	Extended bool `yaml:"extended"`

	xbrl.StaticCompany `yaml:",inline"`
}

// FilingConfig overrides filing metadata
type FilingConfig struct {
	// Form is the form type (e.g. 10-K); read from the filing when empty
	Form string `yaml:"form"`
}

// ExportConfig configures SQLite export
type ExportConfig struct {
	// BatchSize is the number of rows per transaction
	BatchSize int `yaml:"batch_size"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info"},
		Labels:  LabelsConfig{DefaultRole: xbrl.DefaultRole},
		Export:  ExportConfig{BatchSize: 5000},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if c.Export.BatchSize <= 0 {
		return fmt.Errorf("export.batch_size must be positive")
	}
	return nil
}

// Load reads the YAML file at path over the defaults and applies environment
// overrides. A missing file yields the defaults; an empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.Logging.Level = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvSuppressEmpty)); v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSuppressEmpty, err)
		}
		c.Presentation.SuppressEmptyRows = on
	}
	return nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Logger builds a zap logger for the configured level. verbose forces debug.
func (c *Config) Logger(verbose bool) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("logging.level: %w", err)
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zc := zap.NewProductionConfig()
	if c.Logging.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

// DocumentOptions turns the label, company and filing sections into document
// options. form is the form type read from the filing, used when the config
// sets none.
func (c *Config) DocumentOptions(form, file string) []xbrl.Option {
	if c.Filing.Form != "" {
		form = c.Filing.Form
	}
	opts := []xbrl.Option{
		xbrl.WithDefaultLabelRole(c.Labels.DefaultRole),
		xbrl.WithFiling(xbrl.Filing{Form: form, FileName: file}),
	}
	if c.Company.Extended {
		opts = append(opts, xbrl.WithCompany(c.Company.StaticCompany))
	}
	return opts
}
