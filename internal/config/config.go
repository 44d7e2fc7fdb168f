// Package config loads the deliverables settings: defaults, then an optional
// YAML file, then DELIVERABLES_* environment variables. Command line flags
// are applied on top by the CLI.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/caarlos0/env/v6"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/javajack/deliverables"
)

// EnvPrefix prefixes every environment variable the config reads.
const EnvPrefix = "DELIVERABLES_"

// Config holds the settings shared by all commands.
type Config struct {
	Encoding    string            `yaml:"encoding" env:"ENCODING"`
	DataSheet   string            `yaml:"data_sheet" env:"DATA_SHEET"`
	NativePivot bool              `yaml:"native_pivot" env:"NATIVE_PIVOT"`
	Filter      string            `yaml:"filter" env:"FILTER"`
	Colors      map[string]string `yaml:"colors"` // mark -> "#RRGGBB"
	Log         LogConfig         `yaml:"log" envPrefix:"LOG_"`
}

// LogConfig configures the optional rotating log file.
type LogConfig struct {
	File       string `yaml:"file" env:"FILE"`
	Level      string `yaml:"level" env:"LEVEL"`
	MaxSize    int    `yaml:"max_size" env:"MAX_SIZE"` // megabytes
	MaxBackups int    `yaml:"max_backups" env:"MAX_BACKUPS"`
	MaxAge     int    `yaml:"max_age" env:"MAX_AGE"` // days
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Encoding:    "utf-8",
		NativePivot: true,
		Log: LogConfig{
			Level:      "info",
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		},
	}
}

// Load reads path (skipped when empty) over the defaults and applies
// environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %q: %w", path, err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse config %q: %w", path, err)
		}
	}
	if err := env.Parse(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise only fail deep inside a stage.
func (c *Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if _, err := deliverables.DefaultColorMap().Merge(c.Colors); err != nil {
		return fmt.Errorf("colors: %w", err)
	}
	if c.Log.MaxSize < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAge < 0 {
		return errors.New("log rotation limits must not be negative")
	}
	return nil
}

// ReporterOptions translates the settings into library options.
func (c *Config) ReporterOptions() []deliverables.Option {
	opts := []deliverables.Option{
		deliverables.WithEncoding(c.Encoding),
		deliverables.WithNativePivot(c.NativePivot),
	}
	if c.DataSheet != "" {
		opts = append(opts, deliverables.WithDataSheet(c.DataSheet))
	}
	if strings.TrimSpace(c.Filter) != "" {
		opts = append(opts, deliverables.WithFilter(c.Filter))
	}
	if len(c.Colors) > 0 {
		opts = append(opts, deliverables.WithColorOverrides(c.Colors))
	}
	return opts
}
