// Package config loads run settings for the household simulator.
// Order: defaults -> optional YAML file -> HHSIM_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "HHSIM_"

// ErrInvalid is returned by Validate for out-of-range settings.
var ErrInvalid = errors.New("invalid config")

// Config holds the settings of one simulation run.
type Config struct {
	// Seed is the base seed; household i uses Seed+i.
	Seed int64 `yaml:"seed" env:"SEED"`

	// Households is how many households to simulate.
	Households int `yaml:"households" env:"HOUSEHOLDS"`

	// Years is how many years each household is advanced after creation.
	Years int `yaml:"years" env:"YEARS"`

	// Workers bounds how many households are simulated at once.
	Workers int `yaml:"workers" env:"WORKERS"`

	// Database is the SQLite file rows are written to.
	Database string `yaml:"database" env:"DATABASE"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`

	// Listen is the address the serve command binds.
	Listen string `yaml:"listen" env:"LISTEN"`

	// CORSOrigins are extra browser origins allowed by the API.
	CORSOrigins []string `yaml:"cors_origins" env:"CORS_ORIGINS" envSeparator:","`

	// SamplesPerMinute caps on-demand simulations per client. Zero disables
	// the sample endpoint's limiter.
	SamplesPerMinute int `yaml:"samples_per_minute" env:"SAMPLES_PER_MINUTE"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Seed:       42,
		Households: 1000,
		Years:      20,
		Workers:    runtime.NumCPU(),
		Database:   "households.db",
		LogLevel:   "info",

		Listen:           ":8080",
		SamplesPerMinute: 30,
	}
}

// Load builds the configuration from defaults, the YAML file at path (if
// path is not empty) and the environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		fileCfg, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a YAML file. Missing keys keep
// their defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from HHSIM_* environment variables. Unset
// variables leave fields untouched.
func (c *Config) ApplyEnv() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Households < 0 {
		return fmt.Errorf("%w: households must be non-negative, got %d", ErrInvalid, c.Households)
	}
	if c.Years < 0 {
		return fmt.Errorf("%w: years must be non-negative, got %d", ErrInvalid, c.Years)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalid, c.Workers)
	}
	if c.Database == "" {
		return fmt.Errorf("%w: database path is required", ErrInvalid)
	}
	if c.SamplesPerMinute < 0 {
		return fmt.Errorf("%w: samples_per_minute must be non-negative, got %d", ErrInvalid, c.SamplesPerMinute)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("%w: log level %q (valid: debug, info, warn, error)", ErrInvalid, c.LogLevel)
	}
	return l, nil
}
