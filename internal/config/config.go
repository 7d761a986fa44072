// Package config handles loading and resolving meteo configuration.
// Resolution order (later layers win):
//  1. built-in defaults
//  2. config.json in the current working directory
//  3. .env in the current working directory (never overrides real env vars)
//  4. environment variables METEO_*
//  5. CLI flags, applied by the caller after Load
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultConfigFile      = "config.json"
	DefaultEnvFile         = ".env"
	DefaultFormat          = "table"
	DefaultTimeout         = 15 * time.Second
	DefaultConcurrency     = 4
	DefaultRate            = 5.0
	DefaultBreakerFailures = 5
	DefaultGeocodingURL    = "https://geocoding-api.open-meteo.com/v1/search"
	DefaultForecastURL     = "https://api.open-meteo.com/v1/forecast"

	EnvDBPath       = "METEO_DB_PATH"
	EnvGeocodingURL = "METEO_GEOCODING_URL"
	EnvForecastURL  = "METEO_FORECAST_URL"
	EnvTimeout      = "METEO_TIMEOUT"
)

// File is the on-disk representation of config.json.
type File struct {
	DefaultFormat   string  `json:"default_format"`
	Timeout         string  `json:"timeout"`
	Concurrency     int     `json:"concurrency"`
	Rate            float64 `json:"rate"`
	BreakerFailures int     `json:"breaker_failures"`
	GeocodingURL    string  `json:"geocoding_url"`
	ForecastURL     string  `json:"forecast_url"`
	DBPath          string  `json:"db_path"`
}

// Config is the fully-resolved runtime configuration.
// All callers use this struct; the File is only read during loading.
type Config struct {
	Format          string
	Timeout         time.Duration
	Concurrency     int
	Rate            float64
	BreakerFailures int
	GeocodingURL    string
	ForecastURL     string
	DBPath          string
	ConfigPath      string // path of the config.json that was loaded (empty if none found)
	EnvPath         string // path of the .env that was loaded (empty if none found)

	// Runtime overrides set from CLI flags after Load()
	Quiet   bool
	Verbose bool
	Debug   bool
}

// Load resolves configuration from defaults, config.json, .env and the
// environment. A missing config.json or .env is not an error; a malformed
// one is.
func Load() (*Config, error) {
	cfg := &Config{
		Format:          DefaultFormat,
		Timeout:         DefaultTimeout,
		Concurrency:     DefaultConcurrency,
		Rate:            DefaultRate,
		BreakerFailures: DefaultBreakerFailures,
		GeocodingURL:    DefaultGeocodingURL,
		ForecastURL:     DefaultForecastURL,
	}

	// Layer 1: config.json
	f, path, err := loadFile()
	switch {
	case err == nil:
		applyFile(cfg, f, path)
	case !errors.Is(err, os.ErrNotExist):
		return nil, err
	}

	// Layer 2: .env, which only fills variables the shell left unset
	if envPath, err := filepath.Abs(DefaultEnvFile); err == nil {
		if err := godotenv.Load(envPath); err == nil {
			cfg.EnvPath = envPath
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("parsing %s: %w", DefaultEnvFile, err)
		}
	}

	// Layer 3: environment variables
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBPath()
	}
	return cfg, nil
}

// DefaultDBPath returns ~/.meteo/meteo.db, or meteo.db in the working
// directory when the home directory cannot be determined.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "meteo.db"
	}
	return filepath.Join(home, ".meteo", "meteo.db")
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvDBPath); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv(EnvGeocodingURL); v != "" {
		cfg.GeocodingURL = v
	}
	if v := os.Getenv(EnvForecastURL); v != "" {
		cfg.ForecastURL = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		cfg.Timeout = d
	}
	return nil
}

// Validate returns an error if a resolved value cannot work.
func (c *Config) Validate() error {
	for _, u := range []struct{ key, val string }{
		{"geocoding_url", c.GeocodingURL},
		{"forecast_url", c.ForecastURL},
	} {
		parsed, err := url.Parse(u.val)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			return fmt.Errorf("%s must be an absolute http(s) URL, got %q", u.key, u.val)
		}
	}
	if c.Rate <= 0 {
		return fmt.Errorf("rate must be positive, got %v", c.Rate)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if c.BreakerFailures < 1 {
		return fmt.Errorf("breaker_failures must be at least 1, got %d", c.BreakerFailures)
	}
	return nil
}

// loadFile reads config.json from the current working directory. The
// returned error wraps os.ErrNotExist when there is no file.
func loadFile() (*File, string, error) {
	path, err := filepath.Abs(DefaultConfigFile)
	if err != nil {
		return nil, "", err
	}
	f, err := ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	return f, path, nil
}

// ReadFile parses a config.json at path.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config.json not found at %s: %w", path, os.ErrNotExist)
		}
		return nil, fmt.Errorf("reading config.json: %w", err)
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing config.json: %w", err)
	}
	return &f, nil
}

// applyFile copies values from a parsed File into cfg,
// skipping any fields that are zero/empty.
func applyFile(cfg *Config, f *File, path string) {
	cfg.ConfigPath = path
	if f.DefaultFormat != "" {
		cfg.Format = f.DefaultFormat
	}
	if f.Timeout != "" {
		if d, err := time.ParseDuration(f.Timeout); err == nil {
			cfg.Timeout = d
		}
	}
	if f.Concurrency > 0 {
		cfg.Concurrency = f.Concurrency
	}
	if f.Rate > 0 {
		cfg.Rate = f.Rate
	}
	if f.BreakerFailures > 0 {
		cfg.BreakerFailures = f.BreakerFailures
	}
	if f.GeocodingURL != "" {
		cfg.GeocodingURL = f.GeocodingURL
	}
	if f.ForecastURL != "" {
		cfg.ForecastURL = f.ForecastURL
	}
	if f.DBPath != "" {
		cfg.DBPath = f.DBPath
	}
}

// Keys lists the settable config.json keys in display order.
var Keys = []string{
	"default_format", "timeout", "concurrency", "rate",
	"breaker_failures", "geocoding_url", "forecast_url", "db_path",
}

// Set assigns one key of f from its string form.
func (f *File) Set(key, val string) error {
	switch key {
	case "default_format", "format":
		f.DefaultFormat = val
	case "timeout":
		if _, err := time.ParseDuration(val); err != nil {
			return fmt.Errorf("timeout must be a duration such as 15s: %w", err)
		}
		f.Timeout = val
	case "concurrency":
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("concurrency must be an integer")
		}
		f.Concurrency = n
	case "rate":
		r, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("rate must be a number")
		}
		f.Rate = r
	case "breaker_failures":
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("breaker_failures must be an integer")
		}
		f.BreakerFailures = n
	case "geocoding_url":
		f.GeocodingURL = val
	case "forecast_url":
		f.ForecastURL = val
	case "db_path":
		f.DBPath = val
	default:
		return fmt.Errorf("unknown config key: %q", key)
	}
	return nil
}

// Template returns a File populated with sensible defaults, suitable for
// writing an initial config.json via `meteo config init`.
func Template() File {
	return File{
		DefaultFormat:   DefaultFormat,
		Timeout:         DefaultTimeout.String(),
		Concurrency:     DefaultConcurrency,
		Rate:            DefaultRate,
		BreakerFailures: DefaultBreakerFailures,
		GeocodingURL:    DefaultGeocodingURL,
		ForecastURL:     DefaultForecastURL,
	}
}

// WriteFile serialises a File to the given path.
func WriteFile(path string, f File) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0600)
}
