// Package config loads the prediction form's settings from YAML with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"prediction-form/internal/form"
)

// Config is the full set of startup settings.
type Config struct {
	Endpoint string        `yaml:"endpoint"`
	Timeout  time.Duration `yaml:"timeout"`
	Sample   []float64     `yaml:"sample"`
	Labels   []string      `yaml:"labels"`
	Server   Server        `yaml:"server"`
	Log      Log           `yaml:"log"`
}

// Server configures the web form.
type Server struct {
	Port           string        `yaml:"port"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	MaxSessions    int           `yaml:"max_sessions"`
	SessionTTL     time.Duration `yaml:"session_ttl"`
}

// Log configures logrus output.
type Log struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// DefaultEndpoint is used when neither the file nor the environment names one.
const DefaultEndpoint = "http://127.0.0.1:5000/predict"

// defaultSample is the first record of the Wisconsin diagnostic breast cancer
// data set, a convenient 30-feature reference vector for demos.
var defaultSample = []float64{
	17.99, 10.38, 122.8, 1001, 0.1184, 0.2776, 0.3001, 0.1471, 0.2419, 0.07871,
	1.095, 0.9053, 8.589, 153.4, 0.006399, 0.04904, 0.05373, 0.01587, 0.03003, 0.006193,
	25.38, 17.33, 184.6, 2019, 0.1622, 0.6656, 0.7119, 0.2654, 0.4601, 0.1189,
}

// Default returns the settings used when no file is supplied.
func Default() Config {
	return Config{
		Endpoint: DefaultEndpoint,
		Sample:   append([]float64(nil), defaultSample...),
		Server: Server{
			Port:        "2000",
			MaxSessions: 1024,
			SessionTTL:  2 * time.Hour,
		},
		Log: Log{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  20,
			MaxBackups: 3,
			MaxAgeDays: 14,
		},
	}
}

// Load reads path over the defaults. An empty path yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	path = strings.TrimSpace(path)
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides settings from environment variables. Unparseable values
// are reported rather than silently ignored.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := strings.TrimSpace(getenv("PREDICT_ENDPOINT")); v != "" {
		c.Endpoint = v
	}
	if v := strings.TrimSpace(getenv("PREDICT_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("PREDICT_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	if v := strings.TrimSpace(getenv("PORT")); v != "" {
		if _, err := strconv.Atoi(v); err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Server.Port = v
	}
	if v := strings.TrimSpace(getenv("LOG_LEVEL")); v != "" {
		c.Log.Level = v
	}
	if v := strings.TrimSpace(getenv("LOG_FILE")); v != "" {
		c.Log.File = v
	}
	return nil
}

// Validate checks the invariants the form depends on.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Endpoint) == "" {
		errs = append(errs, errors.New("endpoint is required"))
	}
	if c.Timeout < 0 {
		errs = append(errs, errors.New("timeout must not be negative"))
	}
	if len(c.Sample) != form.FieldCount {
		errs = append(errs, fmt.Errorf("sample must have %d values, got %d", form.FieldCount, len(c.Sample)))
	}
	if n := len(c.Labels); n != 0 && n != form.FieldCount {
		errs = append(errs, fmt.Errorf("labels must be empty or have %d entries, got %d", form.FieldCount, n))
	}
	if c.Server.MaxSessions < 0 {
		errs = append(errs, errors.New("server.max_sessions must not be negative"))
	}
	return errors.Join(errs...)
}
