// Package config provides unified configuration loading for qsim.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"qsim/internal/circuit"
	"qsim/internal/logging"
	"qsim/internal/simulator"
)

// Config contains all qsim configuration settings.
type Config struct {
	// Simulator bounds what a single run may ask for.
	Simulator SimulatorConfig `json:"simulator" yaml:"simulator"`

	// Server configures `qsim serve`.
	Server ServerConfig `json:"server" yaml:"server"`

	// Logging contains settings for operational logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// SimulatorConfig limits circuit size and sampling.
type SimulatorConfig struct {
	// MaxQubits is the widest register accepted. Capped at 24.
	MaxQubits int `json:"max_qubits" yaml:"max_qubits"`

	// MaxShots is the largest shot count accepted per run.
	MaxShots int `json:"max_shots" yaml:"max_shots"`

	// DefaultShots is used when a run does not name a shot count.
	DefaultShots int `json:"default_shots" yaml:"default_shots"`

	// MaxConcurrent bounds simultaneous runs. 0 means unbounded.
	MaxConcurrent int64 `json:"max_concurrent" yaml:"max_concurrent"`

	// MemoryLimitBytes bounds the total size of live state vectors.
	// 0 means unbounded.
	MemoryLimitBytes int64 `json:"memory_limit_bytes" yaml:"memory_limit_bytes"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr           string   `json:"addr" yaml:"addr"`
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins"`

	// RateLimit is the sustained requests per second allowed per client.
	// 0 disables rate limiting.
	RateLimit float64 `json:"rate_limit" yaml:"rate_limit"`
	Burst     int     `json:"burst" yaml:"burst"`

	// RequestTimeout bounds the time a simulation may wait for budget and run.
	RequestTimeout time.Duration `json:"request_timeout" yaml:"request_timeout"`
	ReadTimeout    time.Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout   time.Duration `json:"write_timeout" yaml:"write_timeout"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	// Level sets the log verbosity: "error", "warn", "info" (default),
	// "debug", or "trace". "trace" logs every applied gate.
	Level string `json:"level" yaml:"level"`

	// Format is "text" (default) or "json".
	Format string `json:"format" yaml:"format"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Simulator: SimulatorConfig{
			MaxQubits:        simulator.DefaultMaxQubits,
			MaxShots:         simulator.DefaultMaxShots,
			DefaultShots:     1024,
			MaxConcurrent:    8,
			MemoryLimitBytes: 256 << 20,
		},
		Server: ServerConfig{
			Addr: ":8000",
			AllowedOrigins: []string{
				"http://localhost:5173",
				"http://localhost:5174",
				"http://localhost:3000",
			},
			RateLimit:      10,
			Burst:          20,
			RequestTimeout: 10 * time.Second,
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// DefaultPath returns ~/.qsim/config.yaml, or "" when the home directory is
// unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".qsim", "config.yaml")
}

// Load loads configuration in order: defaults -> file -> environment
// variables, then validates it. An empty path falls back to DefaultPath when
// that file exists; an explicit path must exist.
func Load(path string) (*Config, error) {
	config := Default()

	if path == "" {
		if p := DefaultPath(); p != "" {
			if _, statErr := os.Stat(p); statErr == nil {
				path = p
			}
		}
	}
	if path != "" {
		fileConfig, err := LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
		config = fileConfig
	}

	if err := applyEnvOverrides(config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file. Settings the
// file omits keep their defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return config, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	s := c.Simulator
	if s.MaxQubits < 1 || s.MaxQubits > circuit.HardMaxQubits {
		return fmt.Errorf("max_qubits must be between 1 and %d, got %d", circuit.HardMaxQubits, s.MaxQubits)
	}
	if s.MaxShots < 1 {
		return fmt.Errorf("max_shots must be positive, got %d", s.MaxShots)
	}
	if s.DefaultShots < 0 || s.DefaultShots > s.MaxShots {
		return fmt.Errorf("default_shots must be between 0 and max_shots (%d), got %d", s.MaxShots, s.DefaultShots)
	}
	if s.MaxConcurrent < 0 {
		return fmt.Errorf("max_concurrent must be non-negative, got %d", s.MaxConcurrent)
	}
	if s.MemoryLimitBytes < 0 {
		return fmt.Errorf("memory_limit_bytes must be non-negative, got %d", s.MemoryLimitBytes)
	}

	srv := c.Server
	if srv.Addr == "" {
		return fmt.Errorf("server addr must not be empty")
	}
	if srv.RateLimit < 0 {
		return fmt.Errorf("rate_limit must be non-negative, got %v", srv.RateLimit)
	}
	if srv.RateLimit > 0 && srv.Burst < 1 {
		return fmt.Errorf("burst must be at least 1 when rate limiting, got %d", srv.Burst)
	}
	for name, d := range map[string]time.Duration{
		"request_timeout": srv.RequestTimeout,
		"read_timeout":    srv.ReadTimeout,
		"write_timeout":   srv.WriteTimeout,
	} {
		if d < 0 {
			return fmt.Errorf("%s must be non-negative, got %v", name, d)
		}
	}

	validLevels := map[string]bool{"error": true, "warn": true, "info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: error, warn, info, debug, trace, or empty for default)", c.Logging.Level)
	}
	if f := c.Logging.Format; f != "" && f != "text" && f != "json" {
		return fmt.Errorf("invalid log format: %s (valid: text, json)", f)
	}
	return nil
}

// NewLogger builds the configured logger writing to w.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	return logging.NewLogger(c.Logging.Level, c.Logging.Format, w)
}

// applyEnvOverrides applies QSIM_* environment variable overrides. Malformed
// numeric values are an error rather than silently ignored.
func applyEnvOverrides(config *Config) error {
	ints := []struct {
		env string
		dst *int
	}{
		{"QSIM_MAX_QUBITS", &config.Simulator.MaxQubits},
		{"QSIM_MAX_SHOTS", &config.Simulator.MaxShots},
		{"QSIM_DEFAULT_SHOTS", &config.Simulator.DefaultShots},
		{"QSIM_BURST", &config.Server.Burst},
	}
	for _, o := range ints {
		if v := os.Getenv(o.env); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", o.env, err)
			}
			*o.dst = n
		}
	}

	int64s := []struct {
		env string
		dst *int64
	}{
		{"QSIM_MAX_CONCURRENT", &config.Simulator.MaxConcurrent},
		{"QSIM_MEMORY_LIMIT_BYTES", &config.Simulator.MemoryLimitBytes},
	}
	for _, o := range int64s {
		if v := os.Getenv(o.env); v != "" {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return fmt.Errorf("%s: %w", o.env, err)
			}
			*o.dst = n
		}
	}

	if v := os.Getenv("QSIM_RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("QSIM_RATE_LIMIT: %w", err)
		}
		config.Server.RateLimit = f
	}
	if v := os.Getenv("QSIM_REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("QSIM_REQUEST_TIMEOUT: %w", err)
		}
		config.Server.RequestTimeout = d
	}
	if v := os.Getenv("QSIM_ADDR"); v != "" {
		config.Server.Addr = v
	}
	if v := os.Getenv("QSIM_ALLOWED_ORIGINS"); v != "" {
		var origins []string
		for o := range strings.SplitSeq(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		config.Server.AllowedOrigins = origins
	}
	if v := os.Getenv("QSIM_LOG_LEVEL"); v != "" {
		config.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("QSIM_LOG_FORMAT"); v != "" {
		config.Logging.Format = strings.ToLower(v)
	}
	return nil
}
