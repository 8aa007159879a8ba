package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Default values for the configuration.
const (
	DefaultSourceURL      = "http://localhost:8080/api/data"
	DefaultSourceInterval = time.Second
	DefaultSourceTimeout  = 10 * time.Second
	DefaultHTTPPort       = 8000
	DefaultWorkers        = 8
	DefaultSendBuffer     = 256
	DefaultLogLevel       = "info"
)

// Environment variables that override the file.
const (
	EnvSourceURL      = "DATA_SOURCE_URL"
	EnvSourceInterval = "DATA_SOURCE_INTERVAL" // seconds, may be fractional
)

// Config holds the whole service configuration.
type Config struct {
	Source    SourceConfig    `yaml:"source"`
	Server    ServerConfig    `yaml:"server"`
	Broadcast BroadcastConfig `yaml:"broadcast"`
	Log       LogConfig       `yaml:"log"`
}

// SourceConfig describes the timing source that is polled every cycle.
type SourceConfig struct {
	// URL is the full URL of the raw event payload.
	URL string `yaml:"url"`

	// Interval is the time between two fetches (default 1s).
	Interval time.Duration `yaml:"interval"`

	// Timeout bounds a single fetch (default 10s).
	Timeout time.Duration `yaml:"timeout"`

	// APIKeyEnv is the name of the environment variable holding an API key
	// sent to the source. Empty disables the header.
	APIKeyEnv string `yaml:"api_key_env"`

	// APIKeyHeader is the header carrying the key. Defaults to "x-api-key".
	APIKeyHeader string `yaml:"api_key_header"`
}

// APIKey returns the source API key resolved from the environment.
func (s SourceConfig) APIKey() string {
	if s.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(s.APIKeyEnv)
}

// EffectiveHeader returns the configured header name, or the default "x-api-key".
func (s SourceConfig) EffectiveHeader() string {
	if s.APIKeyHeader != "" {
		return s.APIKeyHeader
	}
	return "x-api-key"
}

// ServerConfig holds the listener settings.
type ServerConfig struct {
	// HTTPPort serves the WebSocket endpoint, the admin API and /metrics.
	HTTPPort int `yaml:"http_port"`

	// AdminAuth protects the admin API under /api/v1/.
	AdminAuth AuthConfig `yaml:"admin_auth"`
}

// AuthConfig controls admin client authentication.
type AuthConfig struct {
	// Mode is one of: apikey | none.
	Mode string `yaml:"mode"`

	// KeyEnv is the name of the environment variable that holds the expected API key.
	// Used when Mode == "apikey".
	KeyEnv string `yaml:"key_env"`

	// Header is the HTTP header to read the key from.
	// Defaults to "x-api-key" if empty.
	Header string `yaml:"header"`
}

// Key returns the expected API key resolved from the environment.
func (a AuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// EffectiveHeader returns the configured header name, or the default "x-api-key".
func (a AuthConfig) EffectiveHeader() string {
	if a.Header != "" {
		return a.Header
	}
	return "x-api-key"
}

// BroadcastConfig controls what is sent to subscribers and how.
type BroadcastConfig struct {
	// SuppressUntimedRepeats mutes updates for competitors that still have
	// no time and were already announced (default true).
	SuppressUntimedRepeats bool `yaml:"suppress_untimed_repeats"`

	// Workers is the number of parallel deliveries per broadcast.
	Workers int `yaml:"workers"`

	// SendBuffer is the per-subscriber outgoing queue depth.
	SendBuffer int `yaml:"send_buffer"`
}

// LogConfig selects the log level: debug | info | warn | error.
type LogConfig struct {
	Level string `yaml:"level"`
}

// SlogLevel converts the configured level to a slog.Level.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load reads and parses the config file at path. An empty path uses defaults
// only. Environment overrides are applied after the file, then the result is
// validated.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse yaml: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment
// without overwriting variables that are already set. A missing file is not
// an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: load env file %q: %w", path, err)
	}
	return nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Source: SourceConfig{
			URL:      DefaultSourceURL,
			Interval: DefaultSourceInterval,
			Timeout:  DefaultSourceTimeout,
		},
		Server: ServerConfig{
			HTTPPort: DefaultHTTPPort,
		},
		Broadcast: BroadcastConfig{
			SuppressUntimedRepeats: true,
			Workers:                DefaultWorkers,
			SendBuffer:             DefaultSendBuffer,
		},
		Log: LogConfig{Level: DefaultLogLevel},
	}
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvSourceURL); v != "" {
		cfg.Source.URL = v
	}
	if v := os.Getenv(EnvSourceInterval); v != "" {
		secs, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s %q is not a number of seconds", EnvSourceInterval, v)
		}
		cfg.Source.Interval = time.Duration(secs * float64(time.Second))
	}
	return nil
}

// validate checks structural constraints on the parsed configuration.
func validate(cfg *Config) error {
	if cfg.Source.URL == "" {
		return fmt.Errorf("source.url is required")
	}
	if cfg.Source.Interval <= 0 {
		return fmt.Errorf("source.interval must be positive")
	}
	if cfg.Source.Timeout < 0 {
		return fmt.Errorf("source.timeout must not be negative")
	}
	if cfg.Server.HTTPPort <= 0 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d is out of range [1, 65535]", cfg.Server.HTTPPort)
	}
	switch cfg.Server.AdminAuth.Mode {
	case "apikey", "none", "":
	default:
		return fmt.Errorf("server.admin_auth.mode %q unknown: want apikey|none", cfg.Server.AdminAuth.Mode)
	}
	if cfg.Broadcast.Workers <= 0 {
		return fmt.Errorf("broadcast.workers must be positive")
	}
	if cfg.Broadcast.SendBuffer <= 0 {
		return fmt.Errorf("broadcast.send_buffer must be positive")
	}
	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "warning", "error", "":
	default:
		return fmt.Errorf("log.level %q unknown: want debug|info|warn|error", cfg.Log.Level)
	}
	return nil
}
