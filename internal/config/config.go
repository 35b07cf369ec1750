// Package config loads the voidsort service configuration from an optional
// config.toml, an optional environment overlay, and VOIDSORT_* variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/voidsort/pkg/auth"
	"github.com/JaimeStill/voidsort/pkg/database"
	"github.com/JaimeStill/voidsort/pkg/settings"
	"github.com/JaimeStill/voidsort/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvVoidsortEnv             = "VOIDSORT_ENV"
	EnvVoidsortShutdownTimeout = "VOIDSORT_SHUTDOWN_TIMEOUT"
	EnvVoidsortVersion         = "VOIDSORT_VERSION"
	EnvVoidsortLogLevel        = "VOIDSORT_LOG_LEVEL"
)

var databaseEnv = &database.Env{
	URL:             "VOIDSORT_DB_DSN",
	Host:            "VOIDSORT_DB_HOST",
	Port:            "VOIDSORT_DB_PORT",
	Name:            "VOIDSORT_DB_NAME",
	User:            "VOIDSORT_DB_USER",
	Password:        "VOIDSORT_DB_PASSWORD",
	SSLMode:         "VOIDSORT_DB_SSL_MODE",
	ApplicationName: "VOIDSORT_DB_APPLICATION_NAME",
	MaxOpenConns:    "VOIDSORT_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "VOIDSORT_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "VOIDSORT_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "VOIDSORT_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "VOIDSORT_STORAGE_CONTAINER_NAME",
	ConnectionString: "VOIDSORT_STORAGE_CONNECTION_STRING",
	ServiceURL:       "VOIDSORT_STORAGE_SERVICE_URL",
	Prefix:           "VOIDSORT_STORAGE_PREFIX",
}

var authEnv = &auth.Env{
	Enabled:      "VOIDSORT_AUTH_ENABLED",
	Issuer:       "VOIDSORT_AUTH_ISSUER",
	ClientID:     "VOIDSORT_AUTH_CLIENT_ID",
	SubjectClaim: "VOIDSORT_AUTH_SUBJECT_CLAIM",
}

// Config is the root configuration for the voidsort service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	API             APIConfig       `toml:"api"`
	Auth            auth.Config     `toml:"auth"`
	Sessions        SessionsConfig  `toml:"sessions"`
	Build           BuildConfig     `toml:"build"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
	LogLevel        string          `toml:"log_level"`
}

// Env returns the VOIDSORT_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvVoidsortEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Level returns LogLevel as a slog level. Validation guarantees it parses.
func (c *Config) Level() slog.Level {
	var l slog.Level
	_ = l.UnmarshalText([]byte(c.LogLevel))
	return l
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// LoadDatabase resolves only the database section from the same files and
// VOIDSORT_DB_* variables as Load. Tools that touch nothing but the database,
// such as the migrate command, use it so unrelated sections need not validate.
func LoadDatabase() (*database.Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}

	if err := cfg.Database.Finalize(databaseEnv); err != nil {
		return nil, fmt.Errorf("finalize config: database: %w", err)
	}

	return &cfg.Database, nil
}

func read() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	settings.Overlay(&c.ShutdownTimeout, overlay.ShutdownTimeout)
	settings.Overlay(&c.Version, overlay.Version)
	settings.Overlay(&c.LogLevel, overlay.LogLevel)
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Auth.Merge(&overlay.Auth)
	c.Sessions.Merge(&overlay.Sessions)
	c.Build.Merge(&overlay.Build)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Auth.Finalize(authEnv); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.Sessions.Finalize(); err != nil {
		return fmt.Errorf("sessions: %w", err)
	}
	if err := c.Build.Finalize(); err != nil {
		return fmt.Errorf("build: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	settings.Default(&c.ShutdownTimeout, "30s")
	settings.Default(&c.Version, "0.1.0")
	settings.Default(&c.LogLevel, "info")
}

func (c *Config) loadEnv() {
	settings.String(&c.ShutdownTimeout, EnvVoidsortShutdownTimeout)
	settings.String(&c.Version, EnvVoidsortVersion)
	settings.String(&c.LogLevel, EnvVoidsortLogLevel)
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvVoidsortEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
