package config

import (
	"fmt"
	"time"

	"github.com/JaimeStill/voidsort/pkg/settings"
)

const (
	EnvServerHost            = "VOIDSORT_SERVER_HOST"
	EnvServerPort            = "VOIDSORT_SERVER_PORT"
	EnvServerReadTimeout     = "VOIDSORT_SERVER_READ_TIMEOUT"
	EnvServerWriteTimeout    = "VOIDSORT_SERVER_WRITE_TIMEOUT"
	EnvServerShutdownTimeout = "VOIDSORT_SERVER_SHUTDOWN_TIMEOUT"
	EnvServerIdleTimeout     = "VOIDSORT_SERVER_IDLE_TIMEOUT"
)

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	ReadTimeout     string `toml:"read_timeout"`
	WriteTimeout    string `toml:"write_timeout"`
	ShutdownTimeout string `toml:"shutdown_timeout"`
	IdleTimeout     string `toml:"idle_timeout"`
}

// Addr returns the host:port listen address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ReadTimeoutDuration returns ReadTimeout as a time.Duration.
func (c *ServerConfig) ReadTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ReadTimeout)
	return d
}

// WriteTimeoutDuration returns WriteTimeout as a time.Duration.
func (c *ServerConfig) WriteTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.WriteTimeout)
	return d
}

// IdleTimeoutDuration returns IdleTimeout as a time.Duration.
func (c *ServerConfig) IdleTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.IdleTimeout)
	return d
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *ServerConfig) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ServerConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ServerConfig) Merge(overlay *ServerConfig) {
	settings.Overlay(&c.Host, overlay.Host)
	settings.Overlay(&c.Port, overlay.Port)
	settings.Overlay(&c.ReadTimeout, overlay.ReadTimeout)
	settings.Overlay(&c.WriteTimeout, overlay.WriteTimeout)
	settings.Overlay(&c.ShutdownTimeout, overlay.ShutdownTimeout)
	settings.Overlay(&c.IdleTimeout, overlay.IdleTimeout)
}

func (c *ServerConfig) loadDefaults() {
	settings.Default(&c.Host, "0.0.0.0")
	settings.Default(&c.Port, 8080)
	settings.Default(&c.ReadTimeout, "1m")
	settings.Default(&c.WriteTimeout, "5m")
	settings.Default(&c.ShutdownTimeout, "30s")
	settings.Default(&c.IdleTimeout, "2m")
}

func (c *ServerConfig) loadEnv() {
	settings.String(&c.Host, EnvServerHost)
	settings.Int(&c.Port, EnvServerPort)
	settings.String(&c.ReadTimeout, EnvServerReadTimeout)
	settings.String(&c.WriteTimeout, EnvServerWriteTimeout)
	settings.String(&c.ShutdownTimeout, EnvServerShutdownTimeout)
	settings.String(&c.IdleTimeout, EnvServerIdleTimeout)
}

func (c *ServerConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	for name, v := range map[string]string{
		"read_timeout":     c.ReadTimeout,
		"write_timeout":    c.WriteTimeout,
		"shutdown_timeout": c.ShutdownTimeout,
		"idle_timeout":     c.IdleTimeout,
	} {
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}
	return nil
}
