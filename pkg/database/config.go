package database

import (
	"fmt"
	"net"
	"net/url"
	"slices"
	"strconv"
	"time"

	"github.com/JaimeStill/voidsort/pkg/settings"
)

var sslModes = []string{"disable", "allow", "prefer", "require", "verify-ca", "verify-full"}

// Config holds PostgreSQL connection parameters. A non-empty URL is used as
// the connection string verbatim and the discrete fields are ignored.
//
// Dsn always yields a postgres:// URL, which both the pgx stdlib driver and
// golang-migrate accept, so the server and the migrate command share one
// database section.
type Config struct {
	URL             string `toml:"url"`
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	Name            string `toml:"name"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	SSLMode         string `toml:"ssl_mode"`
	ApplicationName string `toml:"application_name"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime string `toml:"conn_max_lifetime"`
	ConnTimeout     string `toml:"conn_timeout"`
}

// Env names the environment variables that override Config fields.
type Env struct {
	URL             string
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	SSLMode         string
	ApplicationName string
	MaxOpenConns    string
	MaxIdleConns    string
	ConnMaxLifetime string
	ConnTimeout     string
}

// ConnMaxLifetimeDuration returns ConnMaxLifetime as a time.Duration.
func (c *Config) ConnMaxLifetimeDuration() time.Duration {
	d, _ := time.ParseDuration(c.ConnMaxLifetime)
	return d
}

// ConnTimeoutDuration returns ConnTimeout as a time.Duration.
func (c *Config) ConnTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ConnTimeout)
	return d
}

// Dsn returns the connection URL.
func (c *Config) Dsn() string {
	if c.URL != "" {
		return c.URL
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/" + c.Name,
	}
	if c.Password != "" {
		u.User = url.UserPassword(c.User, c.Password)
	} else {
		u.User = url.User(c.User)
	}

	q := url.Values{}
	q.Set("sslmode", c.SSLMode)
	if c.ApplicationName != "" {
		q.Set("application_name", c.ApplicationName)
	}
	u.RawQuery = q.Encode()

	return u.String()
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	settings.Overlay(&c.URL, overlay.URL)
	settings.Overlay(&c.Host, overlay.Host)
	settings.Overlay(&c.Port, overlay.Port)
	settings.Overlay(&c.Name, overlay.Name)
	settings.Overlay(&c.User, overlay.User)
	settings.Overlay(&c.Password, overlay.Password)
	settings.Overlay(&c.SSLMode, overlay.SSLMode)
	settings.Overlay(&c.ApplicationName, overlay.ApplicationName)
	settings.Overlay(&c.MaxOpenConns, overlay.MaxOpenConns)
	settings.Overlay(&c.MaxIdleConns, overlay.MaxIdleConns)
	settings.Overlay(&c.ConnMaxLifetime, overlay.ConnMaxLifetime)
	settings.Overlay(&c.ConnTimeout, overlay.ConnTimeout)
}

func (c *Config) loadDefaults() {
	settings.Default(&c.Host, "localhost")
	settings.Default(&c.Port, 5432)
	settings.Default(&c.SSLMode, "disable")
	settings.Default(&c.ApplicationName, "voidsort")
	settings.Default(&c.MaxOpenConns, 10)
	settings.Default(&c.MaxIdleConns, 2)
	settings.Default(&c.ConnMaxLifetime, "15m")
	settings.Default(&c.ConnTimeout, "5s")
}

func (c *Config) loadEnv(env *Env) {
	settings.String(&c.URL, env.URL)
	settings.String(&c.Host, env.Host)
	settings.Int(&c.Port, env.Port)
	settings.String(&c.Name, env.Name)
	settings.String(&c.User, env.User)
	settings.String(&c.Password, env.Password)
	settings.String(&c.SSLMode, env.SSLMode)
	settings.String(&c.ApplicationName, env.ApplicationName)
	settings.Int(&c.MaxOpenConns, env.MaxOpenConns)
	settings.Int(&c.MaxIdleConns, env.MaxIdleConns)
	settings.String(&c.ConnMaxLifetime, env.ConnMaxLifetime)
	settings.String(&c.ConnTimeout, env.ConnTimeout)
}

func (c *Config) validate() error {
	if c.URL == "" {
		switch {
		case c.Name == "":
			return fmt.Errorf("name required")
		case c.User == "":
			return fmt.Errorf("user required")
		case c.Port < 1 || c.Port > 65535:
			return fmt.Errorf("port %d out of range", c.Port)
		case !slices.Contains(sslModes, c.SSLMode):
			return fmt.Errorf("unknown ssl_mode %q", c.SSLMode)
		}
	}
	if c.MaxOpenConns < 1 {
		return fmt.Errorf("max_open_conns must be positive")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return fmt.Errorf("max_idle_conns %d exceeds max_open_conns %d", c.MaxIdleConns, c.MaxOpenConns)
	}
	if d, err := time.ParseDuration(c.ConnMaxLifetime); err != nil || d < 0 {
		return fmt.Errorf("invalid conn_max_lifetime %q", c.ConnMaxLifetime)
	}
	if d, err := time.ParseDuration(c.ConnTimeout); err != nil || d <= 0 {
		return fmt.Errorf("invalid conn_timeout %q", c.ConnTimeout)
	}
	return nil
}
