package middleware

import (
	"fmt"
	"net/url"
	"slices"

	"github.com/JaimeStill/voidsort/pkg/settings"
)

// CORSConfig holds the CORS policy for browser front ends. ExposedHeaders are
// the response headers a browser client may read, such as the download name
// and build id of a finished session.
type CORSConfig struct {
	Enabled          bool     `toml:"enabled"`
	Origins          []string `toml:"origins"`
	AllowedMethods   []string `toml:"allowed_methods"`
	AllowedHeaders   []string `toml:"allowed_headers"`
	ExposedHeaders   []string `toml:"exposed_headers"`
	AllowCredentials bool     `toml:"allow_credentials"`
	MaxAge           int      `toml:"max_age"`
}

// CORSEnv names the environment variables that override CORSConfig fields.
type CORSEnv struct {
	Enabled          string
	Origins          string
	AllowedMethods   string
	AllowedHeaders   string
	ExposedHeaders   string
	AllowCredentials string
	MaxAge           string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *CORSConfig) Finalize(env *CORSEnv) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites fields set in overlay. An overlay can switch Enabled and
// AllowCredentials on; switching them off takes an environment variable.
func (c *CORSConfig) Merge(overlay *CORSConfig) {
	settings.Overlay(&c.Enabled, overlay.Enabled)
	settings.Overlay(&c.AllowCredentials, overlay.AllowCredentials)
	settings.Overlay(&c.MaxAge, overlay.MaxAge)
	settings.OverlayList(&c.Origins, overlay.Origins)
	settings.OverlayList(&c.AllowedMethods, overlay.AllowedMethods)
	settings.OverlayList(&c.AllowedHeaders, overlay.AllowedHeaders)
	settings.OverlayList(&c.ExposedHeaders, overlay.ExposedHeaders)
}

func (c *CORSConfig) loadDefaults() {
	if len(c.AllowedMethods) == 0 {
		c.AllowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	if len(c.AllowedHeaders) == 0 {
		c.AllowedHeaders = []string{"Accept", "Authorization", "Content-Type"}
	}
	if len(c.ExposedHeaders) == 0 {
		c.ExposedHeaders = []string{"Content-Disposition", "X-Build-ID"}
	}
	settings.Default(&c.MaxAge, 600)
}

func (c *CORSConfig) loadEnv(env *CORSEnv) {
	settings.Bool(&c.Enabled, env.Enabled)
	settings.List(&c.Origins, env.Origins)
	settings.List(&c.AllowedMethods, env.AllowedMethods)
	settings.List(&c.AllowedHeaders, env.AllowedHeaders)
	settings.List(&c.ExposedHeaders, env.ExposedHeaders)
	settings.Bool(&c.AllowCredentials, env.AllowCredentials)
	settings.Int(&c.MaxAge, env.MaxAge)
}

func (c *CORSConfig) validate() error {
	if c.MaxAge < 0 {
		return fmt.Errorf("max_age must not be negative")
	}

	wildcard := slices.Contains(c.Origins, "*")
	if wildcard && c.AllowCredentials {
		return fmt.Errorf("allow_credentials cannot be combined with origin \"*\"")
	}

	for _, o := range c.Origins {
		if o == "*" {
			continue
		}
		u, err := url.Parse(o)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" || (u.Path != "" && u.Path != "/") {
			return fmt.Errorf("origin %q must be scheme://host[:port]", o)
		}
	}
	return nil
}
