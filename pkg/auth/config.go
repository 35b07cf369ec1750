package auth

import (
	"fmt"
	"strings"

	"github.com/JaimeStill/voidsort/pkg/settings"
)

// Config holds OpenID Connect bearer-token settings. When Enabled is false
// requests pass through unauthenticated and builds record no creator.
type Config struct {
	Enabled      bool   `toml:"enabled"`
	Issuer       string `toml:"issuer"`
	ClientID     string `toml:"client_id"`
	SubjectClaim string `toml:"subject_claim"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Enabled      string
	Issuer       string
	ClientID     string
	SubjectClaim string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites fields from overlay. Enabled always applies; string fields
// only apply when non-empty.
func (c *Config) Merge(overlay *Config) {
	c.Enabled = overlay.Enabled

	settings.Overlay(&c.Issuer, overlay.Issuer)
	settings.Overlay(&c.ClientID, overlay.ClientID)
	settings.Overlay(&c.SubjectClaim, overlay.SubjectClaim)
}

func (c *Config) loadDefaults() {
	settings.Default(&c.SubjectClaim, "sub")
}

func (c *Config) loadEnv(env *Env) {
	settings.Bool(&c.Enabled, env.Enabled)
	settings.String(&c.Issuer, env.Issuer)
	settings.String(&c.ClientID, env.ClientID)
	settings.String(&c.SubjectClaim, env.SubjectClaim)
}

func (c *Config) validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Issuer == "" {
		return fmt.Errorf("issuer required when auth is enabled")
	}
	if !strings.HasPrefix(c.Issuer, "https://") && !strings.HasPrefix(c.Issuer, "http://") {
		return fmt.Errorf("issuer must be an http(s) URL")
	}
	if c.ClientID == "" {
		return fmt.Errorf("client_id required when auth is enabled")
	}
	return nil
}
