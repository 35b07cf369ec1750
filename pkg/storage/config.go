package storage

import (
	"fmt"
	"strings"

	"github.com/JaimeStill/voidsort/pkg/settings"
)

// Config holds Azure Blob Storage connection parameters. Either ConnectionString
// or ServiceURL must be set; ServiceURL authenticates with the ambient Azure
// credential chain.
type Config struct {
	ContainerName    string `toml:"container_name"`
	ConnectionString string `toml:"connection_string"`
	ServiceURL       string `toml:"service_url"`
	Prefix           string `toml:"prefix"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	ContainerName    string
	ConnectionString string
	ServiceURL       string
	Prefix           string
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
	settings.Overlay(&c.ContainerName, overlay.ContainerName)
	settings.Overlay(&c.ConnectionString, overlay.ConnectionString)
	settings.Overlay(&c.ServiceURL, overlay.ServiceURL)
	settings.Overlay(&c.Prefix, overlay.Prefix)
}

// UsesCredential reports whether the client authenticates with an Azure
// credential rather than a connection string.
func (c *Config) UsesCredential() bool {
	return c.ConnectionString == "" && c.ServiceURL != ""
}

func (c *Config) loadDefaults() {
	settings.Default(&c.ContainerName, "archives")
	settings.Default(&c.Prefix, "builds")
}

func (c *Config) loadEnv(env *Env) {
	settings.String(&c.ContainerName, env.ContainerName)
	settings.String(&c.ConnectionString, env.ConnectionString)
	settings.String(&c.ServiceURL, env.ServiceURL)
	settings.String(&c.Prefix, env.Prefix)
}

func (c *Config) validate() error {
	if c.ContainerName == "" {
		return fmt.Errorf("container_name required")
	}
	if c.ConnectionString == "" && c.ServiceURL == "" {
		return fmt.Errorf("connection_string or service_url required")
	}
	if c.ServiceURL != "" && !strings.HasPrefix(c.ServiceURL, "https://") && !strings.HasPrefix(c.ServiceURL, "http://") {
		return fmt.Errorf("service_url must be an http(s) URL")
	}
	if strings.Contains(c.Prefix, "..") {
		return fmt.Errorf("prefix contains invalid path segment")
	}
	return nil
}
