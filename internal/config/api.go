package config

import (
	"fmt"

	"github.com/JaimeStill/voidsort/pkg/formatting"
	"github.com/JaimeStill/voidsort/pkg/middleware"
	"github.com/JaimeStill/voidsort/pkg/pagination"
	"github.com/JaimeStill/voidsort/pkg/settings"
)

const (
	EnvAPIBasePath      = "VOIDSORT_API_BASE_PATH"
	EnvAPIMaxUploadSize = "VOIDSORT_API_MAX_UPLOAD_SIZE"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "VOIDSORT_CORS_ENABLED",
	Origins:          "VOIDSORT_CORS_ORIGINS",
	AllowedMethods:   "VOIDSORT_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "VOIDSORT_CORS_ALLOWED_HEADERS",
	ExposedHeaders:   "VOIDSORT_CORS_EXPOSED_HEADERS",
	AllowCredentials: "VOIDSORT_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "VOIDSORT_CORS_MAX_AGE",
}

var paginationEnv = &pagination.Env{
	DefaultPageSize: "VOIDSORT_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "VOIDSORT_PAGINATION_MAX_PAGE_SIZE",
}

// APIConfig holds API routing, upload limits, CORS, and pagination settings.
type APIConfig struct {
	BasePath      string                `toml:"base_path"`
	MaxUploadSize string                `toml:"max_upload_size"`
	CORS          middleware.CORSConfig `toml:"cors"`
	Pagination    pagination.Config     `toml:"pagination"`
}

// MaxUploadSizeBytes returns MaxUploadSize in bytes. Validation guarantees it parses.
func (c *APIConfig) MaxUploadSizeBytes() int64 {
	size, _ := formatting.ParseBytes(c.MaxUploadSize)
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested CORS and pagination configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	settings.Overlay(&c.BasePath, overlay.BasePath)
	settings.Overlay(&c.MaxUploadSize, overlay.MaxUploadSize)
	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
}

func (c *APIConfig) loadDefaults() {
	settings.Default(&c.BasePath, "/api")
	settings.Default(&c.MaxUploadSize, "100MB")
}

func (c *APIConfig) loadEnv() {
	settings.String(&c.BasePath, EnvAPIBasePath)
	settings.String(&c.MaxUploadSize, EnvAPIMaxUploadSize)
}

func (c *APIConfig) validate() error {
	size, err := formatting.ParseBytes(c.MaxUploadSize)
	if err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("max_upload_size must be positive")
	}
	return nil
}
