package config

import (
	"fmt"
	"time"

	"github.com/JaimeStill/voidsort/pkg/formatting"
	"github.com/JaimeStill/voidsort/pkg/settings"
)

const (
	EnvSessionsMaxSessions     = "VOIDSORT_SESSIONS_MAX_SESSIONS"
	EnvSessionsIdleTimeout     = "VOIDSORT_SESSIONS_IDLE_TIMEOUT"
	EnvSessionsSweepInterval   = "VOIDSORT_SESSIONS_SWEEP_INTERVAL"
	EnvSessionsLoadConcurrency = "VOIDSORT_SESSIONS_LOAD_CONCURRENCY"
	EnvSessionsMaxDocuments    = "VOIDSORT_SESSIONS_MAX_DOCUMENTS"
	EnvSessionsMaxDocumentSize = "VOIDSORT_SESSIONS_MAX_DOCUMENT_SIZE"
	EnvSessionsPreviewDPI      = "VOIDSORT_SESSIONS_PREVIEW_DPI"
	EnvSessionsTempDir         = "VOIDSORT_SESSIONS_TEMP_DIR"
)

// SessionsConfig bounds the in-memory review sessions and the work done to
// load and preview their documents.
type SessionsConfig struct {
	MaxSessions     int    `toml:"max_sessions"`
	IdleTimeout     string `toml:"idle_timeout"`
	SweepInterval   string `toml:"sweep_interval"`
	LoadConcurrency int    `toml:"load_concurrency"`
	MaxDocuments    int    `toml:"max_documents"`
	MaxDocumentSize string `toml:"max_document_size"`
	PreviewDPI      int    `toml:"preview_dpi"`
	TempDir         string `toml:"temp_dir"`
}

func (c *SessionsConfig) IdleTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.IdleTimeout)
	return d
}

func (c *SessionsConfig) SweepIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.SweepInterval)
	return d
}

func (c *SessionsConfig) MaxDocumentSizeBytes() int64 {
	size, _ := formatting.ParseBytes(c.MaxDocumentSize)
	return size
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *SessionsConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *SessionsConfig) Merge(overlay *SessionsConfig) {
	settings.Overlay(&c.MaxSessions, overlay.MaxSessions)
	settings.Overlay(&c.IdleTimeout, overlay.IdleTimeout)
	settings.Overlay(&c.SweepInterval, overlay.SweepInterval)
	settings.Overlay(&c.LoadConcurrency, overlay.LoadConcurrency)
	settings.Overlay(&c.MaxDocuments, overlay.MaxDocuments)
	settings.Overlay(&c.MaxDocumentSize, overlay.MaxDocumentSize)
	settings.Overlay(&c.PreviewDPI, overlay.PreviewDPI)
	settings.Overlay(&c.TempDir, overlay.TempDir)
}

func (c *SessionsConfig) loadDefaults() {
	settings.Default(&c.MaxSessions, 32)
	settings.Default(&c.IdleTimeout, "2h")
	settings.Default(&c.SweepInterval, "1m")
	settings.Default(&c.LoadConcurrency, 4)
	settings.Default(&c.MaxDocuments, 2000)
	settings.Default(&c.MaxDocumentSize, "25MB")
	settings.Default(&c.PreviewDPI, 96)
}

func (c *SessionsConfig) loadEnv() {
	settings.Int(&c.MaxSessions, EnvSessionsMaxSessions)
	settings.Int(&c.LoadConcurrency, EnvSessionsLoadConcurrency)
	settings.Int(&c.MaxDocuments, EnvSessionsMaxDocuments)
	settings.Int(&c.PreviewDPI, EnvSessionsPreviewDPI)
	settings.String(&c.IdleTimeout, EnvSessionsIdleTimeout)
	settings.String(&c.SweepInterval, EnvSessionsSweepInterval)
	settings.String(&c.MaxDocumentSize, EnvSessionsMaxDocumentSize)
	settings.String(&c.TempDir, EnvSessionsTempDir)
}

func (c *SessionsConfig) validate() error {
	if c.MaxSessions < 1 {
		return fmt.Errorf("max_sessions must be positive")
	}
	if c.LoadConcurrency < 1 {
		return fmt.Errorf("load_concurrency must be positive")
	}
	if c.MaxDocuments < 1 {
		return fmt.Errorf("max_documents must be positive")
	}
	if c.PreviewDPI < 1 {
		return fmt.Errorf("preview_dpi must be positive")
	}
	if d, err := time.ParseDuration(c.IdleTimeout); err != nil || d <= 0 {
		return fmt.Errorf("invalid idle_timeout: %q", c.IdleTimeout)
	}
	if d, err := time.ParseDuration(c.SweepInterval); err != nil || d <= 0 {
		return fmt.Errorf("invalid sweep_interval: %q", c.SweepInterval)
	}
	if n, err := formatting.ParseBytes(c.MaxDocumentSize); err != nil || n <= 0 {
		return fmt.Errorf("invalid max_document_size: %q", c.MaxDocumentSize)
	}
	return nil
}
