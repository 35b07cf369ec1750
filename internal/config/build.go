package config

import (
	"fmt"

	"github.com/JaimeStill/voidsort/internal/archive"
	"github.com/JaimeStill/voidsort/internal/naming"
	"github.com/JaimeStill/voidsort/internal/routing"
	"github.com/JaimeStill/voidsort/pkg/settings"
)

const (
	EnvBuildSkipPolicy      = "VOIDSORT_BUILD_SKIP_POLICY"
	EnvBuildPlaceholder     = "VOIDSORT_BUILD_PLACEHOLDER"
	EnvBuildRulesFile       = "VOIDSORT_BUILD_RULES_FILE"
	EnvBuildAsbestosMarkers = "VOIDSORT_BUILD_ASBESTOS_MARKERS"
)

// BuildConfig controls how reviewed documents are named and routed into the
// output archive. RulesFile replaces the built-in routing table; when it is
// empty, AsbestosMarkers extend the default asbestos rule.
type BuildConfig struct {
	SkipPolicy      string   `toml:"skip_policy"`
	Placeholder     string   `toml:"placeholder"`
	RulesFile       string   `toml:"rules_file"`
	AsbestosMarkers []string `toml:"asbestos_markers"`
}

// Builder creates the archive builder described by c. A rules file replaces
// the default routing table entirely.
func (c *BuildConfig) Builder() (*archive.Builder, error) {
	policy, err := archive.ParseSkipPolicy(c.SkipPolicy)
	if err != nil {
		return nil, err
	}

	table := routing.DefaultTable(c.AsbestosMarkers...)
	if c.RulesFile != "" {
		loaded, err := routing.LoadFile(c.RulesFile)
		if err != nil {
			return nil, fmt.Errorf("load routing rules: %w", err)
		}
		table = loaded
	}

	return archive.NewBuilder(
		naming.NewEngine(),
		routing.New(table),
		archive.Options{SkipPolicy: policy, Placeholder: c.Placeholder},
	), nil
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *BuildConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *BuildConfig) Merge(overlay *BuildConfig) {
	settings.Overlay(&c.SkipPolicy, overlay.SkipPolicy)
	settings.Overlay(&c.Placeholder, overlay.Placeholder)
	settings.Overlay(&c.RulesFile, overlay.RulesFile)
	settings.OverlayList(&c.AsbestosMarkers, overlay.AsbestosMarkers)
}

func (c *BuildConfig) loadDefaults() {
	settings.Default(&c.SkipPolicy, string(archive.SkipOmit))
	settings.Default(&c.Placeholder, archive.DefaultPlaceholder)
}

func (c *BuildConfig) loadEnv() {
	settings.String(&c.SkipPolicy, EnvBuildSkipPolicy)
	settings.String(&c.Placeholder, EnvBuildPlaceholder)
	settings.String(&c.RulesFile, EnvBuildRulesFile)
	settings.List(&c.AsbestosMarkers, EnvBuildAsbestosMarkers)
}

func (c *BuildConfig) validate() error {
	if _, err := archive.ParseSkipPolicy(c.SkipPolicy); err != nil {
		return err
	}
	if c.RulesFile != "" {
		if _, err := routing.LoadFile(c.RulesFile); err != nil {
			return fmt.Errorf("rules_file: %w", err)
		}
	}
	return nil
}
