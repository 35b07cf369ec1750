package api

import (
	"github.com/JaimeStill/voidsort/internal/builds"
	"github.com/JaimeStill/voidsort/internal/config"
	"github.com/JaimeStill/voidsort/internal/documents"
	"github.com/JaimeStill/voidsort/internal/preview"
	"github.com/JaimeStill/voidsort/internal/sessions"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Builds   builds.System
	Sessions sessions.System
}

// NewDomain creates all domain systems from the API runtime. Sessions and
// builds share one archive.Builder so a plan previewed in a session matches
// the archive that is stored.
func NewDomain(runtime *Runtime, cfg *config.Config) (*Domain, error) {
	builder, err := cfg.Build.Builder()
	if err != nil {
		return nil, err
	}

	buildsSystem := builds.New(
		runtime.Database.Connection(),
		runtime.Storage,
		builder,
		runtime.Logger,
		runtime.Pagination,
	)

	loader := documents.NewLoader(documents.LoadOptions{
		Concurrency:     cfg.Sessions.LoadConcurrency,
		MaxDocuments:    cfg.Sessions.MaxDocuments,
		MaxDocumentSize: cfg.Sessions.MaxDocumentSizeBytes(),
	}, runtime.Logger)

	renderer := preview.NewDegrading(
		preview.NewImageMagick(cfg.Sessions.PreviewDPI, cfg.Sessions.TempDir),
		runtime.Logger,
	)

	sessionsSystem := sessions.New(
		loader,
		builder,
		buildsSystem,
		renderer,
		sessions.Options{
			MaxSessions:   cfg.Sessions.MaxSessions,
			IdleTimeout:   cfg.Sessions.IdleTimeoutDuration(),
			SweepInterval: cfg.Sessions.SweepIntervalDuration(),
		},
		runtime.Logger,
	)

	return &Domain{
		Builds:   buildsSystem,
		Sessions: sessionsSystem,
	}, nil
}
