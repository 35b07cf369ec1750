// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/voidsort/internal/config"
	"github.com/JaimeStill/voidsort/internal/infrastructure"
	"github.com/JaimeStill/voidsort/pkg/middleware"
	"github.com/JaimeStill/voidsort/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
// Domain systems with background work are registered with the lifecycle
// coordinator here.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)

	domain, err := NewDomain(runtime, cfg)
	if err != nil {
		return nil, fmt.Errorf("domain init failed: %w", err)
	}

	if err := domain.Sessions.Start(runtime.Lifecycle); err != nil {
		return nil, fmt.Errorf("sessions start failed: %w", err)
	}

	mux := http.NewServeMux()
	registerRoutes(mux, domain, cfg)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.Recover(runtime.Logger))
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))
	m.Use(runtime.Auth.Middleware())

	return m, nil
}
