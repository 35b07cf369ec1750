package api

import (
	"net/http"

	"github.com/JaimeStill/voidsort/internal/config"
	"github.com/JaimeStill/voidsort/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
) {
	routes.Register(
		mux,
		domain.Sessions.Handler(cfg.API.MaxUploadSizeBytes()).Routes(),
		domain.Builds.Handler().Routes(),
	)
}
