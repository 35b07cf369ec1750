// Package auth verifies OpenID Connect bearer tokens and carries the
// authenticated subject through the request context.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/JaimeStill/voidsort/pkg/handlers"
	"github.com/JaimeStill/voidsort/pkg/lifecycle"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid bearer token")
	ErrNotReady     = errors.New("identity provider not ready")
)

// Verifier resolves a raw bearer token to the subject it was issued for.
type Verifier interface {
	Verify(ctx context.Context, raw string) (string, error)
}

// System authenticates API requests against an OIDC issuer.
type System interface {
	Verifier

	// Start registers a startup hook that performs issuer discovery.
	Start(lc *lifecycle.Coordinator) error
	// Middleware rejects unauthenticated requests when auth is enabled.
	Middleware() func(http.Handler) http.Handler
	Ready() bool
}

type provider struct {
	cfg    *Config
	logger *slog.Logger

	mu       sync.RWMutex
	verifier *oidc.IDTokenVerifier
}

// New creates an auth system. Discovery against the issuer happens in Start.
func New(cfg *Config, logger *slog.Logger) System {
	return &provider{
		cfg:    cfg,
		logger: logger.With("system", "auth"),
	}
}

func (p *provider) Start(lc *lifecycle.Coordinator) error {
	if !p.cfg.Enabled {
		p.logger.Info("auth disabled")
		return nil
	}

	p.logger.Info("starting auth system", "issuer", p.cfg.Issuer)

	lc.OnStartup(func() {
		op, err := oidc.NewProvider(lc.Context(), p.cfg.Issuer)
		if err != nil {
			p.logger.Error("oidc discovery failed", "issuer", p.cfg.Issuer, "error", err)
			return
		}

		p.mu.Lock()
		p.verifier = op.Verifier(&oidc.Config{ClientID: p.cfg.ClientID})
		p.mu.Unlock()

		p.logger.Info("oidc provider ready", "issuer", p.cfg.Issuer)
	})

	return nil
}

func (p *provider) Ready() bool {
	if !p.cfg.Enabled {
		return true
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.verifier != nil
}

func (p *provider) Verify(ctx context.Context, raw string) (string, error) {
	p.mu.RLock()
	v := p.verifier
	p.mu.RUnlock()

	if v == nil {
		return "", ErrNotReady
	}

	tok, err := v.Verify(ctx, raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if p.cfg.SubjectClaim == "sub" {
		return tok.Subject, nil
	}

	var claims map[string]any
	if err := tok.Claims(&claims); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if s, ok := claims[p.cfg.SubjectClaim].(string); ok && s != "" {
		return s, nil
	}
	return tok.Subject, nil
}

func (p *provider) Middleware() func(http.Handler) http.Handler {
	if !p.cfg.Enabled {
		return func(next http.Handler) http.Handler { return next }
	}
	return Middleware(p, p.logger)
}

// Middleware requires a valid bearer token on every request except CORS
// preflights and stores the verified subject in the request context.
func Middleware(v Verifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			raw, ok := bearer(r)
			if !ok {
				w.Header().Set("WWW-Authenticate", "Bearer")
				handlers.RespondError(w, logger, http.StatusUnauthorized, ErrMissingToken)
				return
			}

			subject, err := v.Verify(r.Context(), raw)
			if err != nil {
				handlers.RespondError(w, logger, MapHTTPStatus(err), err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSubject(r.Context(), subject)))
		})
	}
}

// MapHTTPStatus maps auth errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotReady):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrMissingToken), errors.Is(err, ErrInvalidToken):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

func bearer(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

type subjectKey struct{}

// WithSubject returns a copy of ctx carrying the authenticated subject.
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectKey{}, subject)
}

// Subject returns the authenticated subject, or "" for anonymous requests.
func Subject(ctx context.Context) string {
	s, _ := ctx.Value(subjectKey{}).(string)
	return s
}
