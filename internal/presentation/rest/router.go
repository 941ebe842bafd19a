package rest

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/acadrisk/acadrisk/pkg/auth"
)

// RouteRegistrar registers a group of endpoints.
type RouteRegistrar interface {
	RegisterRoutes(mux *http.ServeMux)
}

// RouterConfig holds the cross-cutting HTTP settings.
type RouterConfig struct {
	// Metrics serves /metrics when set.
	Metrics http.Handler
	// JWT enables bearer authentication when set.
	JWT            *auth.JWTService
	Limiter        *RateLimiter
	CORSOrigins    []string
	RequestTimeout time.Duration
}

// publicPaths bypass authentication.
var publicPaths = []string{"/health", "/healthz", "/readyz", "/metrics"}

// NewRouter builds the HTTP handler for the service.
func NewRouter(cfg RouterConfig, logger *slog.Logger, groups ...RouteRegistrar) http.Handler {
	mux := http.NewServeMux()
	for _, g := range groups {
		g.RegisterRoutes(mux)
	}
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics)
	}

	mws := []Middleware{
		LoggingMiddleware(logger),
		CORSMiddleware(cfg.CORSOrigins),
	}
	if cfg.Limiter != nil {
		mws = append(mws, cfg.Limiter.Middleware)
	}
	if cfg.JWT != nil {
		mws = append(mws, auth.HTTPMiddleware(cfg.JWT, publicPaths))
	}
	mws = append(mws, TimeoutMiddleware(cfg.RequestTimeout))

	return Chain(mux, mws...)
}
