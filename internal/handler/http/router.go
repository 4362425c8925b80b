package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/LibraryGo/internal/config"
	"github.com/utafrali/LibraryGo/pkg/health"
	"github.com/utafrali/LibraryGo/pkg/middleware"
)

// Routes holds the handlers mounted by NewRouter.
type Routes struct {
	GraphQL http.Handler
	// Subscriptions is optional; when nil /subscriptions is not mounted.
	Subscriptions http.Handler
	Health        *health.Handler
}

// Options tunes the cross-cutting middleware.
type Options struct {
	RateLimitRPS      float64
	RateLimitBurst    int
	PprofAllowedCIDRs []string
	CORS              middleware.CORSConfig
}

// OptionsFromConfig derives router options from the service configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.CORSAllowedOrigins
	cors.Environment = cfg.Environment

	return Options{
		RateLimitRPS:      cfg.RateLimitRPS,
		RateLimitBurst:    cfg.RateLimitBurst,
		PprofAllowedCIDRs: cfg.PprofAllowedCIDRs,
		CORS:              cors,
	}
}

// NewRouter creates a chi router with all library service routes registered.
// The rate limiter's cleanup goroutine stops when ctx is done.
func NewRouter(ctx context.Context, routes Routes, opts Options, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Tracing(config.ServiceName))
	r.Use(middleware.PrometheusMetrics("library"))
	r.Use(middleware.CORS(opts.CORS))

	// Health check endpoints
	r.Get("/health/live", routes.Health.LivenessHandler())
	r.Get("/health/ready", routes.Health.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	middleware.RegisterPprof(r, opts.PprofAllowedCIDRs, logger)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(ctx, opts.RateLimitRPS, opts.RateLimitBurst, logger))
		r.Method(http.MethodGet, "/graphql", routes.GraphQL)
		r.Method(http.MethodPost, "/graphql", routes.GraphQL)
	})

	if routes.Subscriptions != nil {
		r.Method(http.MethodGet, "/subscriptions", routes.Subscriptions)
	}

	return r
}
