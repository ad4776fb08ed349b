// Package server provides the HTTP router and API surface for browsefs.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ebogdum/browsefs/auth"
	"github.com/ebogdum/browsefs/browser"
	"github.com/ebogdum/browsefs/config"
	"github.com/ebogdum/browsefs/connectors"
	"github.com/ebogdum/browsefs/metrics"
	"github.com/ebogdum/browsefs/server/handlers"
	authMiddleware "github.com/ebogdum/browsefs/server/middleware"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	resolver *browser.Resolver,
	registry *connectors.Registry,
	authenticator auth.Authenticator,
	serverConfig *config.ServerConfig,
	logger *zap.Logger,
) chi.Router {
	// Initialize metrics
	metrics.RegisterMetrics()

	r := chi.NewRouter()

	// Basic middleware
	r.Use(authMiddleware.V1RequestIDMiddleware())
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(authMiddleware.V1SecurityHeaders())

	if serverConfig.RateLimit > 0 {
		limiter := rate.NewLimiter(rate.Limit(serverConfig.RateLimit), serverConfig.RateLimitBurst)
		r.Use(authMiddleware.V1RateLimitMiddleware(limiter, logger))
	}

	// Custom logging and metrics middleware
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			duration := time.Since(start)

			metrics.HTTPRequestsTotal.WithLabelValues(
				r.Method,
				r.URL.Path,
				http.StatusText(ww.Status()),
			).Inc()

			metrics.HTTPRequestDuration.WithLabelValues(
				r.Method,
				r.URL.Path,
			).Observe(duration.Seconds())

			logger.Info("HTTP request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", duration))
		})
	})

	// Health check, outside authentication
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ok"}`)); err != nil {
			logger.Error("Failed to write health response", zap.Error(err))
		}
	})

	// API routes
	r.Route("/v1", func(r chi.Router) {
		if authenticator != nil {
			r.Use(authMiddleware.V1AuthMiddleware(authenticator, logger))
		}

		r.Get("/resolve", handlers.V1Resolve(resolver, registry, serverConfig.WalkTimeout, logger))
		r.Get("/list", handlers.V1List(resolver, registry, serverConfig.WalkTimeout, logger))
		r.Get("/preview", handlers.V1Preview(resolver, registry, serverConfig.WalkTimeout, logger))
	})

	return r
}
