// Package http assembles the chi router: public endpoints, the
// authenticated driver surface, and the admin verification surface.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	registrationhandler "driverhub/internal/registration/handler"
	verificationhandler "driverhub/internal/verification/handler"

	"driverhub/internal/platform/metrics"
	"driverhub/internal/platform/middleware"
	"driverhub/internal/ratelimit"
	dErrors "driverhub/pkg/domain-errors"
	"driverhub/pkg/platform/httputil"
)

// Deps collects everything the router mounts.
type Deps struct {
	Registration *registrationhandler.Handler
	Verification *verificationhandler.Handler

	JWTValidator middleware.JWTValidator
	AdminAPIKey  string

	RateLimitStore  ratelimit.Store
	RateLimit       int
	RateLimitWindow time.Duration

	RequestTimeout time.Duration
	Metrics        *metrics.Metrics
	Logger         *slog.Logger

	// Health reports readiness of downstream dependencies; nil means
	// always healthy.
	Health func() error
}

// New builds the service router.
func New(deps Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Timeout(deps.RequestTimeout))
	r.Use(middleware.Latency(deps.Metrics))

	r.Get("/healthz", healthHandler(deps.Health))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(deps.JWTValidator, deps.Logger))
		r.Use(ratelimit.Middleware(deps.RateLimitStore, deps.RateLimit, deps.RateLimitWindow, deps.Logger))
		deps.Registration.Register(r)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireAdmin(deps.AdminAPIKey, deps.Logger))
		deps.Verification.Register(r)
	})

	return r
}

func healthHandler(health func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if health != nil {
			if err := health(); err != nil {
				httputil.WriteError(w, dErrors.Wrap(dErrors.CodeUnavailable, "dependencies degraded", err))
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
