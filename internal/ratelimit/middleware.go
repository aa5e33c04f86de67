package ratelimit

import (
	"log/slog"
	"net/http"
	"time"

	"driverhub/pkg/requestcontext"
)

// Middleware enforces a per-caller request limit on the wrapped routes.
// The key is the authenticated user when present, the remote address
// otherwise. Limiter store failures fail open: a broken Redis must not
// take the registration pipeline down with it.
func Middleware(store Store, limit int, window time.Duration, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			key := r.RemoteAddr
			if userID := requestcontext.UserID(ctx); !userID.IsZero() {
				key = userID.String()
			}

			allowed, err := store.Allow(ctx, key, limit, window)
			if err != nil {
				logger.WarnContext(ctx, "rate limit check failed, allowing request",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", window.String())
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"success":false,"error":{"code":"rate_limited","message":"too many requests"}}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
