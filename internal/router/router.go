// Package router sets up the HTTP routes and middleware chain of the
// blogql server: the GraphQL endpoint, health and metrics.
package router

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"blogql/internal/middleware"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps are the handlers and collaborators the router wires together.
type Deps struct {
	// GraphQL serves /graphql, including websocket upgrades.
	GraphQL http.Handler
	// Metrics serves /metrics.
	Metrics http.Handler
	Tokens  middleware.TokenVerifier
	Actors  middleware.ActorLoader
	// Limiter rate-limits /graphql per client IP. Nil disables limiting.
	Limiter     *middleware.RateLimiter
	CORSOrigins []string
	// DB is checked by /health.
	DB Pinger
}

// New creates and returns the configured Chi router with all middleware
// and routes wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	r.Get("/health", healthHandler(d.DB))
	r.Handle("/metrics", d.Metrics)

	r.Group(func(r chi.Router) {
		r.Use(middleware.CORS(d.CORSOrigins))
		if d.Limiter != nil {
			r.Use(d.Limiter.Middleware)
		}
		r.Use(middleware.LoadActor(d.Tokens, d.Actors))

		r.Handle("/graphql", d.GraphQL)
	})

	return r
}

// healthHandler reports ok, or 503 when the database does not answer.
func healthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				slog.Warn("health check failed", "error", err)
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status":"unavailable"}`))
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}
}
