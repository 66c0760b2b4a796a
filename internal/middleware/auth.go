// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"blogql/internal/auth"
	"blogql/internal/policy"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// ActorKey is the context key for the authenticated actor.
	ActorKey contextKey = "actor"
)

// TokenVerifier checks a bearer token and returns its identity.
type TokenVerifier interface {
	Verify(token string) (*auth.Identity, error)
}

// ActorLoader resolves a verified identity to the current account state.
// It returns nil, nil when the account no longer exists.
type ActorLoader interface {
	ActorFor(ctx context.Context, id uuid.UUID) (*policy.Actor, error)
}

// LoadActor verifies the bearer token, if any, and stores the actor in the
// request context. Downstream handlers read it via ActorFromCtx(). A
// missing or invalid token leaves the request anonymous; resolvers decide
// whether that is an error.
func LoadActor(tokens TokenVerifier, actors ActorLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			id, err := tokens.Verify(token)
			if err != nil {
				slog.Debug("bearer token rejected", "error", err, "remote", r.RemoteAddr)
				next.ServeHTTP(w, r)
				return
			}

			actor, err := actors.ActorFor(r.Context(), id.ID)
			if err != nil {
				slog.Warn("actor lookup failed", "user_id", id.ID, "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if actor != nil {
				r = r.WithContext(WithActor(r.Context(), actor))
			}

			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken returns the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if scheme, token, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return ""
}

// WithActor returns a copy of ctx carrying actor.
func WithActor(ctx context.Context, actor *policy.Actor) context.Context {
	return context.WithValue(ctx, ActorKey, actor)
}

// ActorFromCtx extracts the actor from the request context.
// Returns nil if the request is anonymous.
func ActorFromCtx(ctx context.Context) *policy.Actor {
	actor, _ := ctx.Value(ActorKey).(*policy.Actor)
	return actor
}
