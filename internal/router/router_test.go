// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router tests verify the HTTP routing configuration, middleware
// chains, and the health endpoint.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"blogql/internal/auth"
	"blogql/internal/middleware"
	"blogql/internal/models"
	"blogql/internal/policy"
)

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

type verifier struct{ id uuid.UUID }

func (v verifier) Verify(token string) (*auth.Identity, error) {
	if token != "valid" {
		return nil, errors.New("invalid")
	}
	return &auth.Identity{ID: v.id}, nil
}

type actors struct{}

func (actors) ActorFor(_ context.Context, id uuid.UUID) (*policy.Actor, error) {
	return &policy.Actor{ID: id, Role: models.RoleUser}, nil
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name   string
		db     Pinger
		status int
		want   string
	}{
		{name: "no database", status: http.StatusOK, want: "ok"},
		{name: "database up", db: pinger{}, status: http.StatusOK, want: "ok"},
		{name: "database down", db: pinger{err: errors.New("down")}, status: http.StatusServiceUnavailable, want: "unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			healthHandler(tt.db)(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			if w.Code != tt.status {
				t.Errorf("status: got %d, want %d", w.Code, tt.status)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("content-type: got %q, want %q", ct, "application/json")
			}
			var body map[string]string
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body["status"] != tt.want {
				t.Errorf("status field: got %q, want %q", body["status"], tt.want)
			}
		})
	}
}

func TestRoutes(t *testing.T) {
	id := uuid.New()
	var seen *policy.Actor
	graphQL := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = middleware.ActorFromCtx(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("metrics"))
	})

	limiter := middleware.NewRateLimiter(2, time.Minute)
	defer limiter.Stop()

	r := New(Deps{
		GraphQL:     graphQL,
		Metrics:     metrics,
		Tokens:      verifier{id: id},
		Actors:      actors{},
		Limiter:     limiter,
		CORSOrigins: []string{"https://blog.example.com"},
		DB:          pinger{},
	})

	t.Run("graphql loads the actor", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/graphql", nil)
		req.Header.Set("Authorization", "Bearer valid")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status: got %d, want 200", w.Code)
		}
		if seen == nil || seen.ID != id {
			t.Errorf("actor: got %+v, want id %s", seen, id)
		}
		if w.Header().Get("X-Content-Type-Options") != "nosniff" {
			t.Error("security headers missing")
		}
	})

	t.Run("graphql is rate limited", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/graphql", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("second request: got %d, want 200", w.Code)
		}

		w = httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/graphql", nil))
		if w.Code != http.StatusTooManyRequests {
			t.Errorf("third request: got %d, want 429", w.Code)
		}
	})

	t.Run("metrics", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		if w.Body.String() != "metrics" {
			t.Errorf("body: got %q, want %q", w.Body.String(), "metrics")
		}
	})

	t.Run("health is not rate limited", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
			if w.Code != http.StatusOK {
				t.Fatalf("request %d: got %d, want 200", i+1, w.Code)
			}
		}
	})
}
