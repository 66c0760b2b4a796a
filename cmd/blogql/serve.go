package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"blogql/internal/auth"
	"blogql/internal/cache"
	"blogql/internal/config"
	"blogql/internal/content"
	"blogql/internal/database"
	"blogql/internal/graph"
	"blogql/internal/metrics"
	"blogql/internal/middleware"
	"blogql/internal/pubsub"
	"blogql/internal/router"
	"blogql/internal/store"
	"blogql/internal/users"
)

// auditRetention is how long cache invalidation history is kept.
const auditRetention = 30 * 24 * time.Hour

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the GraphQL HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			if err := serve(cmd.Context(), cfg); err != nil {
				slog.Error("server failed", "error", err)
				return err
			}
			return nil
		},
	}
}

func openCache(cfg *config.Config) (cache.Store, error) {
	switch cfg.CacheBackend {
	case "valkey":
		client, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
		if err != nil {
			return nil, err
		}
		return cache.NewValkeyStore(client), nil
	case "memory":
		mem, err := cache.NewMemoryStore(cache.DefaultMemoryBytes)
		if err != nil {
			return nil, err
		}
		return mem, nil
	}
	return nil, fmt.Errorf("unsupported cache backend %q (want valkey or memory)", cfg.CacheBackend)
}

// serve wires the application and blocks until ctx is cancelled, then
// drains in-flight requests.
func serve(ctx context.Context, cfg *config.Config) error {
	db, dialect, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	hasher := auth.NewBcryptHasher()

	// Seed a default admin in development so the API is usable right away.
	if cfg.IsDev() && cfg.SeedAdminEmail != "" {
		if err := database.SeedAdmin(ctx, db, dialect, hasher, cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
			slog.Warn("failed to seed admin", "error", err)
		}
	}

	cacheStore, err := openCache(cfg)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer cacheStore.Close()

	userStore := store.NewUserStore(db, dialect)
	authn, err := auth.NewAuthenticator(userStore, cacheStore, hasher)
	if err != nil {
		return err
	}
	tokens, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL)
	if err != nil {
		return err
	}

	auditLog := store.NewCacheLogStore(db, dialect)
	if n, err := auditLog.Prune(ctx, time.Now().Add(-auditRetention)); err != nil {
		slog.Warn("cache log prune failed", "error", err)
	} else if n > 0 {
		slog.Info("cache log pruned", "entries", n)
	}

	bus := pubsub.New(pubsub.DefaultBuffer)
	defer bus.Close()

	accounts := users.New(userStore, store.NewRoleStore(db, dialect), hasher, authn, tokens, cacheStore, cfg.JWTIssuer)
	posts := content.New(content.Deps{
		Posts:      store.NewPostStore(db, dialect),
		Comments:   store.NewCommentStore(db, dialect),
		Categories: store.NewCategoryStore(db, dialect),
		Cache:      cacheStore,
		Audit:      auditLog,
		Bus:        bus,
	}, content.Options{
		MaxPageSize:         cfg.MaxPageSize,
		CaseSensitiveSearch: cfg.SearchCaseSensitive,
	})

	schema, err := graph.NewSchema(graph.NewResolver(posts, accounts, bus))
	if err != nil {
		return fmt.Errorf("graphql schema: %w", err)
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimit > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimit, time.Minute)
		defer limiter.Stop()
		if err := limiter.TrustProxies(cfg.TrustedProxies); err != nil {
			return err
		}
	}

	r := router.New(router.Deps{
		GraphQL:     graph.NewHandler(schema, cfg.ExposeErrors()).HTTPHandler(),
		Metrics:     metrics.Handler(),
		Tokens:      tokens,
		Actors:      accounts,
		Limiter:     limiter,
		CORSOrigins: cfg.CORSOrigins,
		DB:          db,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	// Closing the bus ends open subscriptions.
	bus.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}
