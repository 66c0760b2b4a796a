// Package main is the entry point for the blogql server. It exposes three
// commands: serve runs the GraphQL API, migrate applies schema migrations,
// and seed creates the canonical roles and an optional admin account.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"blogql/internal/auth"
	"blogql/internal/config"
	"blogql/internal/database"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "blogql",
		Short:         "GraphQL blog backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), migrateCmd(), seedCmd())
	return root
}

// setup loads configuration and installs the default logger. Text output
// in development, JSON everywhere else.
func setup() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		return nil, err
	}

	level := cfg.LogLevel
	if level == "" && cfg.IsDev() {
		level = "debug"
	}
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	var handler slog.Handler
	if cfg.IsDev() {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"db", cfg.DBDriver,
		"cache", cfg.CacheBackend,
	)
	return cfg, nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// openDB connects to the configured database and brings the schema and
// roles up to date.
func openDB(ctx context.Context, cfg *config.Config) (*sql.DB, database.Dialect, error) {
	dialect, err := database.ParseDialect(cfg.DBDriver)
	if err != nil {
		return nil, "", err
	}

	db, err := database.Connect(dialect, cfg.DSN())
	if err != nil {
		return nil, "", fmt.Errorf("connect: %w", err)
	}
	if err := database.Migrate(db, dialect); err != nil {
		db.Close()
		return nil, "", fmt.Errorf("migrate: %w", err)
	}
	if err := database.SeedRoles(ctx, db, dialect); err != nil {
		db.Close()
		return nil, "", err
	}
	return db, dialect, nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and seed roles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			db, _, err := openDB(cmd.Context(), cfg)
			if err != nil {
				slog.Error("migration failed", "error", err)
				return err
			}
			defer db.Close()
			slog.Info("database is up to date")
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the canonical roles and an admin account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			if email == "" {
				email = cfg.SeedAdminEmail
			}
			if password == "" {
				password = cfg.SeedAdminPassword
			}

			db, dialect, err := openDB(cmd.Context(), cfg)
			if err != nil {
				slog.Error("seed failed", "error", err)
				return err
			}
			defer db.Close()

			if email == "" {
				slog.Info("no admin email configured, roles only")
				return nil
			}
			if err := database.SeedAdmin(cmd.Context(), db, dialect, auth.NewBcryptHasher(), email, password); err != nil {
				slog.Error("seed failed", "error", err)
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "admin-email", "", "admin email (defaults to SEED_ADMIN_EMAIL)")
	cmd.Flags().StringVar(&password, "admin-password", "", "admin password (defaults to SEED_ADMIN_PASSWORD)")
	return cmd
}
