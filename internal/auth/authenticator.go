// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"blogql/internal/apperr"
	"blogql/internal/cache"
	"blogql/internal/metrics"
	"blogql/internal/models"
)

// Throttling parameters for ValidateCredentials.
const (
	MaxAttempts   = 5
	AttemptWindow = 5 * time.Minute
	LockDuration  = 30 * time.Minute
)

// Identity is the result of a successful login.
type Identity struct {
	ID    uuid.UUID
	Email string
}

// UserLookup finds accounts by email.
type UserLookup interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// Authenticator validates credentials and throttles repeated failures per
// email. Attempt and lock state lives in the cache store.
type Authenticator struct {
	users  UserLookup
	cache  cache.Store
	hasher Hasher

	// dummyHash is compared against when the email is unknown, so a miss
	// costs the same as a wrong password.
	dummyHash string
}

// NewAuthenticator creates an Authenticator.
func NewAuthenticator(users UserLookup, store cache.Store, hasher Hasher) (*Authenticator, error) {
	dummy, err := hasher.Hash("blogql-timing-equaliser")
	if err != nil {
		return nil, fmt.Errorf("dummy hash: %w", err)
	}
	return &Authenticator{users: users, cache: store, hasher: hasher, dummyHash: dummy}, nil
}

// NormalizeEmail trims and lower-cases an address for lookups and keys.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func attemptsKey(email string) string { return "loginAttempts:" + email }
func lockKey(email string) string     { return "loginLock:" + email }

// ValidateCredentials checks email, password and, when the account has
// 2FA enabled, the TOTP code. After MaxAttempts failures inside the rolling
// AttemptWindow the next attempt locks the email for LockDuration. Lock
// and failure errors never reveal whether the email exists.
func (a *Authenticator) ValidateCredentials(ctx context.Context, email, password, otp string) (*Identity, error) {
	email = NormalizeEmail(email)

	if a.locked(ctx, email) {
		metrics.Logins.WithLabelValues("locked").Inc()
		return nil, apperr.New(apperr.KindAccountLocked, "account temporarily locked, try again later")
	}

	if a.attempts(ctx, email) >= MaxAttempts {
		if err := a.cache.Set(ctx, lockKey(email), []byte("1"), LockDuration); err != nil {
			slog.Warn("login lock write failed", "email", email, "error", err)
		}
		metrics.Logins.WithLabelValues("locked").Inc()
		slog.Warn("login locked after repeated failures", "email", email)
		return nil, apperr.New(apperr.KindAccountLocked, "account temporarily locked, try again later")
	}

	user, err := a.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("login lookup: %w", err)
	}

	if user == nil {
		a.hasher.Verify(password, a.dummyHash)
		return nil, a.fail(ctx, email)
	}
	if !a.hasher.Verify(password, user.PasswordHash) {
		return nil, a.fail(ctx, email)
	}
	if user.RequiresTOTP() && (otp == "" || !ValidateTOTP(otp, *user.TOTPSecret)) {
		return nil, a.fail(ctx, email)
	}

	if err := a.cache.Delete(ctx, attemptsKey(email)); err != nil {
		slog.Warn("login attempt reset failed", "email", email, "error", err)
	}
	metrics.Logins.WithLabelValues("success").Inc()
	slog.Info("login succeeded", "user_id", user.ID)
	return &Identity{ID: user.ID, Email: user.Email}, nil
}

// locked reports whether the lock flag is set. Cache errors count as
// unlocked.
func (a *Authenticator) locked(ctx context.Context, email string) bool {
	_, ok, err := a.cache.Get(ctx, lockKey(email))
	if err != nil {
		slog.Warn("login lock read failed", "email", email, "error", err)
		return false
	}
	return ok
}

// attempts returns the failure count. Cache errors and unreadable values
// count as zero.
func (a *Authenticator) attempts(ctx context.Context, email string) int {
	raw, ok, err := a.cache.Get(ctx, attemptsKey(email))
	if err != nil {
		slog.Warn("login attempts read failed", "email", email, "error", err)
		return 0
	}
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(string(raw))
	if err != nil {
		return 0
	}
	return n
}

// fail records a failed attempt and returns the generic login error.
func (a *Authenticator) fail(ctx context.Context, email string) error {
	n, err := a.cache.Incr(ctx, attemptsKey(email), AttemptWindow)
	if err != nil {
		slog.Warn("login attempt write failed", "email", email, "error", err)
	}
	metrics.Logins.WithLabelValues("failed").Inc()
	slog.Info("login failed", "email", email, "attempts", n)
	return apperr.New(apperr.KindLoginFailed, "invalid email or password")
}
