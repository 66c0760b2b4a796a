// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package users manages accounts: registration, login, profile changes and
// two-factor enrollment.
package users

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"blogql/internal/apperr"
	"blogql/internal/auth"
	"blogql/internal/cache"
	"blogql/internal/models"
	"blogql/internal/policy"
)

const (
	minPasswordLen = 6
	maxNameLen     = 100
)

// UserRepository persists accounts. Finders return nil, nil when nothing
// matches.
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
	Update(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	SetTOTPSecret(ctx context.Context, userID uuid.UUID, secret string) error
	EnableTOTP(ctx context.Context, userID uuid.UUID) error
}

// RoleRepository resolves roles.
type RoleRepository interface {
	FindByName(ctx context.Context, name models.RoleName) (*models.Role, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Role, error)
}

// Credentials checks a login attempt.
type Credentials interface {
	ValidateCredentials(ctx context.Context, email, password, otp string) (*auth.Identity, error)
}

// Service implements the account operations.
type Service struct {
	users  UserRepository
	roles  RoleRepository
	hasher auth.Hasher
	creds  Credentials
	tokens *auth.TokenIssuer
	cache  cache.Store
	issuer string
}

// New creates a Service. issuer names the account in authenticator apps.
// store caches the actor loaded for every authenticated request; nil
// disables caching.
func New(users UserRepository, roles RoleRepository, hasher auth.Hasher,
	creds Credentials, tokens *auth.TokenIssuer, store cache.Store, issuer string) *Service {
	return &Service{
		users:  users,
		roles:  roles,
		hasher: hasher,
		creds:  creds,
		tokens: tokens,
		cache:  store,
		issuer: issuer,
	}
}

// RegisterInput is the payload of Register.
type RegisterInput struct {
	Email    string
	Password string
	Name     *string
}

// ProfilePatch carries the optional fields of UpdateProfile.
type ProfilePatch struct {
	Email    *string
	Password *string
	Name     *string
}

// LoginResult is returned by a successful Login.
type LoginResult struct {
	Token string
	User  *models.User
}

// Register creates an account with the default User role.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email, err := validateEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}
	name, err := validateName(in.Name)
	if err != nil {
		return nil, err
	}

	role, err := s.roles.FindByName(ctx, models.RoleUser)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, apperr.NotFound("role", models.RoleUser)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		RoleID:       role.ID,
		Role:         role.Name,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	slog.Info("user registered", "user_id", u.ID)
	return u, nil
}

// Login validates credentials and issues a bearer token.
func (s *Service) Login(ctx context.Context, email, password, otp string) (*LoginResult, error) {
	id, err := s.creds.ValidateCredentials(ctx, email, password, otp)
	if err != nil {
		return nil, err
	}
	u, err := s.Get(ctx, id.ID)
	if err != nil {
		return nil, err
	}
	token, err := s.tokens.Issue(*id)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: u}, nil
}

// Get returns a user by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.NotFound("user", id)
	}
	return u, nil
}

// Role returns a role by ID.
func (s *Service) Role(ctx context.Context, id uuid.UUID) (*models.Role, error) {
	r, err := s.roles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, apperr.NotFound("role", id)
	}
	return r, nil
}

// ActorFor loads the actor behind a verified token. A deleted account has
// no actor.
func (s *Service) ActorFor(ctx context.Context, id uuid.UUID) (*policy.Actor, error) {
	if s.cache != nil {
		if a, ok := cache.GetJSON[policy.Actor](ctx, s.cache, cache.UserKey(id)); ok {
			return &a, nil
		}
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil || u == nil {
		return nil, err
	}
	a := &policy.Actor{ID: u.ID, Email: u.Email, Role: u.Role}
	if s.cache != nil {
		cache.SetJSON(ctx, s.cache, cache.UserKey(id), a, cache.UserTTL)
	}
	return a, nil
}

func (s *Service) forget(ctx context.Context, id uuid.UUID) {
	if s.cache != nil {
		cache.Invalidate(ctx, s.cache, cache.UserKey(id))
	}
}

// UpdateProfile changes a user's email, password or name. Users may edit
// themselves; admins may edit anyone.
func (s *Service) UpdateProfile(ctx context.Context, actor *policy.Actor, id uuid.UUID, patch ProfilePatch) (*models.User, error) {
	if err := policy.RequireSelfOrAdmin(id, actor); err != nil {
		return nil, err
	}
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Email != nil {
		email, err := validateEmail(*patch.Email)
		if err != nil {
			return nil, err
		}
		u.Email = email
	}
	if patch.Password != nil {
		if err := validatePassword(*patch.Password); err != nil {
			return nil, err
		}
		hash, err := s.hasher.Hash(*patch.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = hash
	}
	if patch.Name != nil {
		name, err := validateName(patch.Name)
		if err != nil {
			return nil, err
		}
		u.Name = name
	}

	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	s.forget(ctx, u.ID)

	slog.Info("user updated", "user_id", u.ID, "actor_id", actor.ID)
	return u, nil
}

// Delete removes an account together with its posts and comments.
func (s *Service) Delete(ctx context.Context, actor *policy.Actor, id uuid.UUID) (*models.User, error) {
	if err := policy.RequireSelfOrAdmin(id, actor); err != nil {
		return nil, err
	}
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return nil, err
	}
	s.forget(ctx, id)

	slog.Info("user deleted", "user_id", id, "actor_id", actor.ID)
	return u, nil
}

// SetupTwoFactor stores a fresh TOTP secret for actor and returns the
// enrollment data. Two-factor stays off until EnableTwoFactor succeeds.
// When two-factor is already on, currentCode must be valid for the
// existing secret; a bearer token alone cannot replace or disable it.
func (s *Service) SetupTwoFactor(ctx context.Context, actor *policy.Actor, currentCode string) (*auth.TOTPEnrollment, error) {
	if err := policy.RequireActor(actor); err != nil {
		return nil, err
	}
	u, err := s.Get(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if u.RequiresTOTP() && !auth.ValidateTOTP(strings.TrimSpace(currentCode), *u.TOTPSecret) {
		slog.Warn("two-factor reset refused", "user_id", u.ID)
		return nil, apperr.Unauthorized("a valid code from the current authenticator is required")
	}

	enrollment, err := auth.GenerateTOTP(s.issuer, actor.Email)
	if err != nil {
		return nil, err
	}
	if err := s.users.SetTOTPSecret(ctx, actor.ID, enrollment.Secret); err != nil {
		return nil, err
	}
	return enrollment, nil
}

// EnableTwoFactor turns on two-factor login after code proves the user
// holds the secret from SetupTwoFactor.
func (s *Service) EnableTwoFactor(ctx context.Context, actor *policy.Actor, code string) (*models.User, error) {
	if err := policy.RequireActor(actor); err != nil {
		return nil, err
	}
	u, err := s.Get(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if u.TOTPSecret == nil || *u.TOTPSecret == "" {
		return nil, apperr.Validation("two-factor setup has not been started")
	}
	if !auth.ValidateTOTP(strings.TrimSpace(code), *u.TOTPSecret) {
		return nil, apperr.Validation("invalid two-factor code")
	}
	if err := s.users.EnableTOTP(ctx, u.ID); err != nil {
		return nil, err
	}
	u.TOTPEnabled = true

	slog.Info("two-factor enabled", "user_id", u.ID)
	return u, nil
}

func validateEmail(v string) (string, error) {
	v = auth.NormalizeEmail(v)
	if v == "" {
		return "", apperr.Validation("email is required")
	}
	addr, err := mail.ParseAddress(v)
	if err != nil || addr.Address != v {
		return "", apperr.Validation("email is not valid")
	}
	return v, nil
}

func validatePassword(v string) error {
	if utf8.RuneCountInString(v) < minPasswordLen {
		return apperr.Validation("password must be at least %d characters", minPasswordLen)
	}
	return nil
}

// validateName trims an optional display name. A blank name clears it.
func validateName(v *string) (*string, error) {
	if v == nil {
		return nil, nil
	}
	name := strings.TrimSpace(*v)
	if name == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return nil, apperr.Validation("name must be at most %d characters", maxNameLen)
	}
	return &name, nil
}
