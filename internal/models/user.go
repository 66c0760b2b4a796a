// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import (
	"time"

	"github.com/google/uuid"
)

// RoleName is the unique, human-readable name of a role. Roles are an open
// set; RoleAdmin and RoleUser are seeded at startup.
type RoleName string

const (
	RoleAdmin RoleName = "Admin"
	RoleUser  RoleName = "User"
)

// CanonicalRoles lists the roles every deployment must have.
var CanonicalRoles = []RoleName{RoleAdmin, RoleUser}

// Role is a permission level referenced by users.
type Role struct {
	ID        uuid.UUID `json:"id"`
	Name      RoleName  `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// User represents a blog account. Role is populated from the roles table
// by store queries.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize the hash
	Name         *string   `json:"name,omitempty"`
	RoleID       uuid.UUID `json:"role_id"`
	Role         RoleName  `json:"role"`
	TOTPSecret   *string   `json:"-"` // Nullable; set during 2FA setup
	TOTPEnabled  bool      `json:"totp_enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin returns true if the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// RequiresTOTP returns true if logins for this user need a second factor.
func (u *User) RequiresTOTP() bool {
	return u.TOTPEnabled && u.TOTPSecret != nil
}
