// Package policy holds the authorization rules for mutations. The checks
// are pure functions of the actor and the resource.
package policy

import (
	"github.com/google/uuid"

	"blogql/internal/apperr"
	"blogql/internal/models"
)

// Actor is the authenticated identity behind a request.
type Actor struct {
	ID    uuid.UUID
	Email string
	Role  models.RoleName
}

// IsAdmin reports whether the actor holds the Admin role. A nil actor is
// never an admin.
func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == models.RoleAdmin
}

// Owned is any resource with a single owning user.
type Owned interface {
	OwnerID() uuid.UUID
}

// CanMutate reports whether actor may update or delete resource: the
// owner may, and so may any admin.
func CanMutate(resource Owned, actor *Actor) bool {
	if actor == nil {
		return false
	}
	return resource.OwnerID() == actor.ID || actor.IsAdmin()
}

// RequireActor fails with UNAUTHENTICATED when there is no actor.
func RequireActor(actor *Actor) error {
	if actor == nil {
		return apperr.Unauthenticated()
	}
	return nil
}

// Authorize applies CanMutate, distinguishing a missing actor
// (UNAUTHENTICATED) from an actor without rights (UNAUTHORIZED).
func Authorize(resource Owned, actor *Actor) error {
	if err := RequireActor(actor); err != nil {
		return err
	}
	if !CanMutate(resource, actor) {
		return apperr.Unauthorized("you are not allowed to modify this resource")
	}
	return nil
}

// RequireAdmin gates operations reserved for admins.
func RequireAdmin(actor *Actor) error {
	if err := RequireActor(actor); err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return apperr.Unauthorized("admin role required")
	}
	return nil
}

// RequireSelfOrAdmin gates account operations on userID.
func RequireSelfOrAdmin(userID uuid.UUID, actor *Actor) error {
	if err := RequireActor(actor); err != nil {
		return err
	}
	if actor.ID != userID && !actor.IsAdmin() {
		return apperr.Unauthorized("you are not allowed to modify this account")
	}
	return nil
}
