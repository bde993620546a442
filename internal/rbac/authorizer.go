package rbac

import (
	"fmt"

	"github.com/examplanner/examplanner/internal/platform/httpx"
)

// Actor is the minimal identity the policy engine needs: who is calling
// and at what privilege level.
type Actor struct {
	ID   string
	Role Role
}

// EffectiveTarget resolves the account id an operation acts upon. An
// unprivileged caller always acts on itself, regardless of any id supplied
// in the request. A privileged caller acts on the explicit id, defaulting
// to itself when none is given.
func EffectiveTarget(actor Actor, requestedID string) string {
	if actor.Role.IsPrivileged() && requestedID != "" {
		return requestedID
	}
	return actor.ID
}

// CanModifyAccount checks whether the actor may update the target account's
// fields. Only a superadmin may touch a superadmin account.
func CanModifyAccount(actor Actor, targetRole Role) error {
	if targetRole == RoleSuperAdmin && actor.Role != RoleSuperAdmin {
		return fmt.Errorf("%w: cannot modify a superadmin account", httpx.ErrForbidden)
	}
	return nil
}

// CanDeleteAccount checks whether the actor may delete the target account.
// Superadmin accounts are undeletable, even by another superadmin.
func CanDeleteAccount(actor Actor, targetID string, targetRole Role) error {
	if targetRole == RoleSuperAdmin {
		return fmt.Errorf("%w: superadmin cannot be deleted", httpx.ErrForbidden)
	}
	if !actor.Role.IsPrivileged() && targetID != actor.ID {
		return fmt.Errorf("%w: not authorized to delete this account", httpx.ErrForbidden)
	}
	return nil
}

// CanCreateAdmin checks whether the actor may register an admin account.
func CanCreateAdmin(actor Actor) error {
	if actor.Role != RoleSuperAdmin {
		return fmt.Errorf("%w: only a superadmin can create admins", httpx.ErrForbidden)
	}
	return nil
}

// CanChangeRole checks whether the actor may change the target account's
// role. There is no path to the superadmin role, and a superadmin's role is
// fixed.
func CanChangeRole(actor Actor, targetRole, newRole Role) error {
	if actor.Role != RoleSuperAdmin {
		return fmt.Errorf("%w: only a superadmin can change roles", httpx.ErrForbidden)
	}
	if targetRole == RoleSuperAdmin {
		return fmt.Errorf("%w: cannot change the role of a superadmin", httpx.ErrForbidden)
	}
	if newRole == RoleSuperAdmin {
		return fmt.Errorf("%w: cannot promote to superadmin", httpx.ErrForbidden)
	}
	return nil
}

// CanTogglePause checks whether the actor may pause or unpause accounts.
func CanTogglePause(actor Actor) error {
	if !actor.Role.IsPrivileged() {
		return fmt.Errorf("%w: insufficient permissions", httpx.ErrForbidden)
	}
	return nil
}

// CanImpersonate checks whether the actor may log in as another account.
func CanImpersonate(actor Actor) error {
	if !actor.Role.IsPrivileged() {
		return fmt.Errorf("%w: not authorized to impersonate", httpx.ErrForbidden)
	}
	return nil
}

// CanAccessResource enforces the ownership gate for subjects and todos.
// Privileged callers bypass ownership entirely.
func CanAccessResource(actor Actor, ownerID string) error {
	if actor.Role.IsPrivileged() {
		return nil
	}
	if ownerID != actor.ID {
		return fmt.Errorf("%w: not the owner of this resource", httpx.ErrForbidden)
	}
	return nil
}
