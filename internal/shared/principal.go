// Package shared holds request-scoped types passed between packages.
package shared

import (
	"github.com/examplanner/examplanner/internal/rbac"
)

// Principal is the resolved identity attached to a request after token
// resolution. Role reflects the current account record, not the token
// claim, so a role change is visible on the next request.
type Principal struct {
	ID             string
	UserName       string
	Email          string
	Name           string
	Role           rbac.Role
	IsPaused       bool
	IsImpersonated bool
	ImpersonatedBy string
}

// Actor projects the principal into the policy engine's view.
func (p *Principal) Actor() rbac.Actor {
	return rbac.Actor{ID: p.ID, Role: p.Role}
}
