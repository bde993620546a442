package rbac

import (
	"net/http"

	"log/slog"
)

// Middleware wires role checks for HTTP handlers. Current extracts the
// calling actor placed in the request context by the auth middleware.
type Middleware struct {
	Logger  *slog.Logger
	Current func(r *http.Request) (Actor, bool)
}

// Require ensures the current actor holds one of the listed roles.
func (m Middleware) Require(roles ...Role) func(http.Handler) http.Handler {
	allowed := make(map[Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(allowed) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			actor, ok := m.Current(r)
			if !ok {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			if _, ok := allowed[actor.Role]; ok {
				next.ServeHTTP(w, r)
				return
			}
			if m.Logger != nil {
				m.Logger.Warn("role check failed", slog.String("actor", actor.ID), slog.String("role", actor.Role.String()))
			}
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		})
	}
}

// RequirePrivileged ensures the current actor is an admin or superadmin.
func (m Middleware) RequirePrivileged() func(http.Handler) http.Handler {
	return m.Require(RoleAdmin, RoleSuperAdmin)
}
