package auth

import (
	"fmt"
	"net/http"
	"strings"

	"log/slog"

	"github.com/examplanner/examplanner/internal/platform/httpx"
	"github.com/examplanner/examplanner/internal/rbac"
	"github.com/examplanner/examplanner/internal/shared"
)

// CookieName is the session token cookie.
const CookieName = "token"

// TokenFromRequest extracts the raw session token, preferring the cookie
// and falling back to a bearer authorization header.
func TokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// Middleware resolves the session token into a principal and attaches it
// to the request context. Requests without a valid token never reach the
// wrapped handler.
func Middleware(service *Service, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := TokenFromRequest(r)
			if raw == "" {
				httpx.RespondError(w, fmt.Errorf("%w: no token found", httpx.ErrUnauthorized))
				return
			}
			principal, err := service.Resolve(r.Context(), raw)
			if err != nil {
				httpx.RespondError(w, err)
				return
			}
			ctx := shared.ContextWithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CurrentActor adapts the principal context for the rbac middleware.
func CurrentActor(r *http.Request) (rbac.Actor, bool) {
	p := shared.PrincipalFromContext(r.Context())
	if p == nil {
		return rbac.Actor{}, false
	}
	return p.Actor(), true
}
