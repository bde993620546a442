package users

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/examplanner/examplanner/internal/platform/httpx"
	"github.com/examplanner/examplanner/internal/rbac"
	"github.com/examplanner/examplanner/internal/shared"
)

// Handler manages account lifecycle endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers account routes. The auth middleware has already
// resolved the principal for everything mounted here.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/me", h.getAccount)
	r.Put("/me", h.updateAccount)
	r.Delete("/me", h.deleteAccount)

	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequirePrivileged())
		r.Get("/all", h.listAccounts)
		r.Get("/admin/{id}", h.getAccount)
		r.Put("/admin/{id}", h.updateAccount)
		r.Delete("/admin/{id}", h.deleteAccount)
		r.Put("/pause/{id}", h.togglePause)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.RoleSuperAdmin))
		r.Put("/role/{id}", h.changeRole)
	})
}

// userView is the public shape of an account; the password hash never
// leaves the service.
type userView struct {
	ID       string `json:"id"`
	UserName string `json:"userName"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	IsPaused bool   `json:"isPaused"`
}

func viewOf(u *User) userView {
	return userView{
		ID:       u.ID,
		UserName: u.UserName,
		Email:    u.Email,
		Name:     u.Name,
		Role:     u.Role.String(),
		IsPaused: u.IsPaused,
	}
}

type updateRequest struct {
	UserName        *string `json:"userName"`
	Email           *string `json:"email"`
	Name            *string `json:"name"`
	Password        *string `json:"password"`
	CurrentPassword string  `json:"currentPassword"`
}

type changeRoleRequest struct {
	Role string `json:"role"`
}

func (h *Handler) getAccount(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	user, err := h.service.Get(r.Context(), p.Actor(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message": "User data retrieved successfully",
		"user":    viewOf(user),
	})
}

func (h *Handler) listAccounts(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	list, err := h.service.List(r.Context(), p.Actor())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	views := make([]userView, len(list))
	for i := range list {
		views[i] = viewOf(&list[i])
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message": "All users retrieved successfully",
		"users":   views,
	})
}

func (h *Handler) updateAccount(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	user, err := h.service.Update(r.Context(), p.Actor(), chi.URLParam(r, "id"), UpdateInput{
		UserName:        req.UserName,
		Email:           req.Email,
		Name:            req.Name,
		Password:        req.Password,
		CurrentPassword: req.CurrentPassword,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message": "User updated successfully",
		"user":    viewOf(user),
	})
}

func (h *Handler) deleteAccount(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	if err := h.service.Delete(r.Context(), p.Actor(), chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"message": "User deleted successfully"})
}

func (h *Handler) togglePause(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	user, err := h.service.TogglePause(r.Context(), p.Actor(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	state := "unpaused"
	if user.IsPaused {
		state = "paused"
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message": "User " + state + " successfully",
		"user":    viewOf(user),
	})
}

func (h *Handler) changeRole(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	var req changeRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	user, err := h.service.ChangeRole(r.Context(), p.Actor(), chi.URLParam(r, "id"), req.Role)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message": "User role updated successfully",
		"user":    viewOf(user),
	})
}
