package auth

import (
	"net/http"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/examplanner/examplanner/internal/platform/httpx"
	"github.com/examplanner/examplanner/internal/rbac"
	"github.com/examplanner/examplanner/internal/shared"
	"github.com/examplanner/examplanner/internal/users"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger       *slog.Logger
	service      *Service
	rbac         rbac.Middleware
	validator    *validator.Validate
	secureCookie bool
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbacMW rbac.Middleware, secureCookie bool) *Handler {
	return &Handler{
		logger:       logger,
		service:      service,
		rbac:         rbacMW,
		validator:    validator.New(),
		secureCookie: secureCookie,
	}
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/register", h.handleRegister)
	r.Post("/login", h.handleLogin)
	r.Post("/google", h.handleGoogleLogin)
	r.Post("/logout", h.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(Middleware(h.service, h.logger))
		r.Group(func(r chi.Router) {
			r.Use(h.rbac.Require(rbac.RoleSuperAdmin))
			r.Post("/admin/register", h.handleRegisterAdmin)
		})
		r.Group(func(r chi.Router) {
			r.Use(h.rbac.RequirePrivileged())
			r.Post("/impersonate", h.handleImpersonate)
		})
	})
}

type registerForm struct {
	UserName string `json:"userName" validate:"required,min=3,max=30"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required"`
}

type loginForm struct {
	Email    string `json:"email"`
	UserName string `json:"userName"`
	Password string `json:"password" validate:"required"`
}

type googleForm struct {
	Token string `json:"token" validate:"required"`
}

type impersonateForm struct {
	Email    string `json:"email"`
	UserName string `json:"userName"`
}

type userView struct {
	ID       string `json:"id"`
	UserName string `json:"userName"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

func viewOf(u *users.User) userView {
	return userView{ID: u.ID, UserName: u.UserName, Email: u.Email, Name: u.Name, Role: u.Role.String()}
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, signed string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(h.service.Codec().TTL() / time.Second),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var form registerForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "please enter all data")
		return
	}
	user, signed, err := h.service.Register(r.Context(), RegisterInput(form))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.setSessionCookie(w, signed)
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"message": "User created successfully",
		"user":    viewOf(user),
		"token":   signed,
	})
}

func (h *Handler) handleRegisterAdmin(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	var form registerForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "please enter all data")
		return
	}
	user, signed, err := h.service.RegisterAdmin(r.Context(), p.Actor(), RegisterInput(form))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"message": "Admin created successfully",
		"user":    viewOf(user),
		"token":   signed,
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var form loginForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if (form.Email == "" && form.UserName == "") || form.Password == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "please enter email/username and password")
		return
	}
	login := form.Email
	if login == "" {
		login = form.UserName
	}
	user, signed, err := h.service.Authenticate(r.Context(), login, form.Password)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.setSessionCookie(w, signed)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message": "User logged in successfully",
		"user":    viewOf(user),
		"token":   signed,
	})
}

func (h *Handler) handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	var form googleForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "assertion token is required")
		return
	}
	user, signed, err := h.service.LoginWithAssertion(r.Context(), form.Token)
	if err != nil {
		h.logger.Warn("google login failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.setSessionCookie(w, signed)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message": "Google login successful",
		"user":    viewOf(user),
		"token":   signed,
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.clearSessionCookie(w)
	httpx.JSON(w, http.StatusOK, map[string]any{"message": "Logged out successfully"})
}

func (h *Handler) handleImpersonate(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	var form impersonateForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if form.Email == "" && form.UserName == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "please enter email or username of the user")
		return
	}
	login := form.Email
	if login == "" {
		login = form.UserName
	}
	target, signed, err := h.service.Impersonate(r.Context(), p.Actor(), login)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.setSessionCookie(w, signed)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message": "Logged in as " + target.UserName,
		"user":    viewOf(target),
		"token":   signed,
	})
}
