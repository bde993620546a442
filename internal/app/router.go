package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/examplanner/examplanner/internal/auth"
	"github.com/examplanner/examplanner/internal/rbac"
	"github.com/examplanner/examplanner/internal/subjects"
	"github.com/examplanner/examplanner/internal/todos"
	"github.com/examplanner/examplanner/internal/users"
	"github.com/examplanner/examplanner/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	AuthHandler     *auth.Handler
	UsersHandler    *users.Handler
	SubjectsHandler *subjects.Handler
	TodosHandler    *todos.Handler
	JobHandler      *jobs.Handler
	AuthService     *auth.Service
	RBACMiddleware  rbac.Middleware
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	authenticate := auth.Middleware(params.AuthService, params.Logger)

	r.Route("/api/v0", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			params.AuthHandler.MountRoutes(r)
			if params.UsersHandler != nil {
				r.Group(func(r chi.Router) {
					r.Use(authenticate)
					params.UsersHandler.MountRoutes(r)
				})
			}
		})
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			if params.SubjectsHandler != nil {
				r.Route("/subject", params.SubjectsHandler.MountRoutes)
			}
			if params.TodosHandler != nil {
				r.Route("/todo", params.TodosHandler.MountRoutes)
			}
		})
	})

	if params.JobHandler != nil {
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(params.RBACMiddleware.RequirePrivileged())
			r.Route("/jobs", params.JobHandler.MountRoutes)
		})
	}

	return r
}
