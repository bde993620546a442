package todos

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/examplanner/examplanner/internal/platform/httpx"
	"github.com/examplanner/examplanner/internal/shared"
)

// Handler manages todo endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers todo routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.createTodo)
	r.Post("/bulk", h.createTodos)
	r.Get("/", h.listTodos)
	r.Put("/update/{id}", h.updateTodo)
	r.Delete("/delete/{id}", h.deleteTodo)
}

type todoRequest struct {
	SubjectID   string `json:"subject"`
	Task        string `json:"task" validate:"required"`
	ScheduledIn string `json:"scheduledIn" validate:"required"`
	Date        string `json:"date" validate:"required"`
	Status      string `json:"status"`
}

type todoUpdateRequest struct {
	SubjectID   *string `json:"subject"`
	Task        *string `json:"task"`
	ScheduledIn *string `json:"scheduledIn"`
	Date        *string `json:"date"`
	Status      *string `json:"status"`
}

type todoView struct {
	ID          string `json:"id"`
	OwnerID     string `json:"user"`
	SubjectID   string `json:"subject,omitempty"`
	Task        string `json:"task"`
	ScheduledIn Slot   `json:"scheduledIn"`
	Date        string `json:"date"`
	Status      Status `json:"status"`
}

func viewOf(t *Todo) todoView {
	return todoView{
		ID:          t.ID,
		OwnerID:     t.OwnerID,
		SubjectID:   t.SubjectID,
		Task:        t.Task,
		ScheduledIn: t.ScheduledIn,
		Date:        t.Date,
		Status:      t.Status,
	}
}

func toInput(req todoRequest) CreateInput {
	return CreateInput{
		SubjectID:   req.SubjectID,
		Task:        req.Task,
		ScheduledIn: req.ScheduledIn,
		Date:        req.Date,
		Status:      req.Status,
	}
}

func (h *Handler) createTodo(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	var req todoRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "task, scheduledIn and date are required")
		return
	}
	todo, err := h.service.Create(r.Context(), p.Actor(), toInput(req))
	if err != nil {
		h.logger.Error("create todo failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"message": "Task added successfully",
		"todo":    viewOf(todo),
	})
}

func (h *Handler) createTodos(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	var reqs []todoRequest
	if err := httpx.DecodeJSON(r, &reqs); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	inputs := make([]CreateInput, 0, len(reqs))
	for _, req := range reqs {
		if err := h.validator.Struct(req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "task, scheduledIn and date are required for every item")
			return
		}
		inputs = append(inputs, toInput(req))
	}
	items, err := h.service.CreateBatch(r.Context(), p.Actor(), inputs)
	if err != nil {
		h.logger.Error("bulk create todos failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	views := make([]todoView, len(items))
	for i := range items {
		views[i] = viewOf(&items[i])
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"message": "Tasks added successfully",
		"todos":   views,
	})
}

func (h *Handler) listTodos(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	list, err := h.service.List(r.Context(), p.Actor())
	if err != nil {
		h.logger.Error("list todos failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	views := make([]todoView, len(list))
	for i := range list {
		views[i] = viewOf(&list[i])
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message": "Tasks fetched successfully",
		"todos":   views,
	})
}

func (h *Handler) updateTodo(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	var req todoUpdateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	todo, err := h.service.Update(r.Context(), p.Actor(), chi.URLParam(r, "id"), UpdateInput{
		SubjectID:   req.SubjectID,
		Task:        req.Task,
		ScheduledIn: req.ScheduledIn,
		Date:        req.Date,
		Status:      req.Status,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message":     "Task updated successfully",
		"updatedTodo": viewOf(todo),
	})
}

func (h *Handler) deleteTodo(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	if err := h.service.Delete(r.Context(), p.Actor(), chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"message": "Task deleted successfully"})
}
