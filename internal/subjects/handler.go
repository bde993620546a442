package subjects

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/examplanner/examplanner/internal/platform/httpx"
	"github.com/examplanner/examplanner/internal/shared"
)

// Handler manages subject endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers subject routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.createSubject)
	r.Get("/", h.listSubjects)
	r.Get("/{id}", h.getSubject)
	r.Put("/update/{id}", h.updateSubject)
	r.Delete("/delete/{id}", h.deleteSubject)
}

type createRequest struct {
	Subject           string    `json:"subject" validate:"required"`
	Theory            bool      `json:"theory"`
	Revision          bool      `json:"revision"`
	PYQ               bool      `json:"pyq"`
	TestSeries        bool      `json:"testSeries"`
	IsCompleted       bool      `json:"isCompleted"`
	NoOfLectures      int       `json:"noOfLectures"`
	LecturesCompleted int       `json:"noOfLecturesCompleted"`
	SubjectStart      time.Time `json:"subjectStart" validate:"required"`
	SubjectEnd        time.Time `json:"subjectEnd" validate:"required"`
}

type updateRequest struct {
	Subject           *string    `json:"subject"`
	Theory            *bool      `json:"theory"`
	Revision          *bool      `json:"revision"`
	PYQ               *bool      `json:"pyq"`
	TestSeries        *bool      `json:"testSeries"`
	IsCompleted       *bool      `json:"isCompleted"`
	NoOfLectures      *int       `json:"noOfLectures"`
	LecturesCompleted *int       `json:"noOfLecturesCompleted"`
	SubjectStart      *time.Time `json:"subjectStart"`
	SubjectEnd        *time.Time `json:"subjectEnd"`
}

type subjectView struct {
	ID                string    `json:"id"`
	OwnerID           string    `json:"user"`
	Subject           string    `json:"subject"`
	Theory            bool      `json:"theory"`
	Revision          bool      `json:"revision"`
	PYQ               bool      `json:"pyq"`
	TestSeries        bool      `json:"testSeries"`
	IsCompleted       bool      `json:"isCompleted"`
	NoOfLectures      int       `json:"noOfLectures"`
	LecturesCompleted int       `json:"noOfLecturesCompleted"`
	SubjectStart      time.Time `json:"subjectStart"`
	SubjectEnd        time.Time `json:"subjectEnd"`
}

func viewOf(s *Subject) subjectView {
	return subjectView{
		ID:                s.ID,
		OwnerID:           s.OwnerID,
		Subject:           s.Subject,
		Theory:            s.Theory,
		Revision:          s.Revision,
		PYQ:               s.PYQ,
		TestSeries:        s.TestSeries,
		IsCompleted:       s.IsCompleted,
		NoOfLectures:      s.NoOfLectures,
		LecturesCompleted: s.LecturesCompleted,
		SubjectStart:      s.SubjectStart,
		SubjectEnd:        s.SubjectEnd,
	}
}

func (h *Handler) createSubject(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "subject, subjectStart and subjectEnd are required")
		return
	}
	subject, err := h.service.Create(r.Context(), p.Actor(), CreateInput{
		Subject:           req.Subject,
		Theory:            req.Theory,
		Revision:          req.Revision,
		PYQ:               req.PYQ,
		TestSeries:        req.TestSeries,
		IsCompleted:       req.IsCompleted,
		NoOfLectures:      req.NoOfLectures,
		LecturesCompleted: req.LecturesCompleted,
		SubjectStart:      req.SubjectStart,
		SubjectEnd:        req.SubjectEnd,
	})
	if err != nil {
		h.logger.Error("create subject failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"message": "Subject created successfully",
		"subject": viewOf(subject),
	})
}

func (h *Handler) listSubjects(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	list, err := h.service.ListOwn(r.Context(), p.Actor())
	if err != nil {
		h.logger.Error("list subjects failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	views := make([]subjectView, len(list))
	for i := range list {
		views[i] = viewOf(&list[i])
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message":     "Subject information found",
		"subjectInfo": views,
	})
}

func (h *Handler) getSubject(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	subject, err := h.service.Get(r.Context(), p.Actor(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message": "Subject fetched successfully",
		"subject": viewOf(subject),
	})
}

func (h *Handler) updateSubject(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	subject, err := h.service.Update(r.Context(), p.Actor(), chi.URLParam(r, "id"), UpdateInput{
		Subject:           req.Subject,
		Theory:            req.Theory,
		Revision:          req.Revision,
		PYQ:               req.PYQ,
		TestSeries:        req.TestSeries,
		IsCompleted:       req.IsCompleted,
		NoOfLectures:      req.NoOfLectures,
		LecturesCompleted: req.LecturesCompleted,
		SubjectStart:      req.SubjectStart,
		SubjectEnd:        req.SubjectEnd,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message":        "Subject updated successfully",
		"updatedSubject": viewOf(subject),
	})
}

func (h *Handler) deleteSubject(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	if err := h.service.Delete(r.Context(), p.Actor(), chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"message": "Subject deleted successfully"})
}
