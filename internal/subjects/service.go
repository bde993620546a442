package subjects

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/examplanner/examplanner/internal/platform/httpx"
	"github.com/examplanner/examplanner/internal/rbac"
)

// Service applies the ownership gate to subject mutations.
type Service struct {
	repo Repository
}

// NewService builds Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateInput carries a new subject.
type CreateInput struct {
	Subject           string
	Theory            bool
	Revision          bool
	PYQ               bool
	TestSeries        bool
	IsCompleted       bool
	NoOfLectures      int
	LecturesCompleted int
	SubjectStart      time.Time
	SubjectEnd        time.Time
}

// UpdateInput carries partial subject changes; nil pointers stay untouched.
type UpdateInput struct {
	Subject           *string
	Theory            *bool
	Revision          *bool
	PYQ               *bool
	TestSeries        *bool
	IsCompleted       *bool
	NoOfLectures      *int
	LecturesCompleted *int
	SubjectStart      *time.Time
	SubjectEnd        *time.Time
}

// Create stamps the caller as owner and persists the subject.
func (s *Service) Create(ctx context.Context, actor rbac.Actor, in CreateInput) (*Subject, error) {
	if in.Subject == "" {
		return nil, fmt.Errorf("%w: subject name is required", httpx.ErrValidation)
	}
	if in.SubjectStart.IsZero() || in.SubjectEnd.IsZero() {
		return nil, fmt.Errorf("%w: subjectStart and subjectEnd are required", httpx.ErrValidation)
	}
	subject := &Subject{
		ID:                uuid.New().String(),
		OwnerID:           actor.ID,
		Subject:           in.Subject,
		Theory:            in.Theory,
		Revision:          in.Revision,
		PYQ:               in.PYQ,
		TestSeries:        in.TestSeries,
		IsCompleted:       in.IsCompleted,
		NoOfLectures:      in.NoOfLectures,
		LecturesCompleted: in.LecturesCompleted,
		SubjectStart:      in.SubjectStart,
		SubjectEnd:        in.SubjectEnd,
	}
	if err := s.repo.Create(ctx, subject); err != nil {
		return nil, err
	}
	return subject, nil
}

// ListOwn returns the caller's subjects.
func (s *Service) ListOwn(ctx context.Context, actor rbac.Actor) ([]Subject, error) {
	return s.repo.ListByOwner(ctx, actor.ID)
}

// Get returns a subject after the ownership gate.
func (s *Service) Get(ctx context.Context, actor rbac.Actor, id string) (*Subject, error) {
	subject, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := rbac.CanAccessResource(actor, subject.OwnerID); err != nil {
		return nil, err
	}
	return subject, nil
}

// Update applies partial changes after the ownership gate.
func (s *Service) Update(ctx context.Context, actor rbac.Actor, id string, in UpdateInput) (*Subject, error) {
	subject, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := rbac.CanAccessResource(actor, subject.OwnerID); err != nil {
		return nil, err
	}

	if in.Subject != nil {
		subject.Subject = *in.Subject
	}
	if in.Theory != nil {
		subject.Theory = *in.Theory
	}
	if in.Revision != nil {
		subject.Revision = *in.Revision
	}
	if in.PYQ != nil {
		subject.PYQ = *in.PYQ
	}
	if in.TestSeries != nil {
		subject.TestSeries = *in.TestSeries
	}
	if in.IsCompleted != nil {
		subject.IsCompleted = *in.IsCompleted
	}
	if in.NoOfLectures != nil {
		subject.NoOfLectures = *in.NoOfLectures
	}
	if in.LecturesCompleted != nil {
		subject.LecturesCompleted = *in.LecturesCompleted
	}
	if in.SubjectStart != nil {
		subject.SubjectStart = *in.SubjectStart
	}
	if in.SubjectEnd != nil {
		subject.SubjectEnd = *in.SubjectEnd
	}

	if err := s.repo.Update(ctx, subject); err != nil {
		return nil, err
	}
	return subject, nil
}

// Delete removes a subject after the ownership gate.
func (s *Service) Delete(ctx context.Context, actor rbac.Actor, id string) error {
	subject, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := rbac.CanAccessResource(actor, subject.OwnerID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, subject.ID)
}
