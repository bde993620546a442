package todos

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/examplanner/examplanner/internal/platform/httpx"
	"github.com/examplanner/examplanner/internal/rbac"
)

// Service holds todo business rules.
type Service struct {
	repo Repository
}

// NewService wires a todo service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateInput carries the fields accepted when creating a todo.
type CreateInput struct {
	SubjectID   string
	Task        string
	ScheduledIn string
	Date        string
	Status      string
}

// UpdateInput carries a partial todo update. Nil fields are left untouched.
type UpdateInput struct {
	SubjectID   *string
	Task        *string
	ScheduledIn *string
	Date        *string
	Status      *string
}

func buildTodo(ownerID string, in CreateInput) (*Todo, error) {
	task := strings.TrimSpace(in.Task)
	if task == "" {
		return nil, fmt.Errorf("%w: task is required", httpx.ErrValidation)
	}
	slot, ok := ParseSlot(in.ScheduledIn)
	if !ok {
		return nil, fmt.Errorf("%w: unknown slot %q", httpx.ErrValidation, in.ScheduledIn)
	}
	if _, err := time.Parse(DateLayout, in.Date); err != nil {
		return nil, fmt.Errorf("%w: date must use format %s", httpx.ErrValidation, DateLayout)
	}
	status := StatusTodo
	if in.Status != "" {
		status, ok = ParseStatus(in.Status)
		if !ok {
			return nil, fmt.Errorf("%w: unknown status %q", httpx.ErrValidation, in.Status)
		}
	}
	return &Todo{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		SubjectID:   in.SubjectID,
		Task:        task,
		ScheduledIn: slot,
		Date:        in.Date,
		Status:      status,
	}, nil
}

// Create records a todo owned by the acting account.
func (s *Service) Create(ctx context.Context, actor rbac.Actor, in CreateInput) (*Todo, error) {
	todo, err := buildTodo(actor.ID, in)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, todo); err != nil {
		return nil, err
	}
	return todo, nil
}

// CreateBatch records several todos at once. Every item is owned by the
// acting account regardless of what the payload claims.
func (s *Service) CreateBatch(ctx context.Context, actor rbac.Actor, inputs []CreateInput) ([]Todo, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: at least one todo is required", httpx.ErrValidation)
	}
	items := make([]Todo, 0, len(inputs))
	for _, in := range inputs {
		todo, err := buildTodo(actor.ID, in)
		if err != nil {
			return nil, err
		}
		items = append(items, *todo)
	}
	if err := s.repo.CreateBatch(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// List returns the caller's todos. Privileged callers see every account's todos.
func (s *Service) List(ctx context.Context, actor rbac.Actor) ([]Todo, error) {
	if actor.Role.IsPrivileged() {
		return s.repo.ListAll(ctx)
	}
	return s.repo.ListByOwner(ctx, actor.ID)
}

// Update applies a partial update after the ownership check.
func (s *Service) Update(ctx context.Context, actor rbac.Actor, id string, in UpdateInput) (*Todo, error) {
	todo, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := rbac.CanAccessResource(actor, todo.OwnerID); err != nil {
		return nil, err
	}
	if in.SubjectID != nil {
		todo.SubjectID = *in.SubjectID
	}
	if in.Task != nil {
		task := strings.TrimSpace(*in.Task)
		if task == "" {
			return nil, fmt.Errorf("%w: task cannot be empty", httpx.ErrValidation)
		}
		todo.Task = task
	}
	if in.ScheduledIn != nil {
		slot, ok := ParseSlot(*in.ScheduledIn)
		if !ok {
			return nil, fmt.Errorf("%w: unknown slot %q", httpx.ErrValidation, *in.ScheduledIn)
		}
		todo.ScheduledIn = slot
	}
	if in.Date != nil {
		if _, err := time.Parse(DateLayout, *in.Date); err != nil {
			return nil, fmt.Errorf("%w: date must use format %s", httpx.ErrValidation, DateLayout)
		}
		todo.Date = *in.Date
	}
	if in.Status != nil {
		status, ok := ParseStatus(*in.Status)
		if !ok {
			return nil, fmt.Errorf("%w: unknown status %q", httpx.ErrValidation, *in.Status)
		}
		todo.Status = status
	}
	if err := s.repo.Update(ctx, todo); err != nil {
		return nil, err
	}
	return todo, nil
}

// Delete removes a todo after the ownership check.
func (s *Service) Delete(ctx context.Context, actor rbac.Actor, id string) error {
	todo, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := rbac.CanAccessResource(actor, todo.OwnerID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// RolloverBacklog sweeps open todos dated before today into the backlog.
func (s *Service) RolloverBacklog(ctx context.Context, now time.Time) (int64, error) {
	return s.repo.MarkOverdueBacklog(ctx, now.UTC().Format(DateLayout))
}
