package todos

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examplanner/examplanner/internal/platform/httpx"
	"github.com/examplanner/examplanner/internal/rbac"
	_ "github.com/examplanner/examplanner/internal/testing/guard"
)

type mockRepository struct {
	todos map[string]*Todo

	batchError error
}

func newMockRepository() *mockRepository {
	return &mockRepository{todos: make(map[string]*Todo)}
}

func (m *mockRepository) Create(ctx context.Context, todo *Todo) error {
	clone := *todo
	m.todos[todo.ID] = &clone
	return nil
}

func (m *mockRepository) CreateBatch(ctx context.Context, items []Todo) error {
	if m.batchError != nil {
		return m.batchError
	}
	for i := range items {
		clone := items[i]
		m.todos[items[i].ID] = &clone
	}
	return nil
}

func (m *mockRepository) GetByID(ctx context.Context, id string) (*Todo, error) {
	t, ok := m.todos[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	clone := *t
	return &clone, nil
}

func (m *mockRepository) ListByOwner(ctx context.Context, ownerID string) ([]Todo, error) {
	var result []Todo
	for _, t := range m.todos {
		if t.OwnerID == ownerID {
			result = append(result, *t)
		}
	}
	return result, nil
}

func (m *mockRepository) ListAll(ctx context.Context) ([]Todo, error) {
	result := make([]Todo, 0, len(m.todos))
	for _, t := range m.todos {
		result = append(result, *t)
	}
	return result, nil
}

func (m *mockRepository) Update(ctx context.Context, todo *Todo) error {
	if _, ok := m.todos[todo.ID]; !ok {
		return httpx.ErrNotFound
	}
	clone := *todo
	m.todos[todo.ID] = &clone
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, id string) error {
	if _, ok := m.todos[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(m.todos, id)
	return nil
}

func (m *mockRepository) MarkOverdueBacklog(ctx context.Context, before string) (int64, error) {
	var n int64
	for _, t := range m.todos {
		if t.Status == StatusTodo && t.Date < before {
			t.Status = StatusBacklog
			n++
		}
	}
	return n, nil
}

func (m *mockRepository) MarkOverdueBacklogForOwner(ctx context.Context, ownerID, before string) (int64, error) {
	var n int64
	for _, t := range m.todos {
		if t.OwnerID == ownerID && t.Status == StatusTodo && t.Date < before {
			t.Status = StatusBacklog
			n++
		}
	}
	return n, nil
}

var _ Repository = (*mockRepository)(nil)

var (
	owner    = rbac.Actor{ID: "u1", Role: rbac.RoleUser}
	stranger = rbac.Actor{ID: "u2", Role: rbac.RoleUser}
	admin    = rbac.Actor{ID: "a1", Role: rbac.RoleAdmin}
)

func validInput() CreateInput {
	return CreateInput{
		Task:        "revise chapter 3",
		ScheduledIn: "morning",
		Date:        "2026-09-01",
	}
}

func TestCreateStampsOwnerAndDefaults(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	todo, err := svc.Create(context.Background(), owner, validInput())
	require.NoError(t, err)
	assert.Equal(t, "u1", todo.OwnerID)
	assert.Equal(t, StatusTodo, todo.Status)
	assert.Equal(t, SlotMorning, todo.ScheduledIn)
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newMockRepository())

	in := validInput()
	in.Task = "  "
	_, err := svc.Create(context.Background(), owner, in)
	assert.ErrorIs(t, err, httpx.ErrValidation)

	in = validInput()
	in.ScheduledIn = "midnight"
	_, err = svc.Create(context.Background(), owner, in)
	assert.ErrorIs(t, err, httpx.ErrValidation)

	in = validInput()
	in.Date = "01-09-2026"
	_, err = svc.Create(context.Background(), owner, in)
	assert.ErrorIs(t, err, httpx.ErrValidation)

	in = validInput()
	in.Status = "paused"
	_, err = svc.Create(context.Background(), owner, in)
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCreateBatchStampsCaller(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	items, err := svc.CreateBatch(context.Background(), owner, []CreateInput{
		validInput(),
		{Task: "solve mock paper", ScheduledIn: "night", Date: "2026-09-02", Status: "inprogress"},
	})
	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, item := range items {
		assert.Equal(t, "u1", item.OwnerID)
	}
	assert.Equal(t, StatusInProgress, items[1].Status)

	_, err = svc.CreateBatch(context.Background(), owner, nil)
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCreateBatchAllOrNothingValidation(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	_, err := svc.CreateBatch(context.Background(), owner, []CreateInput{
		validInput(),
		{Task: "", ScheduledIn: "morning", Date: "2026-09-02"},
	})
	assert.ErrorIs(t, err, httpx.ErrValidation)
	assert.Empty(t, repo.todos)
}

func TestListScope(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	_, err := svc.Create(context.Background(), owner, validInput())
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), stranger, validInput())
	require.NoError(t, err)

	list, err := svc.List(context.Background(), owner)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	// Privileged callers see everything.
	list, err = svc.List(context.Background(), admin)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestUpdateOwnershipAndFields(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	todo, err := svc.Create(context.Background(), owner, validInput())
	require.NoError(t, err)

	status := "done"
	_, err = svc.Update(context.Background(), stranger, todo.ID, UpdateInput{Status: &status})
	assert.ErrorIs(t, err, httpx.ErrForbidden)

	got, err := svc.Update(context.Background(), owner, todo.ID, UpdateInput{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, StatusDone, got.Status)
	assert.Equal(t, "revise chapter 3", got.Task)

	bad := "2026/09/01"
	_, err = svc.Update(context.Background(), owner, todo.ID, UpdateInput{Date: &bad})
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestDeleteOwnership(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	todo, err := svc.Create(context.Background(), owner, validInput())
	require.NoError(t, err)

	err = svc.Delete(context.Background(), stranger, todo.ID)
	assert.ErrorIs(t, err, httpx.ErrForbidden)

	require.NoError(t, svc.Delete(context.Background(), admin, todo.ID))
	err = svc.Delete(context.Background(), owner, todo.ID)
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestRolloverBacklog(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	overdue := validInput()
	overdue.Date = "2026-08-20"
	_, err := svc.Create(context.Background(), owner, overdue)
	require.NoError(t, err)

	upcoming := validInput()
	upcoming.Date = "2026-09-10"
	fresh, err := svc.Create(context.Background(), owner, upcoming)
	require.NoError(t, err)

	finished := validInput()
	finished.Date = "2026-08-20"
	finished.Status = "done"
	_, err = svc.Create(context.Background(), owner, finished)
	require.NoError(t, err)

	n, err := svc.RolloverBacklog(context.Background(), time.Date(2026, 8, 31, 3, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := repo.GetByID(context.Background(), fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusTodo, got.Status)
}
