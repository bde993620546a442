package jobs

import (
	"context"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examplanner/examplanner/internal/platform/httpx"
	"github.com/examplanner/examplanner/internal/rbac"
	_ "github.com/examplanner/examplanner/internal/testing/guard"
	"github.com/examplanner/examplanner/internal/todos"
	"github.com/examplanner/examplanner/internal/users"
)

type fakeTodoRepo struct {
	todos map[string]*todos.Todo
}

func (f *fakeTodoRepo) Create(ctx context.Context, todo *todos.Todo) error {
	clone := *todo
	f.todos[todo.ID] = &clone
	return nil
}

func (f *fakeTodoRepo) CreateBatch(ctx context.Context, items []todos.Todo) error {
	for i := range items {
		clone := items[i]
		f.todos[items[i].ID] = &clone
	}
	return nil
}

func (f *fakeTodoRepo) GetByID(ctx context.Context, id string) (*todos.Todo, error) {
	t, ok := f.todos[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	return t, nil
}

func (f *fakeTodoRepo) ListByOwner(ctx context.Context, ownerID string) ([]todos.Todo, error) {
	return nil, nil
}

func (f *fakeTodoRepo) ListAll(ctx context.Context) ([]todos.Todo, error) {
	return nil, nil
}

func (f *fakeTodoRepo) Update(ctx context.Context, todo *todos.Todo) error {
	return nil
}

func (f *fakeTodoRepo) Delete(ctx context.Context, id string) error {
	return nil
}

func (f *fakeTodoRepo) MarkOverdueBacklog(ctx context.Context, before string) (int64, error) {
	var n int64
	for _, t := range f.todos {
		if t.Status == todos.StatusTodo && t.Date < before {
			t.Status = todos.StatusBacklog
			n++
		}
	}
	return n, nil
}

func (f *fakeTodoRepo) MarkOverdueBacklogForOwner(ctx context.Context, ownerID, before string) (int64, error) {
	var n int64
	for _, t := range f.todos {
		if t.OwnerID == ownerID && t.Status == todos.StatusTodo && t.Date < before {
			t.Status = todos.StatusBacklog
			n++
		}
	}
	return n, nil
}

type fakeUserRepo struct {
	accounts []users.User
}

func (f *fakeUserRepo) Create(ctx context.Context, user *users.User) error  { return nil }
func (f *fakeUserRepo) Update(ctx context.Context, user *users.User) error { return nil }
func (f *fakeUserRepo) Delete(ctx context.Context, id string) error        { return nil }

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*users.User, error) {
	return nil, httpx.ErrNotFound
}

func (f *fakeUserRepo) GetByLogin(ctx context.Context, emailOrUserName string) (*users.User, error) {
	return nil, httpx.ErrNotFound
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	return nil, httpx.ErrNotFound
}

func (f *fakeUserRepo) List(ctx context.Context) ([]users.User, error) {
	return f.accounts, nil
}

func TestTodoRolloverSweepsOverdueOpenTasks(t *testing.T) {
	todoRepo := &fakeTodoRepo{todos: map[string]*todos.Todo{
		"t1": {ID: "t1", OwnerID: "u1", Date: "2026-08-20", Status: todos.StatusTodo},
		"t2": {ID: "t2", OwnerID: "u1", Date: "2026-09-10", Status: todos.StatusTodo},
		"t3": {ID: "t3", OwnerID: "u2", Date: "2026-08-20", Status: todos.StatusDone},
		"t4": {ID: "t4", OwnerID: "u2", Date: "2026-08-25", Status: todos.StatusTodo},
	}}
	userRepo := &fakeUserRepo{accounts: []users.User{
		{ID: "u1", Role: rbac.RoleUser},
		{ID: "u2", Role: rbac.RoleUser},
	}}

	job := NewTodoRolloverJob(todoRepo, userRepo, nil)
	task, err := NewTodoRolloverTask(TodoRolloverPayload{Before: "2026-08-31"})
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))

	assert.Equal(t, todos.StatusBacklog, todoRepo.todos["t1"].Status)
	assert.Equal(t, todos.StatusTodo, todoRepo.todos["t2"].Status)
	assert.Equal(t, todos.StatusDone, todoRepo.todos["t3"].Status)
	assert.Equal(t, todos.StatusBacklog, todoRepo.todos["t4"].Status)
}

func TestTodoRolloverRejectsMalformedPayload(t *testing.T) {
	job := NewTodoRolloverJob(&fakeTodoRepo{todos: map[string]*todos.Todo{}}, &fakeUserRepo{}, nil)
	task := asynq.NewTask(TaskTodoRollover, []byte("not json"))
	err := job.Handle(context.Background(), task)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}
