package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/examplanner/examplanner/internal/todos"
	"github.com/examplanner/examplanner/internal/users"
)

// TodoRolloverJob sweeps open tasks whose scheduled day has passed into
// the backlog so planners see them resurface instead of silently rotting.
type TodoRolloverJob struct {
	todos  todos.Repository
	users  users.Repository
	logger *slog.Logger
}

// NewTodoRolloverJob constructs the nightly backlog sweep job.
func NewTodoRolloverJob(todoRepo todos.Repository, userRepo users.Repository, logger *slog.Logger) *TodoRolloverJob {
	return &TodoRolloverJob{todos: todoRepo, users: userRepo, logger: logger}
}

// Handle processes TaskTodoRollover tasks.
func (j *TodoRolloverJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload TodoRolloverPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	before := payload.Before
	if before == "" {
		before = time.Now().UTC().Format(todos.DateLayout)
	}

	accounts, err := j.users.List(ctx)
	if err != nil {
		return err
	}

	var swept atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, account := range accounts {
		ownerID := account.ID
		g.Go(func() error {
			n, err := j.todos.MarkOverdueBacklogForOwner(ctx, ownerID, before)
			if err != nil {
				return err
			}
			if n > 0 && j.logger != nil {
				j.logger.Info("rolled over overdue tasks",
					slog.String("owner", ownerID),
					slog.Int64("count", n),
				)
			}
			swept.Add(n)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if j.logger != nil {
		j.logger.Info("backlog sweep complete",
			slog.String("before", before),
			slog.Int64("total", swept.Load()),
		)
	}
	return nil
}
