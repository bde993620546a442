package todos

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/examplanner/examplanner/internal/platform/db"
	"github.com/examplanner/examplanner/internal/platform/httpx"
)

// Repository defines persistence operations for todos.
type Repository interface {
	Create(ctx context.Context, todo *Todo) error
	CreateBatch(ctx context.Context, items []Todo) error
	GetByID(ctx context.Context, id string) (*Todo, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Todo, error)
	ListAll(ctx context.Context) ([]Todo, error)
	Update(ctx context.Context, todo *Todo) error
	Delete(ctx context.Context, id string) error
	MarkOverdueBacklog(ctx context.Context, before string) (int64, error)
	MarkOverdueBacklogForOwner(ctx context.Context, ownerID, before string) (int64, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const todoColumns = `id, owner_id, subject_id, task, scheduled_in, due_date, status, created_at, updated_at`

func scanTodo(row pgx.Row) (*Todo, error) {
	var t Todo
	err := row.Scan(&t.ID, &t.OwnerID, &t.SubjectID, &t.Task, &t.ScheduledIn, &t.Date, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// Create inserts a todo.
func (r *PGRepository) Create(ctx context.Context, todo *Todo) error {
	now := time.Now().UTC()
	todo.CreatedAt = now
	todo.UpdatedAt = now
	_, err := r.pool.Exec(ctx, `
		INSERT INTO todos (id, owner_id, subject_id, task, scheduled_in, due_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		todo.ID, todo.OwnerID, todo.SubjectID, todo.Task, todo.ScheduledIn, todo.Date, todo.Status, todo.CreatedAt, todo.UpdatedAt,
	)
	return err
}

// CreateBatch inserts freshly created todos atomically: either the whole
// batch lands or none of it does.
func (r *PGRepository) CreateBatch(ctx context.Context, items []Todo) error {
	if len(items) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	now := time.Now().UTC()
	for i := range items {
		items[i].CreatedAt = now
		items[i].UpdatedAt = now
		batch.Queue(`
			INSERT INTO todos (id, owner_id, subject_id, task, scheduled_in, due_date, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			items[i].ID, items[i].OwnerID, items[i].SubjectID, items[i].Task, items[i].ScheduledIn,
			items[i].Date, items[i].Status, items[i].CreatedAt, items[i].UpdatedAt,
		)
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		results := tx.SendBatch(ctx, batch)
		defer results.Close()
		for range items {
			if _, err := results.Exec(); err != nil {
				return err
			}
		}
		return results.Close()
	})
}

// GetByID fetches a todo by id.
func (r *PGRepository) GetByID(ctx context.Context, id string) (*Todo, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+todoColumns+` FROM todos WHERE id = $1`, id)
	return scanTodo(row)
}

// ListByOwner returns the given account's todos.
func (r *PGRepository) ListByOwner(ctx context.Context, ownerID string) ([]Todo, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+todoColumns+` FROM todos WHERE owner_id = $1 ORDER BY due_date, created_at`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTodos(rows)
}

// ListAll returns every todo; used by privileged callers.
func (r *PGRepository) ListAll(ctx context.Context) ([]Todo, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+todoColumns+` FROM todos ORDER BY due_date, created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTodos(rows)
}

func collectTodos(rows pgx.Rows) ([]Todo, error) {
	var result []Todo
	for rows.Next() {
		var t Todo
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.SubjectID, &t.Task, &t.ScheduledIn, &t.Date, &t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Update writes the mutable fields of a todo.
func (r *PGRepository) Update(ctx context.Context, todo *Todo) error {
	todo.UpdatedAt = time.Now().UTC()
	tag, err := r.pool.Exec(ctx, `
		UPDATE todos
		SET subject_id = $2, task = $3, scheduled_in = $4, due_date = $5, status = $6, updated_at = $7
		WHERE id = $1`,
		todo.ID, todo.SubjectID, todo.Task, todo.ScheduledIn, todo.Date, todo.Status, todo.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// Delete removes a todo.
func (r *PGRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM todos WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// MarkOverdueBacklog moves still-open todos dated before the given day
// into the backlog and reports how many rows changed.
func (r *PGRepository) MarkOverdueBacklog(ctx context.Context, before string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE todos SET status = $1, updated_at = $2
		WHERE status = $3 AND due_date < $4`,
		StatusBacklog, time.Now().UTC(), StatusTodo, before,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// MarkOverdueBacklogForOwner is the per-account variant of MarkOverdueBacklog.
func (r *PGRepository) MarkOverdueBacklogForOwner(ctx context.Context, ownerID, before string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE todos SET status = $1, updated_at = $2
		WHERE owner_id = $3 AND status = $4 AND due_date < $5`,
		StatusBacklog, time.Now().UTC(), ownerID, StatusTodo, before,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

var _ Repository = (*PGRepository)(nil)
