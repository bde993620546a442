package subjects

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/examplanner/examplanner/internal/platform/httpx"
)

// Repository defines persistence operations for subjects.
type Repository interface {
	Create(ctx context.Context, subject *Subject) error
	GetByID(ctx context.Context, id string) (*Subject, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Subject, error)
	Update(ctx context.Context, subject *Subject) error
	Delete(ctx context.Context, id string) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const subjectColumns = `id, owner_id, subject, theory, revision, pyq, test_series, is_completed,
	no_of_lectures, lectures_completed, subject_start, subject_end, created_at, updated_at`

func scanSubject(row pgx.Row) (*Subject, error) {
	var s Subject
	err := row.Scan(&s.ID, &s.OwnerID, &s.Subject, &s.Theory, &s.Revision, &s.PYQ, &s.TestSeries,
		&s.IsCompleted, &s.NoOfLectures, &s.LecturesCompleted, &s.SubjectStart, &s.SubjectEnd,
		&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// Create inserts a subject.
func (r *PGRepository) Create(ctx context.Context, subject *Subject) error {
	now := time.Now().UTC()
	subject.CreatedAt = now
	subject.UpdatedAt = now
	_, err := r.pool.Exec(ctx, `
		INSERT INTO subjects (id, owner_id, subject, theory, revision, pyq, test_series, is_completed,
			no_of_lectures, lectures_completed, subject_start, subject_end, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		subject.ID, subject.OwnerID, subject.Subject, subject.Theory, subject.Revision, subject.PYQ,
		subject.TestSeries, subject.IsCompleted, subject.NoOfLectures, subject.LecturesCompleted,
		subject.SubjectStart, subject.SubjectEnd, subject.CreatedAt, subject.UpdatedAt,
	)
	return err
}

// GetByID fetches a subject by id.
func (r *PGRepository) GetByID(ctx context.Context, id string) (*Subject, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+subjectColumns+` FROM subjects WHERE id = $1`, id)
	return scanSubject(row)
}

// ListByOwner returns all subjects owned by the given account.
func (r *PGRepository) ListByOwner(ctx context.Context, ownerID string) ([]Subject, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+subjectColumns+` FROM subjects WHERE owner_id = $1 ORDER BY created_at`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []Subject
	for rows.Next() {
		var s Subject
		if err := rows.Scan(&s.ID, &s.OwnerID, &s.Subject, &s.Theory, &s.Revision, &s.PYQ, &s.TestSeries,
			&s.IsCompleted, &s.NoOfLectures, &s.LecturesCompleted, &s.SubjectStart, &s.SubjectEnd,
			&s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Update writes the mutable fields of a subject. Ownership is immutable
// and deliberately not part of the statement.
func (r *PGRepository) Update(ctx context.Context, subject *Subject) error {
	subject.UpdatedAt = time.Now().UTC()
	tag, err := r.pool.Exec(ctx, `
		UPDATE subjects
		SET subject = $2, theory = $3, revision = $4, pyq = $5, test_series = $6, is_completed = $7,
			no_of_lectures = $8, lectures_completed = $9, subject_start = $10, subject_end = $11, updated_at = $12
		WHERE id = $1`,
		subject.ID, subject.Subject, subject.Theory, subject.Revision, subject.PYQ, subject.TestSeries,
		subject.IsCompleted, subject.NoOfLectures, subject.LecturesCompleted, subject.SubjectStart,
		subject.SubjectEnd, subject.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// Delete removes a subject.
func (r *PGRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM subjects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

var _ Repository = (*PGRepository)(nil)
