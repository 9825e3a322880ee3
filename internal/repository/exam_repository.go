package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/exam-engine/internal/model"
)

// ExamRepository handles exam catalog data access.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

// GetByID retrieves an exam by its ID.
func (r *ExamRepository) GetByID(ctx context.Context, id model.ID) (*model.Exam, error) {
	e := &model.Exam{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, duration_seconds, total_questions, is_active, created_at
		 FROM exams WHERE id = $1`, id,
	).Scan(&e.ID, &e.Title, &e.DurationSeconds, &e.TotalQuestions, &e.IsActive, &e.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return e, nil
}

// Create inserts a new exam template. Only the seed tool writes exams.
func (r *ExamRepository) Create(ctx context.Context, e *model.Exam) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO exams (id, title, duration_seconds, total_questions, is_active)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at`,
		e.ID, e.Title, e.DurationSeconds, e.TotalQuestions, e.IsActive,
	).Scan(&e.CreatedAt)
}

// DeleteAll clears the catalog and returns the removed ids. Used when reseeding.
func (r *ExamRepository) DeleteAll(ctx context.Context) ([]model.ID, error) {
	rows, err := r.pool.Query(ctx, `DELETE FROM exams RETURNING id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []model.ID
	for rows.Next() {
		var id model.ID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
