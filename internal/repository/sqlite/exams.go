package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/stemsi/exam-engine/internal/model"
	"github.com/stemsi/exam-engine/internal/repository"
)

// ExamRepository is the SQLite exam catalog.
type ExamRepository struct {
	db *sql.DB
}

func NewExamRepository(db *sql.DB) *ExamRepository {
	return &ExamRepository{db: db}
}

func (r *ExamRepository) GetByID(ctx context.Context, id model.ID) (*model.Exam, error) {
	e := &model.Exam{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, duration_seconds, total_questions, is_active, created_at
		 FROM exams WHERE id = ?`, id,
	).Scan(&e.ID, &e.Title, &e.DurationSeconds, &e.TotalQuestions, &e.IsActive, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *ExamRepository) Create(ctx context.Context, e *model.Exam) error {
	e.CreatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO exams (id, title, duration_seconds, total_questions, is_active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.Title, e.DurationSeconds, e.TotalQuestions, e.IsActive, e.CreatedAt,
	)
	return err
}

func (r *ExamRepository) DeleteAll(ctx context.Context) ([]model.ID, error) {
	rows, err := r.db.QueryContext(ctx, `DELETE FROM exams RETURNING id`)
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
