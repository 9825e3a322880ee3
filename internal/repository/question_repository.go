package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/exam-engine/internal/model"
)

const questionColumns = `id, text, options, correct_index, tags, difficulty, is_active, created_at`

// QuestionRepository handles question bank data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuestion(row rowScanner) (model.Question, error) {
	var q model.Question
	err := row.Scan(&q.ID, &q.Text, &q.Options, &q.CorrectIndex, &q.Tags, &q.Difficulty, &q.IsActive, &q.CreatedAt)
	return q, err
}

// SampleActive draws up to n active questions uniformly at random, without
// replacement. Fewer than n are returned when the active pool is smaller.
func (r *QuestionRepository) SampleActive(ctx context.Context, n int) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+questionColumns+`
		 FROM questions WHERE is_active
		 ORDER BY random()
		 LIMIT $1`, n,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := make([]model.Question, 0, n)
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// FetchByIDs returns the subset of ids that exist, in no particular order.
// Inactive questions are included: a submission keeps its questions even if
// they are retired mid-exam.
func (r *QuestionRepository) FetchByIDs(ctx context.Context, ids []model.ID) ([]model.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+questionColumns+`
		 FROM questions WHERE id = ANY($1::uuid[])`, model.IDsToUUIDs(ids),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := make([]model.Question, 0, len(ids))
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// CountActive returns the size of the active pool.
func (r *QuestionRepository) CountActive(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM questions WHERE is_active`).Scan(&n)
	return n, err
}

// Create inserts a new question. Only the seed tool writes questions.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	tags := q.Tags
	if tags == nil {
		tags = []string{}
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO questions (id, text, options, correct_index, tags, difficulty, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at`,
		q.ID, q.Text, q.Options, q.CorrectIndex, tags, q.Difficulty, q.IsActive,
	).Scan(&q.CreatedAt)
}

// DeleteAll clears the bank. Used when reseeding.
func (r *QuestionRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM questions`)
	return err
}
