package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/stemsi/exam-engine/internal/model"
)

const questionColumns = `id, text, options, correct_index, tags, difficulty, is_active, created_at`

// QuestionRepository is the SQLite question bank.
// Options and tags are stored as JSON arrays.
type QuestionRepository struct {
	db *sql.DB
}

func NewQuestionRepository(db *sql.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

func scanQuestion(row rowScanner) (model.Question, error) {
	var (
		q       model.Question
		options string
		tags    string
	)
	if err := row.Scan(&q.ID, &q.Text, &options, &q.CorrectIndex, &tags, &q.Difficulty, &q.IsActive, &q.CreatedAt); err != nil {
		return q, err
	}
	if err := json.Unmarshal([]byte(options), &q.Options); err != nil {
		return q, fmt.Errorf("decode options: %w", err)
	}
	if err := json.Unmarshal([]byte(tags), &q.Tags); err != nil {
		return q, fmt.Errorf("decode tags: %w", err)
	}
	return q, nil
}

func collectQuestions(rows *sql.Rows, capacity int) ([]model.Question, error) {
	defer rows.Close()

	questions := make([]model.Question, 0, capacity)
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// SampleActive draws up to n active questions uniformly at random.
func (r *QuestionRepository) SampleActive(ctx context.Context, n int) ([]model.Question, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE is_active = 1 ORDER BY RANDOM() LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	return collectQuestions(rows, n)
}

// FetchByIDs returns the subset of ids that exist.
func (r *QuestionRepository) FetchByIDs(ctx context.Context, ids []model.ID) ([]model.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, err
	}
	return collectQuestions(rows, len(ids))
}

func (r *QuestionRepository) CountActive(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions WHERE is_active = 1`).Scan(&n)
	return n, err
}

func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	options, err := json.Marshal(q.Options)
	if err != nil {
		return err
	}
	tags := q.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return err
	}

	q.CreatedAt = time.Now().UTC()
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO questions (`+questionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		q.ID, q.Text, string(options), q.CorrectIndex, string(tagsJSON), q.Difficulty, q.IsActive, q.CreatedAt,
	)
	return err
}

func (r *QuestionRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM questions`)
	return err
}
