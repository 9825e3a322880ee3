package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/exam-engine/internal/model"
)

const submissionColumns = `id, user_id, exam_id, question_ids, answers, score, started_at, submitted_at, status`

// SubmissionRepository persists submissions and owns the conditional
// finalize that guarantees each submission is scored at most once.
type SubmissionRepository struct {
	pool *pgxpool.Pool
}

// NewSubmissionRepository creates a new SubmissionRepository.
func NewSubmissionRepository(pool *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{pool: pool}
}

func scanSubmission(row rowScanner) (*model.Submission, error) {
	var (
		s           model.Submission
		questionIDs []uuid.UUID
		answers     []byte
	)
	err := row.Scan(&s.ID, &s.UserID, &s.ExamID, &questionIDs, &answers, &s.Score, &s.StartedAt, &s.SubmittedAt, &s.Status)
	if err != nil {
		return nil, err
	}

	s.QuestionIDs = model.UUIDsToIDs(questionIDs)
	if err := json.Unmarshal(answers, &s.Answers); err != nil {
		return nil, fmt.Errorf("decode answers: %w", err)
	}
	return &s, nil
}

// Create inserts a new submission in the started state.
func (r *SubmissionRepository) Create(ctx context.Context, s *model.Submission) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO submissions (id, user_id, exam_id, question_ids, answers, started_at, status)
		 VALUES ($1, $2, $3, $4::uuid[], '[]'::jsonb, $5, $6)`,
		s.ID, s.UserID, s.ExamID, model.IDsToUUIDs(s.QuestionIDs), s.StartedAt, s.Status,
	)
	return err
}

// GetByID retrieves a submission by ID.
func (r *SubmissionRepository) GetByID(ctx context.Context, id model.ID) (*model.Submission, error) {
	s, err := scanSubmission(r.pool.QueryRow(ctx,
		`SELECT `+submissionColumns+` FROM submissions WHERE id = $1`, id,
	))
	if err != nil {
		return nil, mapErr(err)
	}
	return s, nil
}

// FinalizeIfStarted writes answers, score, submitted_at and the terminal
// status in one statement guarded by status = 'started'. When the guard
// fails it reports ErrNotFound or ErrAlreadyFinalized.
func (r *SubmissionRepository) FinalizeIfStarted(ctx context.Context, id model.ID, f model.Finalization) error {
	answers, err := json.Marshal(nonNilAnswers(f.Answers))
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE submissions
		 SET answers = $2::jsonb, score = $3, submitted_at = $4, status = $5
		 WHERE id = $1 AND status = $6`,
		id, answers, f.Score, f.SubmittedAt, f.Status, model.SubmissionStatusStarted,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM submissions WHERE id = $1)`, id,
	).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return ErrAlreadyFinalized
}

// ListByUser retrieves a page of a user's submissions, newest first,
// together with the user's total submission count.
func (r *SubmissionRepository) ListByUser(ctx context.Context, userID model.ID, limit, offset int) ([]model.Submission, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM submissions WHERE user_id = $1`, userID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+submissionColumns+`
		 FROM submissions
		 WHERE user_id = $1
		 ORDER BY started_at DESC
		 LIMIT $2 OFFSET $3`, userID, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var submissions []model.Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, 0, err
		}
		submissions = append(submissions, *s)
	}
	return submissions, total, rows.Err()
}

func nonNilAnswers(a []model.Answer) []model.Answer {
	if a == nil {
		return []model.Answer{}
	}
	return a
}
