package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stemsi/exam-engine/internal/model"
	"github.com/stemsi/exam-engine/internal/repository"
)

const submissionColumns = `id, user_id, exam_id, question_ids, answers, score, started_at, submitted_at, status`

// SubmissionRepository is the SQLite session store.
type SubmissionRepository struct {
	db *sql.DB
}

func NewSubmissionRepository(db *sql.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

func scanSubmission(row rowScanner) (*model.Submission, error) {
	var (
		s           model.Submission
		questionIDs string
		answers     string
		score       sql.NullInt64
		submittedAt sql.NullTime
	)
	if err := row.Scan(&s.ID, &s.UserID, &s.ExamID, &questionIDs, &answers, &score, &s.StartedAt, &submittedAt, &s.Status); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(questionIDs), &s.QuestionIDs); err != nil {
		return nil, fmt.Errorf("decode question ids: %w", err)
	}
	if err := json.Unmarshal([]byte(answers), &s.Answers); err != nil {
		return nil, fmt.Errorf("decode answers: %w", err)
	}
	if score.Valid {
		v := int(score.Int64)
		s.Score = &v
	}
	if submittedAt.Valid {
		t := submittedAt.Time
		s.SubmittedAt = &t
	}
	return &s, nil
}

func (r *SubmissionRepository) Create(ctx context.Context, s *model.Submission) error {
	questionIDs, err := json.Marshal(s.QuestionIDs)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO submissions (id, user_id, exam_id, question_ids, answers, started_at, status)
		 VALUES (?, ?, ?, ?, '[]', ?, ?)`,
		s.ID, s.UserID, s.ExamID, string(questionIDs), s.StartedAt.UTC(), s.Status,
	)
	return err
}

func (r *SubmissionRepository) GetByID(ctx context.Context, id model.ID) (*model.Submission, error) {
	s, err := scanSubmission(r.db.QueryRowContext(ctx,
		`SELECT `+submissionColumns+` FROM submissions WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return s, err
}

// FinalizeIfStarted applies f only while the row is still started.
func (r *SubmissionRepository) FinalizeIfStarted(ctx context.Context, id model.ID, f model.Finalization) error {
	answers := f.Answers
	if answers == nil {
		answers = []model.Answer{}
	}
	raw, err := json.Marshal(answers)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE submissions
		 SET answers = ?, score = ?, submitted_at = ?, status = ?
		 WHERE id = ? AND status = ?`,
		string(raw), f.Score, f.SubmittedAt.UTC(), f.Status, id, model.SubmissionStatusStarted,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM submissions WHERE id = ?)`, id,
	).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return repository.ErrNotFound
	}
	return repository.ErrAlreadyFinalized
}

func (r *SubmissionRepository) ListByUser(ctx context.Context, userID model.ID, limit, offset int) ([]model.Submission, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM submissions WHERE user_id = ?`, userID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+submissionColumns+` FROM submissions
		 WHERE user_id = ?
		 ORDER BY started_at DESC
		 LIMIT ? OFFSET ?`, userID, limit, offset)
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
