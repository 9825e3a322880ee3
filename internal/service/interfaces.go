package service

import (
	"context"

	"github.com/stemsi/exam-engine/internal/model"
)

// QuestionBank is the read side of the question store used by the engine.
type QuestionBank interface {
	// SampleActive returns up to n distinct active questions chosen uniformly at random.
	SampleActive(ctx context.Context, n int) ([]model.Question, error)
	// FetchByIDs returns the subset of ids that exist, active or not.
	FetchByIDs(ctx context.Context, ids []model.ID) ([]model.Question, error)
}

// ExamCatalog resolves exam templates. GetByID returns repository.ErrNotFound
// when the exam does not exist.
type ExamCatalog interface {
	GetByID(ctx context.Context, id model.ID) (*model.Exam, error)
}

// SubmissionStore persists submissions. FinalizeIfStarted must be a single
// conditional write returning repository.ErrAlreadyFinalized or
// repository.ErrNotFound when the guard does not hold.
type SubmissionStore interface {
	Create(ctx context.Context, s *model.Submission) error
	GetByID(ctx context.Context, id model.ID) (*model.Submission, error)
	FinalizeIfStarted(ctx context.Context, id model.ID, f model.Finalization) error
	ListByUser(ctx context.Context, userID model.ID, limit, offset int) ([]model.Submission, int, error)
}

// UserStore persists accounts.
type UserStore interface {
	GetByID(ctx context.Context, id model.ID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, u *model.User) error
}
