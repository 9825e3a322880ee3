package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/exam-engine/internal/model"
	"github.com/stemsi/exam-engine/internal/repository"
	"github.com/stemsi/exam-engine/internal/response"
)

// Exam session errors.
var (
	ErrInvalidExam              = errors.New("exam does not exist or is not active")
	ErrInsufficientQuestionPool = errors.New("not enough active questions for this exam")
	ErrSubmissionNotFound       = errors.New("submission not found")
	ErrForbidden                = errors.New("submission belongs to another user")
	ErrAlreadyFinalized         = errors.New("submission already finalized")
	ErrExamMissing              = errors.New("exam for this submission no longer exists")
)

// ExamSessionService runs the submission lifecycle: start, submit and read back.
type ExamSessionService struct {
	exams       ExamCatalog
	questions   QuestionBank
	submissions SubmissionStore
	now         func() time.Time
	log         zerolog.Logger
}

// NewExamSessionService creates a new ExamSessionService. exams must be the
// authoritative catalog: existence and activity are checked against it on
// every Start and Submit.
func NewExamSessionService(
	exams ExamCatalog,
	questions QuestionBank,
	submissions SubmissionStore,
	log zerolog.Logger,
) *ExamSessionService {
	return &ExamSessionService{
		exams:       exams,
		questions:   questions,
		submissions: submissions,
		now:         time.Now,
		log:         log.With().Str("component", "exam_session").Logger(),
	}
}

// StartResult is returned to the caller when a submission begins.
type StartResult struct {
	SubmissionID    model.ID             `json:"submission_id"`
	DurationSeconds int                  `json:"duration_seconds"`
	Questions       []model.QuestionView `json:"questions"`
}

// QuestionResult is the per-question breakdown revealed after finalization.
type QuestionResult struct {
	ID            model.ID `json:"id"`
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectIndex  int      `json:"correct_index"`
	SelectedIndex int      `json:"selected_index"`
	IsCorrect     bool     `json:"is_correct"`
}

// SubmitResult is the outcome of finalizing a submission.
type SubmitResult struct {
	SubmissionID model.ID               `json:"submission_id"`
	Score        int                    `json:"score"`
	Total        int                    `json:"total"`
	Status       model.SubmissionStatus `json:"status"`
	TimeExpired  bool                   `json:"time_expired"`
	Results      []QuestionResult       `json:"results"`
}

// Summary is the read-only projection of a submission.
type Summary struct {
	SubmissionID model.ID               `json:"submission_id"`
	ExamID       model.ID               `json:"exam_id"`
	Score        *int                   `json:"score"`
	Total        int                    `json:"total"`
	Status       model.SubmissionStatus `json:"status"`
	StartedAt    time.Time              `json:"started_at"`
	SubmittedAt  *time.Time             `json:"submitted_at"`
}

func summarize(s *model.Submission) Summary {
	return Summary{
		SubmissionID: s.ID,
		ExamID:       s.ExamID,
		Score:        s.Score,
		Total:        len(s.QuestionIDs),
		Status:       s.Status,
		StartedAt:    s.StartedAt,
		SubmittedAt:  s.SubmittedAt,
	}
}

// LookupActiveExam resolves an exam that can be started, or ErrInvalidExam.
func LookupActiveExam(ctx context.Context, exams ExamCatalog, examID model.ID) (*model.Exam, error) {
	exam, err := exams.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidExam
		}
		return nil, fmt.Errorf("get exam: %w", err)
	}
	if !exam.IsActive {
		return nil, ErrInvalidExam
	}
	return exam, nil
}

// Start samples a fixed question set for the exam and opens a submission.
func (s *ExamSessionService) Start(ctx context.Context, examID, userID model.ID) (*StartResult, error) {
	exam, err := LookupActiveExam(ctx, s.exams, examID)
	if err != nil {
		return nil, err
	}

	sample, err := s.questions.SampleActive(ctx, exam.TotalQuestions)
	if err != nil {
		return nil, fmt.Errorf("sample questions: %w", err)
	}
	if len(sample) < exam.TotalQuestions {
		return nil, fmt.Errorf("%w: need %d, have %d", ErrInsufficientQuestionPool, exam.TotalQuestions, len(sample))
	}
	sample = sample[:exam.TotalQuestions]

	questionIDs := make([]model.ID, len(sample))
	views := make([]model.QuestionView, len(sample))
	for i := range sample {
		questionIDs[i] = sample[i].ID
		views[i] = sample[i].View()
	}

	submission := &model.Submission{
		ID:          model.NewID(),
		UserID:      userID,
		ExamID:      exam.ID,
		QuestionIDs: questionIDs,
		Answers:     []model.Answer{},
		StartedAt:   s.now().UTC(),
		Status:      model.SubmissionStatusStarted,
	}
	if err := s.submissions.Create(ctx, submission); err != nil {
		return nil, fmt.Errorf("create submission: %w", err)
	}

	s.log.Info().
		Str("submission_id", submission.ID.String()).
		Str("exam_id", exam.ID.String()).
		Str("user_id", userID.String()).
		Int("questions", len(questionIDs)).
		Msg("Submission started")

	return &StartResult{
		SubmissionID:    submission.ID,
		DurationSeconds: exam.DurationSeconds,
		Questions:       views,
	}, nil
}

// Submit scores the answers and finalizes the submission exactly once.
// Late submissions are still scored and recorded with status expired.
func (s *ExamSessionService) Submit(ctx context.Context, submissionID, userID model.ID, answers []model.Answer) (*SubmitResult, error) {
	submission, err := s.loadOwned(ctx, submissionID, userID)
	if err != nil {
		return nil, err
	}
	if submission.IsFinalized() {
		return nil, ErrAlreadyFinalized
	}

	exam, err := s.exams.GetByID(ctx, submission.ExamID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExamMissing
		}
		return nil, fmt.Errorf("get exam: %w", err)
	}

	now := s.now().UTC()
	expired := now.After(submission.Deadline(exam.Duration()))

	fetched, err := s.questions.FetchByIDs(ctx, submission.QuestionIDs)
	if err != nil {
		return nil, fmt.Errorf("fetch answer key: %w", err)
	}
	key := NewAnswerKey(fetched, submission.QuestionIDs)
	recorded, score := ScoreAnswers(answers, key)

	status := model.SubmissionStatusSubmitted
	if expired {
		status = model.SubmissionStatusExpired
	}

	err = s.submissions.FinalizeIfStarted(ctx, submission.ID, model.Finalization{
		Answers:     recorded,
		Score:       score,
		SubmittedAt: now,
		Status:      status,
	})
	switch {
	case errors.Is(err, repository.ErrAlreadyFinalized):
		return nil, ErrAlreadyFinalized
	case errors.Is(err, repository.ErrNotFound):
		return nil, ErrSubmissionNotFound
	case err != nil:
		return nil, fmt.Errorf("finalize submission: %w", err)
	}

	s.log.Info().
		Str("submission_id", submission.ID.String()).
		Str("status", string(status)).
		Int("score", score).
		Int("total", len(submission.QuestionIDs)).
		Msg("Submission finalized")

	return &SubmitResult{
		SubmissionID: submission.ID,
		Score:        score,
		Total:        len(submission.QuestionIDs),
		Status:       status,
		TimeExpired:  expired,
		Results:      buildResults(submission.QuestionIDs, fetched, recorded),
	}, nil
}

// buildResults lists found questions in submission order with the selection
// that was recorded for each.
func buildResults(order []model.ID, questions []model.Question, recorded []model.Answer) []QuestionResult {
	byID := make(map[model.ID]*model.Question, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}
	selected := make(map[model.ID]int, len(recorded))
	for _, a := range recorded {
		selected[a.QuestionID] = a.SelectedIndex
	}

	results := make([]QuestionResult, 0, len(order))
	for _, id := range order {
		q, ok := byID[id]
		if !ok {
			continue
		}
		sel, answered := selected[id]
		if !answered {
			sel = model.NoAnswer
		}
		results = append(results, QuestionResult{
			ID:            q.ID,
			Text:          q.Text,
			Options:       q.Options,
			CorrectIndex:  q.CorrectIndex,
			SelectedIndex: sel,
			IsCorrect:     sel != model.NoAnswer && sel == q.CorrectIndex,
		})
	}
	return results
}

// GetSummary returns the caller's submission without question content.
func (s *ExamSessionService) GetSummary(ctx context.Context, submissionID, userID model.ID) (*Summary, error) {
	submission, err := s.loadOwned(ctx, submissionID, userID)
	if err != nil {
		return nil, err
	}
	summary := summarize(submission)
	return &summary, nil
}

const (
	maxPerPage = 100
	// maxPage keeps (page-1)*perPage from overflowing into a negative offset.
	maxPage = math.MaxInt / maxPerPage
)

// ListMine returns the caller's submissions, newest first.
func (s *ExamSessionService) ListMine(ctx context.Context, userID model.ID, page, perPage int) ([]Summary, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	if page > maxPage {
		page = maxPage
	}

	submissions, total, err := s.submissions.ListByUser(ctx, userID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, fmt.Errorf("list submissions: %w", err)
	}

	summaries := make([]Summary, 0, len(submissions))
	for i := range submissions {
		summaries = append(summaries, summarize(&submissions[i]))
	}

	return summaries, response.NewPagination(page, perPage, total), nil
}

func (s *ExamSessionService) loadOwned(ctx context.Context, submissionID, userID model.ID) (*model.Submission, error) {
	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("get submission: %w", err)
	}
	if submission.UserID != userID {
		return nil, ErrForbidden
	}
	return submission, nil
}
