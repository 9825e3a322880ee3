package service

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/stemsi/exam-engine/internal/model"
	"github.com/stemsi/exam-engine/internal/repository"
)

type fakeExamCatalog struct {
	mu    sync.Mutex
	exams map[model.ID]model.Exam
	calls int
}

func newFakeExamCatalog(exams ...model.Exam) *fakeExamCatalog {
	c := &fakeExamCatalog{exams: make(map[model.ID]model.Exam)}
	for _, e := range exams {
		c.exams[e.ID] = e
	}
	return c
}

func (c *fakeExamCatalog) GetByID(_ context.Context, id model.ID) (*model.Exam, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	e, ok := c.exams[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (c *fakeExamCatalog) delete(id model.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.exams, id)
}

type fakeQuestionBank struct {
	questions []model.Question
}

func (b *fakeQuestionBank) SampleActive(_ context.Context, n int) ([]model.Question, error) {
	var active []model.Question
	for _, q := range b.questions {
		if q.IsActive {
			active = append(active, q)
		}
	}
	rand.Shuffle(len(active), func(i, j int) { active[i], active[j] = active[j], active[i] })
	if len(active) > n {
		active = active[:n]
	}
	return active, nil
}

func (b *fakeQuestionBank) FetchByIDs(_ context.Context, ids []model.ID) ([]model.Question, error) {
	want := make(map[model.ID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []model.Question
	for _, q := range b.questions {
		if want[q.ID] {
			out = append(out, q)
		}
	}
	return out, nil
}

func (b *fakeQuestionBank) byID(id model.ID) model.Question {
	for _, q := range b.questions {
		if q.ID == id {
			return q
		}
	}
	panic("unknown question " + id.String())
}

type fakeSubmissionStore struct {
	mu          sync.Mutex
	submissions map[model.ID]model.Submission
	finalizes   int
}

func newFakeSubmissionStore() *fakeSubmissionStore {
	return &fakeSubmissionStore{submissions: make(map[model.ID]model.Submission)}
}

func (s *fakeSubmissionStore) Create(_ context.Context, sub *model.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sub
	cp.QuestionIDs = append([]model.ID(nil), sub.QuestionIDs...)
	s.submissions[sub.ID] = cp
	return nil
}

func (s *fakeSubmissionStore) GetByID(_ context.Context, id model.ID) (*model.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.submissions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &sub, nil
}

func (s *fakeSubmissionStore) FinalizeIfStarted(_ context.Context, id model.ID, f model.Finalization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.submissions[id]
	if !ok {
		return repository.ErrNotFound
	}
	if sub.Status != model.SubmissionStatusStarted {
		return repository.ErrAlreadyFinalized
	}
	score := f.Score
	submittedAt := f.SubmittedAt
	sub.Answers = f.Answers
	sub.Score = &score
	sub.SubmittedAt = &submittedAt
	sub.Status = f.Status
	s.submissions[id] = sub
	s.finalizes++
	return nil
}

func (s *fakeSubmissionStore) ListByUser(_ context.Context, userID model.ID, limit, offset int) ([]model.Submission, int, error) {
	if offset < 0 || limit < 0 {
		return nil, 0, fmt.Errorf("negative limit/offset %d/%d", limit, offset)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var mine []model.Submission
	for _, sub := range s.submissions {
		if sub.UserID == userID {
			mine = append(mine, sub)
		}
	}
	total := len(mine)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return mine[offset:end], total, nil
}

func (s *fakeSubmissionStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.submissions)
}

type fakeUserStore struct {
	mu    sync.Mutex
	users map[model.ID]model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[model.ID]model.User)}
}

func (s *fakeUserStore) GetByID(_ context.Context, id model.ID) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *fakeUserStore) Create(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicateEmail
		}
	}
	s.users[u.ID] = *u
	return nil
}

// makeQuestions builds n questions whose correct index cycles through 0..3.
func makeQuestions(n int, active bool) []model.Question {
	out := make([]model.Question, n)
	for i := range out {
		out[i] = model.Question{
			ID:           model.NewID(),
			Text:         "question",
			Options:      []string{"a", "b", "c", "d"},
			CorrectIndex: i % 4,
			Difficulty:   model.DifficultyEasy,
			IsActive:     active,
		}
	}
	return out
}
