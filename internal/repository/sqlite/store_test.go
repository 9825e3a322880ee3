package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/exam-engine/internal/database"
	"github.com/stemsi/exam-engine/internal/model"
	"github.com/stemsi/exam-engine/internal/repository"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()
	db, err := database.NewSQLiteDB(ctx, filepath.Join(t.TempDir(), "exam.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *sql.DB, email string) *model.User {
	t.Helper()
	u := &model.User{ID: model.NewID(), Name: "Test User", Email: email, PasswordHash: "hash"}
	if err := NewUserRepository(db).Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func seedQuestions(t *testing.T, db *sql.DB, active, inactive int) []model.Question {
	t.Helper()
	repo := NewQuestionRepository(db)

	var out []model.Question
	for i := 0; i < active+inactive; i++ {
		q := model.Question{
			ID:           model.NewID(),
			Text:         "question",
			Options:      []string{"a", "b", "c", "d"},
			CorrectIndex: i % 4,
			Tags:         []string{"seed"},
			Difficulty:   model.DifficultyMedium,
			IsActive:     i < active,
		}
		if err := repo.Create(context.Background(), &q); err != nil {
			t.Fatalf("create question: %v", err)
		}
		out = append(out, q)
	}
	return out
}

func TestUserRepository(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := seedUser(t, db, "ada@example.com")

	got, err := repo.GetByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got.ID != u.ID || got.PasswordHash != "hash" {
		t.Fatalf("unexpected user %+v", got)
	}

	dup := &model.User{ID: model.NewID(), Name: "Other", Email: "ada@example.com", PasswordHash: "x"}
	if err := repo.Create(ctx, dup); !errors.Is(err, repository.ErrDuplicateEmail) {
		t.Fatalf("duplicate email err = %v", err)
	}

	if _, err := repo.GetByID(ctx, model.NewID()); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("missing user err = %v", err)
	}
}

func TestExamRepository(t *testing.T) {
	db := openTestDB(t)
	repo := NewExamRepository(db)
	ctx := context.Background()

	e := &model.Exam{ID: model.NewID(), Title: "General MCQ", DurationSeconds: 1800, TotalQuestions: 20, IsActive: true}
	if err := repo.Create(ctx, e); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetByID(ctx, e.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != e.Title || got.DurationSeconds != 1800 || !got.IsActive {
		t.Fatalf("unexpected exam %+v", got)
	}

	retired := &model.Exam{ID: model.NewID(), Title: "Retired", DurationSeconds: 600, TotalQuestions: 5, IsActive: false}
	if err := repo.Create(ctx, retired); err != nil {
		t.Fatalf("create inactive: %v", err)
	}

	deleted, err := repo.DeleteAll(ctx)
	if err != nil {
		t.Fatalf("delete all: %v", err)
	}
	gone := map[model.ID]bool{}
	for _, id := range deleted {
		gone[id] = true
	}
	if len(deleted) != 2 || !gone[e.ID] || !gone[retired.ID] {
		t.Fatalf("deleted ids = %v, want both active and inactive exams", deleted)
	}
	if _, err := repo.GetByID(ctx, e.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("deleted exam err = %v", err)
	}
}

func TestSampleActiveDrawsDistinctActiveQuestions(t *testing.T) {
	db := openTestDB(t)
	repo := NewQuestionRepository(db)
	ctx := context.Background()

	all := seedQuestions(t, db, 8, 5)
	activeIDs := make(map[model.ID]bool)
	for _, q := range all {
		if q.IsActive {
			activeIDs[q.ID] = true
		}
	}

	for round := 0; round < 20; round++ {
		sample, err := repo.SampleActive(ctx, 5)
		if err != nil {
			t.Fatalf("sample: %v", err)
		}
		if len(sample) != 5 {
			t.Fatalf("sample size = %d", len(sample))
		}
		seen := make(map[model.ID]bool)
		for _, q := range sample {
			if !activeIDs[q.ID] {
				t.Fatalf("sampled inactive question %s", q.ID)
			}
			if seen[q.ID] {
				t.Fatalf("duplicate question %s in sample", q.ID)
			}
			seen[q.ID] = true
			if len(q.Options) != 4 || q.Tags[0] != "seed" {
				t.Fatalf("question content lost: %+v", q)
			}
		}
	}

	short, err := repo.SampleActive(ctx, 20)
	if err != nil {
		t.Fatalf("oversized sample: %v", err)
	}
	if len(short) != 8 {
		t.Fatalf("oversized sample returned %d, want whole pool of 8", len(short))
	}

	n, err := repo.CountActive(ctx)
	if err != nil || n != 8 {
		t.Fatalf("count active = %d, %v", n, err)
	}
}

func TestFetchByIDsReturnsFoundSubset(t *testing.T) {
	db := openTestDB(t)
	repo := NewQuestionRepository(db)

	qs := seedQuestions(t, db, 2, 1)
	ids := []model.ID{qs[0].ID, qs[2].ID, model.NewID()}

	got, err := repo.FetchByIDs(context.Background(), ids)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("fetched %d questions, want 2", len(got))
	}
	for _, q := range got {
		if q.ID == qs[2].ID && q.CorrectIndex != 2 {
			t.Fatalf("inactive question key lost: %+v", q)
		}
	}

	empty, err := repo.FetchByIDs(context.Background(), nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("empty fetch = %v, %v", empty, err)
	}
}

func newStartedSubmission(t *testing.T, db *sql.DB, userID model.ID, startedAt time.Time) *model.Submission {
	t.Helper()
	s := &model.Submission{
		ID:          model.NewID(),
		UserID:      userID,
		ExamID:      model.NewID(),
		QuestionIDs: []model.ID{model.NewID(), model.NewID()},
		StartedAt:   startedAt,
		Status:      model.SubmissionStatusStarted,
	}
	if err := NewSubmissionRepository(db).Create(context.Background(), s); err != nil {
		t.Fatalf("create submission: %v", err)
	}
	return s
}

func TestSubmissionFinalizeIfStarted(t *testing.T) {
	db := openTestDB(t)
	repo := NewSubmissionRepository(db)
	ctx := context.Background()
	user := seedUser(t, db, "grace@example.com")

	s := newStartedSubmission(t, db, user.ID, time.Now().UTC())

	got, err := repo.GetByID(ctx, s.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != model.SubmissionStatusStarted || got.Score != nil || got.SubmittedAt != nil {
		t.Fatalf("fresh submission not pristine: %+v", got)
	}
	if len(got.QuestionIDs) != 2 || got.QuestionIDs[1] != s.QuestionIDs[1] {
		t.Fatalf("question ids not preserved in order: %v", got.QuestionIDs)
	}

	first := model.Finalization{
		Answers:     []model.Answer{{QuestionID: s.QuestionIDs[0], SelectedIndex: 1}},
		Score:       1,
		SubmittedAt: time.Now().UTC(),
		Status:      model.SubmissionStatusSubmitted,
	}
	if err := repo.FinalizeIfStarted(ctx, s.ID, first); err != nil {
		t.Fatalf("first finalize: %v", err)
	}

	second := model.Finalization{Score: 0, SubmittedAt: time.Now().UTC(), Status: model.SubmissionStatusExpired}
	if err := repo.FinalizeIfStarted(ctx, s.ID, second); !errors.Is(err, repository.ErrAlreadyFinalized) {
		t.Fatalf("second finalize err = %v", err)
	}

	got, err = repo.GetByID(ctx, s.ID)
	if err != nil {
		t.Fatalf("get after finalize: %v", err)
	}
	if got.Status != model.SubmissionStatusSubmitted || got.Score == nil || *got.Score != 1 || got.SubmittedAt == nil {
		t.Fatalf("state changed by rejected finalize: %+v", got)
	}
	if len(got.Answers) != 1 || got.Answers[0].SelectedIndex != 1 {
		t.Fatalf("answers = %+v", got.Answers)
	}

	if err := repo.FinalizeIfStarted(ctx, model.NewID(), first); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("missing submission err = %v", err)
	}
}

func TestSubmissionConcurrentFinalizeSucceedsOnce(t *testing.T) {
	db := openTestDB(t)
	repo := NewSubmissionRepository(db)
	user := seedUser(t, db, "linus@example.com")
	s := newStartedSubmission(t, db, user.ID, time.Now().UTC())

	const workers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		rejected  int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(score int) {
			defer wg.Done()
			err := repo.FinalizeIfStarted(context.Background(), s.ID, model.Finalization{
				Score:       score,
				SubmittedAt: time.Now().UTC(),
				Status:      model.SubmissionStatusSubmitted,
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, repository.ErrAlreadyFinalized):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i % 2)
	}
	wg.Wait()

	if successes != 1 || rejected != workers-1 {
		t.Fatalf("successes=%d rejected=%d", successes, rejected)
	}
}

func TestSubmissionListByUser(t *testing.T) {
	db := openTestDB(t)
	repo := NewSubmissionRepository(db)
	ctx := context.Background()
	alice := seedUser(t, db, "alice@example.com")
	bob := seedUser(t, db, "bob@example.com")

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	var newest model.ID
	for i := 0; i < 3; i++ {
		s := newStartedSubmission(t, db, alice.ID, base.Add(time.Duration(i)*time.Hour))
		newest = s.ID
	}
	newStartedSubmission(t, db, bob.ID, base)

	page, total, err := repo.ListByUser(ctx, alice.ID, 2, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 || len(page) != 2 {
		t.Fatalf("total=%d len=%d", total, len(page))
	}
	if page[0].ID != newest {
		t.Fatalf("list not newest first")
	}

	rest, _, err := repo.ListByUser(ctx, alice.ID, 2, 2)
	if err != nil || len(rest) != 1 {
		t.Fatalf("second page = %d, %v", len(rest), err)
	}
}
