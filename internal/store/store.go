// Package store opens the repositories for the configured storage driver.
package store

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/stemsi/exam-engine/internal/config"
	"github.com/stemsi/exam-engine/internal/database"
	"github.com/stemsi/exam-engine/internal/model"
	"github.com/stemsi/exam-engine/internal/repository"
	"github.com/stemsi/exam-engine/internal/repository/sqlite"
	"github.com/stemsi/exam-engine/internal/service"
)

// ExamStore is the exam catalog plus the writes used by tooling.
type ExamStore interface {
	service.ExamCatalog
	Create(ctx context.Context, e *model.Exam) error
	DeleteAll(ctx context.Context) ([]model.ID, error)
}

// QuestionStore is the question bank plus the writes used by tooling.
type QuestionStore interface {
	service.QuestionBank
	CountActive(ctx context.Context) (int, error)
	Create(ctx context.Context, q *model.Question) error
	DeleteAll(ctx context.Context) error
}

// Stores bundles one backend's repositories.
type Stores struct {
	Driver      string
	Users       service.UserStore
	Exams       ExamStore
	Questions   QuestionStore
	Submissions service.SubmissionStore

	ping  func(ctx context.Context) error
	close func()
}

// Ping checks the backing database.
func (s *Stores) Ping(ctx context.Context) error { return s.ping(ctx) }

// Close releases the database handle.
func (s *Stores) Close() { s.close() }

// Open connects to the database selected by cfg.StoreDriver.
// SQLite schemas are created on open; PostgreSQL relies on cmd/migrate.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Stores, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		pool, err := database.NewPostgresPool(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return &Stores{
			Driver:      cfg.StoreDriver,
			Users:       repository.NewUserRepository(pool),
			Exams:       repository.NewExamRepository(pool),
			Questions:   repository.NewQuestionRepository(pool),
			Submissions: repository.NewSubmissionRepository(pool),
			ping:        pool.Ping,
			close:       pool.Close,
		}, nil

	case config.StoreDriverSQLite:
		db, err := database.NewSQLiteDB(ctx, cfg.SQLitePath, log)
		if err != nil {
			return nil, err
		}
		if err := sqlite.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return &Stores{
			Driver:      cfg.StoreDriver,
			Users:       sqlite.NewUserRepository(db),
			Exams:       sqlite.NewExamRepository(db),
			Questions:   sqlite.NewQuestionRepository(db),
			Submissions: sqlite.NewSubmissionRepository(db),
			ping:        db.PingContext,
			close:       func() { _ = db.Close() },
		}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
