// Package sqlite implements the repositories on SQLite for local runs and tests.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sqlite3 "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS exams (
	id               TEXT PRIMARY KEY,
	title            TEXT NOT NULL,
	duration_seconds INTEGER NOT NULL CHECK (duration_seconds >= 60),
	total_questions  INTEGER NOT NULL CHECK (total_questions BETWEEN 1 AND 100),
	is_active        BOOLEAN NOT NULL DEFAULT 1,
	created_at       TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS questions (
	id            TEXT PRIMARY KEY,
	text          TEXT NOT NULL,
	options       TEXT NOT NULL,
	correct_index INTEGER NOT NULL CHECK (correct_index >= 0),
	tags          TEXT NOT NULL DEFAULT '[]',
	difficulty    TEXT NOT NULL DEFAULT 'easy' CHECK (difficulty IN ('easy', 'medium', 'hard')),
	is_active     BOOLEAN NOT NULL DEFAULT 1,
	created_at    TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_questions_active ON questions (is_active);

CREATE TABLE IF NOT EXISTS submissions (
	id           TEXT PRIMARY KEY,
	user_id      TEXT NOT NULL REFERENCES users (id),
	exam_id      TEXT NOT NULL,
	question_ids TEXT NOT NULL,
	answers      TEXT NOT NULL DEFAULT '[]',
	score        INTEGER,
	started_at   TIMESTAMP NOT NULL,
	submitted_at TIMESTAMP,
	status       TEXT NOT NULL DEFAULT 'started' CHECK (status IN ('started', 'submitted', 'expired')),
	CHECK ((status = 'started') = (score IS NULL))
);

CREATE INDEX IF NOT EXISTS idx_submissions_user ON submissions (user_id, started_at DESC);
`

// Migrate creates the schema if it does not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply sqlite schema: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

type rowScanner interface {
	Scan(dest ...any) error
}
