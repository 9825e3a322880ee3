package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Storage-level errors shared by every backend.
var (
	ErrNotFound         = errors.New("record not found")
	ErrAlreadyFinalized = errors.New("submission already finalized")
	ErrDuplicateEmail   = errors.New("user with this email already exists")
)

// mapErr translates driver errors into the storage-level sentinels.
func mapErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
