package model

import (
	"database/sql/driver"
	"errors"

	"github.com/google/uuid"
)

// ErrInvalidID is returned when a string is not a well-formed identifier.
var ErrInvalidID = errors.New("invalid id format")

// ID is the opaque identifier shared by users, exams, questions and submissions.
// It is format-checked once at the boundary and compared by value afterwards.
type ID uuid.UUID

// NewID returns a fresh random identifier.
func NewID() ID {
	return ID(uuid.New())
}

// ParseID validates and parses the canonical textual form of an ID.
func ParseID(s string) (ID, error) {
	if len(s) != 36 {
		return ID{}, ErrInvalidID
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return ID{}, ErrInvalidID
	}
	return ID(u), nil
}

// MustParseID is ParseID for fixtures and seeds; it panics on bad input.
func MustParseID(s string) ID {
	id, err := ParseID(s)
	if err != nil {
		panic(err)
	}
	return id
}

func (id ID) String() string {
	return uuid.UUID(id).String()
}

// IsZero reports whether the ID was never assigned.
func (id ID) IsZero() bool {
	return id == ID{}
}

// UUID exposes the underlying value for drivers that bind uuid columns natively.
func (id ID) UUID() uuid.UUID {
	return uuid.UUID(id)
}

func (id ID) MarshalText() ([]byte, error) {
	return uuid.UUID(id).MarshalText()
}

func (id *ID) UnmarshalText(b []byte) error {
	parsed, err := ParseID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Value implements driver.Valuer so IDs bind as text in SQL drivers.
func (id ID) Value() (driver.Value, error) {
	return id.String(), nil
}

// Scan implements sql.Scanner.
func (id *ID) Scan(src any) error {
	var u uuid.UUID
	if err := u.Scan(src); err != nil {
		return err
	}
	*id = ID(u)
	return nil
}

// IDsToUUIDs converts a slice for array binding (e.g. uuid[] columns).
func IDsToUUIDs(ids []ID) []uuid.UUID {
	out := make([]uuid.UUID, len(ids))
	for i, id := range ids {
		out[i] = uuid.UUID(id)
	}
	return out
}

// UUIDsToIDs is the inverse of IDsToUUIDs.
func UUIDsToIDs(us []uuid.UUID) []ID {
	out := make([]ID, len(us))
	for i, u := range us {
		out[i] = ID(u)
	}
	return out
}
