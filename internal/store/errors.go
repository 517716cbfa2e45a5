package store

import (
	"errors"

	"github.com/lib/pq"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// Duplicate-field errors map Postgres unique-constraint violations.
// Uniqueness is enforced by the index itself, never by a pre-check, so
// concurrent inserts resolve deterministically to one of these.
var (
	ErrDuplicateUsername = errors.New("username already in use")
	ErrDuplicateEmail    = errors.New("email already registered")
)

const uniqueViolationCode = "23505"

// mapUniqueViolation translates a driver unique-violation error into
// the matching sentinel; any other error passes through unchanged.
func mapUniqueViolation(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolationCode {
		return err
	}
	switch pqErr.Constraint {
	case "users_username_key":
		return ErrDuplicateUsername
	case "users_email_key":
		return ErrDuplicateEmail
	}
	return err
}

// IsDuplicate reports whether err is a unique-constraint sentinel.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicateUsername) || errors.Is(err, ErrDuplicateEmail)
}
