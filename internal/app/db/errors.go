package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"mikuchat/internal/app/user"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique constraint violations.
const uniqueViolation = "23505"

// mapUserConstraintError translates a unique violation on the users table
// into the matching user package error so callers never see driver errors.
func mapUserConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return err
	}

	switch {
	case strings.Contains(pgErr.ConstraintName, "username"):
		return user.ErrDuplicateUsername
	case strings.Contains(pgErr.ConstraintName, "email"):
		return user.ErrDuplicateEmail
	case strings.Contains(pgErr.ConstraintName, "google_id"):
		return user.ErrDuplicateGoogleID
	default:
		return err
	}
}
