package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrNotFound matches any *NotFoundError via errors.Is.
	ErrNotFound = errors.New("contact not found")

	// ErrDuplicateEmail matches any *UniqueConstraintError via errors.Is.
	ErrDuplicateEmail = errors.New("email already exists")
)

// NotFoundError reports a lookup for an id that does not exist.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Contact with id %d not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// UniqueConstraintError reports a write rejected by the email uniqueness
// constraint. Nothing was written.
type UniqueConstraintError struct {
	Field string
	Value string
}

func (e *UniqueConstraintError) Error() string {
	return fmt.Sprintf("a contact with %s %q already exists", e.Field, e.Value)
}

func (e *UniqueConstraintError) Is(target error) bool {
	return target == ErrDuplicateEmail
}

const pgUniqueViolation = "23505"

// isEmailUniqueViolation recognises the engine-specific error raised when an
// insert or update collides with the unique email column.
func isEmailUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation && strings.Contains(pgErr.ConstraintName, "email")
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		// The primary result code survives whether or not extended codes are on.
		msg := sqliteErr.Error()
		return sqliteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT &&
			strings.Contains(msg, "UNIQUE") && strings.Contains(msg, tableName+".email")
	}

	return false
}
