package repository

import (
	"errors"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Common repository errors
var (
	// ErrNotFound is returned when a record is not found
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateEmail is returned when trying to store an account with an existing email
	ErrDuplicateEmail = errors.New("account with this email already exists")

	// ErrDuplicateUsername is returned when trying to store an account with an existing username
	ErrDuplicateUsername = errors.New("account with this username already exists")

	// ErrDuplicateToken is returned when trying to create a session with an existing token hash
	ErrDuplicateToken = errors.New("session with this token already exists")

	// ErrDuplicateProgress is returned when an account already has a progress record
	ErrDuplicateProgress = errors.New("progress record already exists")
)

// uniqueViolation reports whether err is a SQLite UNIQUE or PRIMARY KEY
// violation and returns the "table.column" it failed on.
func uniqueViolation(err error) (string, bool) {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return "", false
	}

	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
	default:
		return "", false
	}

	// message ends with "UNIQUE constraint failed: accounts.email (2067)"
	msg := sqliteErr.Error()
	idx := strings.LastIndex(msg, "failed: ")
	if idx < 0 {
		return "", true
	}
	column, _, _ := strings.Cut(msg[idx+len("failed: "):], " ")
	return column, true
}
