package repository

import (
	"context"
	"time"

	"github.com/prperemyshlev/exam-prep-accounts/pkg/database"
)

// Repositories holds all repository interfaces bound to one handle
type Repositories struct {
	Account  AccountRepository
	Session  SessionRepository
	Progress ProgressRepository
	Storage  KeyValueRepository
}

// NewRepositories creates all repositories over db, which may be a transaction
func NewRepositories(db database.DBTX) *Repositories {
	return &Repositories{
		Account:  NewAccountRepository(db),
		Session:  NewSessionRepository(db),
		Progress: NewProgressRepository(db),
		Storage:  NewSQLiteKeyValueRepository(db),
	}
}

// Store owns the embedded database and hands out repositories,
// either directly or scoped to a transaction.
type Store struct {
	db *database.SQLite
	*Repositories
}

// NewStore creates a store over an opened database
func NewStore(db *database.SQLite) *Store {
	return &Store{
		db:           db,
		Repositories: NewRepositories(db.DB),
	}
}

// InTx runs fn with repositories bound to a single transaction
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, repos *Repositories) error) error {
	return database.WithTx(ctx, s.db.DB, func(ctx context.Context, tx database.DBTX) error {
		return fn(ctx, NewRepositories(tx))
	})
}

func toUnix(t time.Time) int64 {
	return t.UTC().UnixNano()
}

func fromUnix(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
