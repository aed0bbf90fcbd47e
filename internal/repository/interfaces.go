package repository

import (
	"context"
	"time"

	"github.com/prperemyshlev/exam-prep-accounts/internal/domain"
)

// AccountRepository defines methods for account operations
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
	Update(ctx context.Context, account *domain.Account) error
	UpdateLastLogin(ctx context.Context, accountID string, at time.Time) error
}

// SessionRepository defines methods for session operations
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error)
	GetByAccountID(ctx context.Context, accountID string) ([]*domain.Session, error)
	DeleteByTokenHash(ctx context.Context, tokenHash string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// ProgressRepository defines methods for study progress operations
type ProgressRepository interface {
	Create(ctx context.Context, progress *domain.Progress) error
	GetByAccountID(ctx context.Context, accountID string) (*domain.Progress, error)
	Upsert(ctx context.Context, progress *domain.Progress) error
}

// KeyValueRepository is a string slot store. Get returns ("", false, nil)
// for a missing key; Delete of a missing key is not an error.
type KeyValueRepository interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
