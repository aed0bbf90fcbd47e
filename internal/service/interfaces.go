package service

import (
	"context"

	"github.com/prperemyshlev/exam-prep-accounts/internal/domain"
	"github.com/prperemyshlev/exam-prep-accounts/internal/dto"
)

// AccountManager defines the operations UI code may call. It is the only
// way in to the account, session and progress stores.
type AccountManager interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*AuthResult, error)
	Authenticate(ctx context.Context, email, password string, rememberMe bool) (*AuthResult, error)
	CurrentAccount(ctx context.Context) (*domain.SanitizedAccount, error)
	CachedAccount(ctx context.Context) (*domain.SanitizedAccount, error)
	Logout(ctx context.Context) error
	LogoutAll(ctx context.Context, accountID string) (int, error)
	UpdateProfile(ctx context.Context, accountID string, update domain.AccountUpdate) (*domain.SanitizedAccount, error)
	GetProgress(ctx context.Context, accountID string) (*domain.Progress, error)
	UpdateProgress(ctx context.Context, accountID string, patch domain.ProgressPatch) (*domain.Progress, error)
	GetStats(ctx context.Context, accountID string) (*domain.Stats, error)
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}

// AuthResult is returned by a successful register or authenticate
type AuthResult struct {
	User    *domain.SanitizedAccount
	Session *domain.Session
}
