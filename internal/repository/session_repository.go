package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/prperemyshlev/exam-prep-accounts/internal/domain"
	"github.com/prperemyshlev/exam-prep-accounts/pkg/database"
)

// sessionRepository implements SessionRepository interface
type sessionRepository struct {
	db database.DBTX
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db database.DBTX) SessionRepository {
	return &sessionRepository{db: db}
}

// Create stores a new session keyed by its token hash
func (r *sessionRepository) Create(ctx context.Context, session *domain.Session) error {
	query := `
		INSERT INTO sessions (token_hash, account_id, created_at, expires_at, remember_me, is_active)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		session.TokenHash,
		session.AccountID,
		toUnix(session.CreatedAt),
		toUnix(session.ExpiresAt),
		boolToInt(session.RememberMe),
		boolToInt(session.IsActive),
	)
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return fmt.Errorf("session token collision: %w", ErrDuplicateToken)
		}
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// GetByTokenHash retrieves a session by its token hash. Expired rows are
// returned as-is; judging expiry is up to the caller.
func (r *sessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error) {
	query := `
		SELECT token_hash, account_id, created_at, expires_at, remember_me, is_active
		FROM sessions
		WHERE token_hash = ?
	`

	session, err := scanSession(r.db.QueryRowContext(ctx, query, tokenHash))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("session not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get session by token hash: %w", err)
	}

	return session, nil
}

// GetByAccountID retrieves all sessions of an account, newest first
func (r *sessionRepository) GetByAccountID(ctx context.Context, accountID string) ([]*domain.Session, error) {
	query := `
		SELECT token_hash, account_id, created_at, expires_at, remember_me, is_active
		FROM sessions
		WHERE account_id = ?
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sessions by account id: %w", err)
	}
	defer rows.Close()

	var sessions []*domain.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}

	return sessions, nil
}

// DeleteByTokenHash deletes a session. Deleting a missing session is not an error.
func (r *sessionRepository) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	query := `DELETE FROM sessions WHERE token_hash = ?`

	if _, err := r.db.ExecContext(ctx, query, tokenHash); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

// DeleteExpired deletes every session whose expiry is at or before now
func (r *sessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `DELETE FROM sessions WHERE expires_at <= ?`

	result, err := r.db.ExecContext(ctx, query, toUnix(now))
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return n, nil
}

func scanSession(row rowScanner) (*domain.Session, error) {
	session := &domain.Session{}
	var (
		createdAt, expiresAt int64
		rememberMe, isActive int
	)

	if err := row.Scan(
		&session.TokenHash,
		&session.AccountID,
		&createdAt,
		&expiresAt,
		&rememberMe,
		&isActive,
	); err != nil {
		return nil, err
	}

	session.CreatedAt = fromUnix(createdAt)
	session.ExpiresAt = fromUnix(expiresAt)
	session.RememberMe = rememberMe != 0
	session.IsActive = isActive != 0

	return session, nil
}
