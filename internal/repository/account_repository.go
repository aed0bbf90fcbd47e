package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prperemyshlev/exam-prep-accounts/internal/domain"
	"github.com/prperemyshlev/exam-prep-accounts/pkg/database"
)

const accountColumns = `id, email, username, first_name, last_name, password_hash,
	created_at, updated_at, last_login_at, is_active, role, preferences, profile`

// accountRepository implements AccountRepository interface
type accountRepository struct {
	db database.DBTX
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db database.DBTX) AccountRepository {
	return &accountRepository{db: db}
}

// Create inserts a new account. Email and username uniqueness is enforced
// by the unique indexes, so concurrent registrations cannot both succeed.
func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	// Generate UUID if not provided
	if account.ID == "" {
		account.ID = uuid.New().String()
	}

	now := time.Now()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	if account.UpdatedAt.IsZero() {
		account.UpdatedAt = account.CreatedAt
	}
	if account.Role == "" {
		account.Role = domain.RoleStudent
	}

	preferences, profile, err := encodeAccountDocs(account)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, query,
		account.ID,
		account.Email,
		account.Username,
		account.FirstName,
		account.LastName,
		account.PasswordHash,
		toUnix(account.CreatedAt),
		toUnix(account.UpdatedAt),
		nullableUnix(account.LastLoginAt),
		boolToInt(account.IsActive),
		string(account.Role),
		preferences,
		profile,
	)
	if err != nil {
		if dupErr := accountDuplicate(err, account); dupErr != nil {
			return dupErr
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// GetByID retrieves an account by ID
func (r *accountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.getBy(ctx, "id", id)
}

// GetByEmail retrieves an account by its normalized email
func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.getBy(ctx, "email", email)
}

// GetByUsername retrieves an account by username
func (r *accountRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	return r.getBy(ctx, "username", username)
}

func (r *accountRepository) getBy(ctx context.Context, column, value string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE ` + column + ` = ?`

	account, err := scanAccount(r.db.QueryRowContext(ctx, query, value))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("account with %s %s not found: %w", column, value, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get account by %s: %w", column, err)
	}

	return account, nil
}

// Update writes every mutable column of an existing account
func (r *accountRepository) Update(ctx context.Context, account *domain.Account) error {
	query := `
		UPDATE accounts
		SET email = ?, username = ?, first_name = ?, last_name = ?, password_hash = ?,
			updated_at = ?, is_active = ?, role = ?, preferences = ?, profile = ?
		WHERE id = ?
	`

	preferences, profile, err := encodeAccountDocs(account)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, query,
		account.Email,
		account.Username,
		account.FirstName,
		account.LastName,
		account.PasswordHash,
		toUnix(account.UpdatedAt),
		boolToInt(account.IsActive),
		string(account.Role),
		preferences,
		profile,
		account.ID,
	)
	if err != nil {
		if dupErr := accountDuplicate(err, account); dupErr != nil {
			return dupErr
		}
		return fmt.Errorf("failed to update account: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("account with id %s not found: %w", account.ID, ErrNotFound)
	}

	return nil
}

// UpdateLastLogin updates the last login timestamp for an account
func (r *accountRepository) UpdateLastLogin(ctx context.Context, accountID string, at time.Time) error {
	query := `
		UPDATE accounts
		SET last_login_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, toUnix(at), accountID)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("account with id %s not found: %w", accountID, ErrNotFound)
	}

	return nil
}

func accountDuplicate(err error, account *domain.Account) error {
	column, ok := uniqueViolation(err)
	if !ok {
		return nil
	}

	switch {
	case strings.HasSuffix(column, ".username"):
		return fmt.Errorf("account with username %s already exists: %w", account.Username, ErrDuplicateUsername)
	default:
		return fmt.Errorf("account with email %s already exists: %w", account.Email, ErrDuplicateEmail)
	}
}

func encodeAccountDocs(account *domain.Account) (string, string, error) {
	preferences, err := json.Marshal(account.Preferences)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode preferences: %w", err)
	}

	profile, err := json.Marshal(account.Profile)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode profile: %w", err)
	}

	return string(preferences), string(profile), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	account := &domain.Account{}
	var (
		createdAt, updatedAt int64
		lastLoginAt          sql.NullInt64
		isActive             int
		role                 string
		preferences, profile string
	)

	err := row.Scan(
		&account.ID,
		&account.Email,
		&account.Username,
		&account.FirstName,
		&account.LastName,
		&account.PasswordHash,
		&createdAt,
		&updatedAt,
		&lastLoginAt,
		&isActive,
		&role,
		&preferences,
		&profile,
	)
	if err != nil {
		return nil, err
	}

	account.CreatedAt = fromUnix(createdAt)
	account.UpdatedAt = fromUnix(updatedAt)
	account.LastLoginAt = timeFromNullable(lastLoginAt)
	account.IsActive = isActive != 0
	account.Role = domain.Role(role)

	if err := json.Unmarshal([]byte(preferences), &account.Preferences); err != nil {
		return nil, fmt.Errorf("failed to decode preferences: %w", err)
	}
	if err := json.Unmarshal([]byte(profile), &account.Profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}

	return account, nil
}

func nullableUnix(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toUnix(*t), Valid: true}
}

func timeFromNullable(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := fromUnix(n.Int64)
	return &t
}
