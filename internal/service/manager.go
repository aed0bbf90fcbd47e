package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prperemyshlev/exam-prep-accounts/internal/domain"
	"github.com/prperemyshlev/exam-prep-accounts/internal/dto"
	"github.com/prperemyshlev/exam-prep-accounts/internal/repository"
	"github.com/prperemyshlev/exam-prep-accounts/internal/utils"
	"github.com/prperemyshlev/exam-prep-accounts/pkg/observability"
	"go.uber.org/zap"
)

// Slot keys on the durable and ephemeral key-value stores
const (
	sessionTokenSlot  = "session_token"
	cachedAccountSlot = "cached_account"
)

// ManagerConfig holds the tunables of a Manager
type ManagerConfig struct {
	SessionTTL    time.Duration
	RememberMeTTL time.Duration
	// Now is the clock used for timestamps and expiry; defaults to time.Now
	Now func() time.Time
}

// Manager owns the account, session and progress stores and the state of
// the current session. Use one Manager per process.
type Manager struct {
	store     *repository.Store
	durable   repository.KeyValueRepository
	ephemeral repository.KeyValueRepository
	hasher    *utils.PasswordHasher
	tokens    *utils.SessionTokenIssuer
	limiter   AttemptLimiter
	metrics   *observability.AccountMetrics
	logger    *zap.Logger

	sessionTTL    time.Duration
	rememberMeTTL time.Duration
	now           func() time.Time

	// dummyHash is verified against for unknown emails so that a miss costs
	// as much as a wrong password
	dummyHash string

	mu      sync.RWMutex
	current *domain.SanitizedAccount
}

// NewManager creates a new manager. limiter and metrics may be nil.
func NewManager(
	store *repository.Store,
	hasher *utils.PasswordHasher,
	tokens *utils.SessionTokenIssuer,
	limiter AttemptLimiter,
	metrics *observability.AccountMetrics,
	logger *zap.Logger,
	cfg ManagerConfig,
) *Manager {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	dummyHash, err := hasher.Hash("unknown-account-placeholder")
	if err != nil {
		logger.Warn("failed to prepare placeholder password hash", zap.Error(err))
	}

	return &Manager{
		store:         store,
		durable:       store.Storage,
		ephemeral:     repository.NewMemoryKeyValueRepository(),
		hasher:        hasher,
		tokens:        tokens,
		limiter:       limiter,
		metrics:       metrics,
		logger:        logger,
		sessionTTL:    cfg.SessionTTL,
		rememberMeTTL: cfg.RememberMeTTL,
		now:           now,
		dummyHash:     dummyHash,
	}
}

// Register validates req, creates the account with an empty progress
// record and signs the new account in.
func (m *Manager) Register(ctx context.Context, req *dto.RegisterRequest) (*AuthResult, error) {
	email := utils.SanitizeEmail(req.Email)
	username := utils.NormalizeName(req.Username)
	firstName := utils.NormalizeName(req.FirstName)
	lastName := utils.NormalizeName(req.LastName)

	if err := validateRegistration(email, username, firstName, lastName, req.Password); err != nil {
		return nil, validationError(err)
	}

	// Fast path for the common case; the unique indexes decide under a race
	if err := m.ensureAvailable(ctx, email, username); err != nil {
		return nil, err
	}

	passwordHash, err := m.hasher.Hash(req.Password)
	if err != nil {
		return nil, storeFailure("failed to hash password", err)
	}

	now := m.now()
	account := &domain.Account{
		Email:        email,
		Username:     username,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
		IsActive:     true,
		Role:         domain.RoleStudent,
		Preferences:  domain.DefaultPreferences(req.RememberMe),
	}

	err = m.store.InTx(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		if err := repos.Account.Create(ctx, account); err != nil {
			return err
		}
		return repos.Progress.Create(ctx, domain.NewProgress(account.ID, now))
	})
	if err != nil {
		return nil, mapAccountWriteError("failed to create account", err)
	}

	session, err := m.issueSession(ctx, account.ID, req.RememberMe)
	if err != nil {
		return nil, err
	}

	user := account.Sanitize()
	if err := m.startSession(ctx, user, session); err != nil {
		return nil, err
	}

	m.metrics.RecordRegistration(ctx)
	m.logger.Info("account registered",
		zap.String("account_id", account.ID),
		zap.Bool("remember_me", req.RememberMe),
	)

	return &AuthResult{User: user, Session: session}, nil
}

func validateRegistration(email, username, firstName, lastName, password string) error {
	validators := []func() error{
		func() error { return utils.ValidateEmail(email) },
		func() error { return utils.ValidateUsername(username) },
		func() error { return utils.ValidateFirstName(firstName) },
		func() error { return utils.ValidateLastName(lastName) },
		func() error { return utils.ValidatePassword(password) },
	}

	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}

	return nil
}

func (m *Manager) ensureAvailable(ctx context.Context, email, username string) error {
	_, err := m.store.Account.GetByEmail(ctx, email)
	if err == nil {
		return duplicateAccount("an account with this email already exists", repository.ErrDuplicateEmail)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return storeFailure("failed to check account existence", err)
	}

	_, err = m.store.Account.GetByUsername(ctx, username)
	if err == nil {
		return duplicateAccount("this username is already taken", repository.ErrDuplicateUsername)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return storeFailure("failed to check account existence", err)
	}

	return nil
}

func mapAccountWriteError(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrDuplicateEmail):
		return duplicateAccount("an account with this email already exists", err)
	case errors.Is(err, repository.ErrDuplicateUsername):
		return duplicateAccount("this username is already taken", err)
	default:
		return storeFailure(op, err)
	}
}

// Authenticate checks credentials and signs the account in. Unknown email
// and wrong password fail with the same InvalidCredentials error.
func (m *Manager) Authenticate(ctx context.Context, email, password string, rememberMe bool) (*AuthResult, error) {
	email = utils.SanitizeEmail(email)

	result, err := m.authenticate(ctx, email, password, rememberMe)
	m.metrics.RecordAuthentication(ctx, authOutcome(err))
	if err != nil {
		m.logger.Info("authentication failed",
			zap.String("email", email),
			zap.String("reason", string(KindOf(err))),
		)
		return nil, err
	}

	return result, nil
}

func (m *Manager) authenticate(ctx context.Context, email, password string, rememberMe bool) (*AuthResult, error) {
	if m.limiter != nil {
		allowed, err := m.limiter.Allow(ctx, email)
		if err != nil {
			// Throttling is best effort; a broken limiter must not lock users out
			m.logger.Warn("attempt limiter unavailable", zap.Error(err))
		} else if !allowed {
			return nil, tooManyAttempts(nil)
		}
	}

	account, err := m.store.Account.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			m.verifyPlaceholder(password)
			return nil, invalidCredentials()
		}
		return nil, storeFailure("failed to get account", err)
	}

	ok, err := m.hasher.Verify(password, account.PasswordHash)
	if err != nil {
		return nil, storeFailure("failed to verify password", err)
	}
	if !ok {
		return nil, invalidCredentials()
	}

	if !account.IsActive {
		return nil, accountDeactivated()
	}

	now := m.now()
	if err := m.store.Account.UpdateLastLogin(ctx, account.ID, now); err != nil {
		m.logger.Warn("failed to update last login",
			zap.String("account_id", account.ID),
			zap.Error(err),
		)
	} else {
		account.LastLoginAt = &now
	}

	session, err := m.issueSession(ctx, account.ID, rememberMe)
	if err != nil {
		return nil, err
	}

	user := account.Sanitize()
	if err := m.startSession(ctx, user, session); err != nil {
		return nil, err
	}

	if m.limiter != nil {
		if err := m.limiter.Reset(ctx, email); err != nil {
			m.logger.Warn("failed to reset login attempts", zap.Error(err))
		}
	}

	return &AuthResult{User: user, Session: session}, nil
}

func (m *Manager) verifyPlaceholder(password string) {
	if m.dummyHash != "" {
		_, _ = m.hasher.Verify(password, m.dummyHash)
	}
}

func authOutcome(err error) string {
	if err == nil {
		return "success"
	}
	return string(KindOf(err))
}

// UpdateProfile applies update to the account. Present fields are
// normalized and checked with the registration rules.
func (m *Manager) UpdateProfile(ctx context.Context, accountID string, update domain.AccountUpdate) (*domain.SanitizedAccount, error) {
	account, err := m.getAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if err := normalizeUpdate(&update); err != nil {
		return nil, validationError(err)
	}

	update.Apply(account)
	return m.saveAccount(ctx, account)
}

// SetActive activates or deactivates an account. It is not reachable from
// the profile update, so an account cannot reactivate itself. A deactivated
// account keeps its live sessions but cannot sign in again.
func (m *Manager) SetActive(ctx context.Context, accountID string, active bool) (*domain.SanitizedAccount, error) {
	account, err := m.getAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	account.IsActive = active
	user, err := m.saveAccount(ctx, account)
	if err != nil {
		return nil, err
	}

	m.logger.Info("account activation changed",
		zap.String("account_id", accountID),
		zap.Bool("is_active", active),
	)

	return user, nil
}

func (m *Manager) getAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := m.store.Account.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, accountNotFound(accountID, err)
		}
		return nil, storeFailure("failed to get account", err)
	}
	return account, nil
}

// saveAccount stamps and writes account, then refreshes the current
// account and its snapshot when it is the signed-in one
func (m *Manager) saveAccount(ctx context.Context, account *domain.Account) (*domain.SanitizedAccount, error) {
	account.UpdatedAt = m.now()

	if err := m.store.Account.Update(ctx, account); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, accountNotFound(account.ID, err)
		}
		return nil, mapAccountWriteError("failed to update account", err)
	}

	user := account.Sanitize()

	m.mu.Lock()
	isCurrent := m.current != nil && m.current.ID == user.ID
	if isCurrent {
		m.current = user
	}
	m.mu.Unlock()

	if isCurrent {
		m.cacheSnapshot(ctx, user)
	}

	return user, nil
}

func normalizeUpdate(update *domain.AccountUpdate) error {
	if update.Email != nil {
		email := utils.SanitizeEmail(*update.Email)
		if err := utils.ValidateEmail(email); err != nil {
			return err
		}
		update.Email = &email
	}
	if update.Username != nil {
		username := utils.NormalizeName(*update.Username)
		if err := utils.ValidateUsername(username); err != nil {
			return err
		}
		update.Username = &username
	}
	if update.FirstName != nil {
		name := utils.NormalizeName(*update.FirstName)
		if err := utils.ValidateFirstName(name); err != nil {
			return err
		}
		update.FirstName = &name
	}
	if update.LastName != nil {
		name := utils.NormalizeName(*update.LastName)
		if err := utils.ValidateLastName(name); err != nil {
			return err
		}
		update.LastName = &name
	}
	return nil
}

// PurgeExpiredSessions deletes every session that has expired by now
func (m *Manager) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	n, err := m.store.Session.DeleteExpired(ctx, m.now())
	if err != nil {
		return 0, storeFailure("failed to purge sessions", err)
	}

	m.metrics.RecordSessionsPurged(ctx, n)
	if n > 0 {
		m.logger.Info("purged expired sessions", zap.Int64("count", n))
	}

	return n, nil
}
