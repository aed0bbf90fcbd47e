package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/prperemyshlev/exam-prep-accounts/internal/domain"
	"github.com/prperemyshlev/exam-prep-accounts/internal/repository"
	"github.com/prperemyshlev/exam-prep-accounts/internal/utils"
	"go.uber.org/zap"
)

// issueSession signs a token for accountID and stores its session row
func (m *Manager) issueSession(ctx context.Context, accountID string, rememberMe bool) (*domain.Session, error) {
	ttl := m.sessionTTL
	if rememberMe {
		ttl = m.rememberMeTTL
	}

	now := m.now()
	token, claims, err := m.tokens.Issue(accountID, now, now.Add(ttl))
	if err != nil {
		return nil, storeFailure("failed to issue session token", err)
	}

	session := &domain.Session{
		Token:      token,
		TokenHash:  utils.HashToken(token),
		AccountID:  claims.AccountID,
		CreatedAt:  claims.IssuedAt,
		ExpiresAt:  claims.ExpiresAt,
		RememberMe: rememberMe,
		IsActive:   true,
	}

	if err := m.store.Session.Create(ctx, session); err != nil {
		return nil, storeFailure("failed to save session", err)
	}

	m.logger.Debug("session issued",
		zap.String("session_id", claims.SessionID),
		zap.String("account_id", accountID),
		zap.Bool("remember_me", rememberMe),
	)

	return session, nil
}

// startSession makes user the current account and stores the token in the
// slot matching the session's remember-me flag
func (m *Manager) startSession(ctx context.Context, user *domain.SanitizedAccount, session *domain.Session) error {
	// A token left in the other slot would shadow the new one
	if err := m.clearSlots(ctx); err != nil {
		return storeFailure("failed to clear session slots", err)
	}

	slot := m.ephemeral
	if session.RememberMe {
		slot = m.durable
	}
	if err := slot.Set(ctx, sessionTokenSlot, session.Token); err != nil {
		return storeFailure("failed to store session token", err)
	}

	m.setCurrent(user)
	m.cacheSnapshot(ctx, user)

	return nil
}

// CurrentAccount resolves the stored session token to its account. A
// missing, forged, unknown or expired session logs out and yields nil.
func (m *Manager) CurrentAccount(ctx context.Context) (*domain.SanitizedAccount, error) {
	token, ok, err := m.storedToken(ctx)
	if err != nil {
		return nil, storeFailure("failed to read session token", err)
	}
	if !ok {
		m.setCurrent(nil)
		return nil, nil
	}

	claims, err := m.tokens.Parse(token)
	if err != nil {
		m.logger.Warn("discarding unverifiable session token", zap.Error(err))
		return nil, m.Logout(ctx)
	}

	session, err := m.store.Session.GetByTokenHash(ctx, utils.HashToken(token))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, m.Logout(ctx)
		}
		return nil, storeFailure("failed to get session", err)
	}

	if session.AccountID != claims.AccountID {
		m.logger.Warn("session token does not match its session",
			zap.String("session_id", claims.SessionID),
			zap.String("account_id", session.AccountID),
		)
		return nil, m.Logout(ctx)
	}

	if session.IsExpired(m.now()) {
		m.logger.Info("session expired",
			zap.String("account_id", session.AccountID),
			zap.Time("expires_at", session.ExpiresAt),
		)
		return nil, m.Logout(ctx)
	}

	account, err := m.store.Account.GetByID(ctx, session.AccountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, m.Logout(ctx)
		}
		return nil, storeFailure("failed to get account", err)
	}

	user := account.Sanitize()
	m.setCurrent(user)
	m.cacheSnapshot(ctx, user)

	return user, nil
}

// CachedAccount returns the last account snapshot without touching the
// session store. It is not authoritative; use CurrentAccount for that.
func (m *Manager) CachedAccount(ctx context.Context) (*domain.SanitizedAccount, error) {
	raw, ok, err := m.durable.Get(ctx, cachedAccountSlot)
	if err != nil {
		return nil, storeFailure("failed to read cached account", err)
	}
	if !ok {
		return nil, nil
	}

	var user domain.SanitizedAccount
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		m.logger.Warn("dropping unreadable account snapshot", zap.Error(err))
		if err := m.durable.Delete(ctx, cachedAccountSlot); err != nil {
			m.logger.Warn("failed to drop account snapshot", zap.Error(err))
		}
		return nil, nil
	}

	return &user, nil
}

// Logout ends the current session. It is safe to call with no session.
func (m *Manager) Logout(ctx context.Context) error {
	var errs []error

	for _, slot := range []repository.KeyValueRepository{m.durable, m.ephemeral} {
		token, ok, err := slot.Get(ctx, sessionTokenSlot)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			if err := m.store.Session.DeleteByTokenHash(ctx, utils.HashToken(token)); err != nil {
				errs = append(errs, err)
			}
		}
	}

	if err := m.clearSlots(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := m.durable.Delete(ctx, cachedAccountSlot); err != nil {
		errs = append(errs, err)
	}

	m.setCurrent(nil)

	if err := errors.Join(errs...); err != nil {
		return storeFailure("failed to log out", err)
	}

	return nil
}

// LogoutAll ends every session of accountID, including ones held by tokens
// this manager never stored. The current session is logged out as well when
// it belongs to accountID. It returns the number of sessions ended.
func (m *Manager) LogoutAll(ctx context.Context, accountID string) (int, error) {
	var ended int
	err := m.store.InTx(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		sessions, err := repos.Session.GetByAccountID(ctx, accountID)
		if err != nil {
			return err
		}
		for _, session := range sessions {
			if err := repos.Session.DeleteByTokenHash(ctx, session.TokenHash); err != nil {
				return err
			}
		}
		ended = len(sessions)
		return nil
	})
	if err != nil {
		return 0, storeFailure("failed to end sessions", err)
	}

	if current := m.Current(); current != nil && current.ID == accountID {
		if err := m.Logout(ctx); err != nil {
			return ended, err
		}
	}

	m.logger.Info("ended all sessions",
		zap.String("account_id", accountID),
		zap.Int("count", ended),
	)

	return ended, nil
}

func (m *Manager) storedToken(ctx context.Context) (string, bool, error) {
	for _, slot := range []repository.KeyValueRepository{m.durable, m.ephemeral} {
		token, ok, err := slot.Get(ctx, sessionTokenSlot)
		if err != nil {
			return "", false, err
		}
		if ok && token != "" {
			return token, true, nil
		}
	}
	return "", false, nil
}

func (m *Manager) clearSlots(ctx context.Context) error {
	return errors.Join(
		m.durable.Delete(ctx, sessionTokenSlot),
		m.ephemeral.Delete(ctx, sessionTokenSlot),
	)
}

// cacheSnapshot is best effort; the snapshot only speeds up UI reads
func (m *Manager) cacheSnapshot(ctx context.Context, user *domain.SanitizedAccount) {
	raw, err := json.Marshal(user)
	if err == nil {
		err = m.durable.Set(ctx, cachedAccountSlot, string(raw))
	}
	if err != nil {
		m.logger.Warn("failed to cache account snapshot",
			zap.String("account_id", user.ID),
			zap.Error(err),
		)
	}
}

func (m *Manager) setCurrent(user *domain.SanitizedAccount) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = user
}

// Current returns the in-memory current account without any store access
func (m *Manager) Current() *domain.SanitizedAccount {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}
