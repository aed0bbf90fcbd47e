package domain

import "time"

// Session is a time-bounded bearer credential for one account.
// Only TokenHash is persisted; Token is handed to the caller once.
type Session struct {
	Token      string    `json:"token"`
	TokenHash  string    `json:"-"`
	AccountID  string    `json:"account_id"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	RememberMe bool      `json:"remember_me"`
	IsActive   bool      `json:"is_active"`
}

// IsExpired reports whether the session is no longer valid at now.
// The boundary itself counts as expired.
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
