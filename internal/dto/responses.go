package dto

import "github.com/prperemyshlev/exam-prep-accounts/internal/domain"

// AuthResponse is returned by register and login
type AuthResponse struct {
	Success bool                     `json:"success"`
	User    *domain.SanitizedAccount `json:"user"`
	Session *SessionInfo             `json:"session"`
}

// SessionInfo describes an issued session
type SessionInfo struct {
	Token      string `json:"token"`
	ExpiresAt  string `json:"expires_at"`
	ExpiresIn  int    `json:"expires_in"`
	RememberMe bool   `json:"remember_me"`
}

// AccountResponse wraps a sanitized account
type AccountResponse struct {
	Success bool                     `json:"success"`
	User    *domain.SanitizedAccount `json:"user"`
}

// ProgressResponse wraps a progress record; Progress is null when none exists
type ProgressResponse struct {
	Success  bool             `json:"success"`
	Progress *domain.Progress `json:"progress"`
}

// StatsResponse wraps derived statistics; Stats is null when no progress exists
type StatsResponse struct {
	Success bool          `json:"success"`
	Stats   *domain.Stats `json:"stats"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// LogoutAllResponse reports how many sessions were ended
type LogoutAllResponse struct {
	Success       bool `json:"success"`
	SessionsEnded int  `json:"sessions_ended"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}
