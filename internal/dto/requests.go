package dto

import "github.com/prperemyshlev/exam-prep-accounts/internal/domain"

// RegisterRequest represents a registration request. Field rules are
// checked by the manager so the first failing rule decides the message.
type RegisterRequest struct {
	Email      string `json:"email"`
	Username   string `json:"username"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email      string `json:"email" binding:"required"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"remember_me"`
}

// UpdateAccountRequest is the whitelisted set of account fields a user may change
type UpdateAccountRequest = domain.AccountUpdate

// UpdateProgressRequest is a partial progress update
type UpdateProgressRequest = domain.ProgressPatch
