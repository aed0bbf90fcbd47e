package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/exam-prep-accounts/internal/domain"
	"github.com/prperemyshlev/exam-prep-accounts/internal/dto"
	"github.com/prperemyshlev/exam-prep-accounts/internal/service"
)

// AuthHandler handles registration and session requests
type AuthHandler struct {
	manager service.AccountManager
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(manager service.AccountManager) *AuthHandler {
	return &AuthHandler{
		manager: manager,
	}
}

// Register handles account registration
// @Summary Register a new account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration request"
// @Success 201 {object} dto.AuthResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.manager.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, authResponse(result))
}

// Login handles authentication
// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login request"
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "email and password are required")
		return
	}

	result, err := h.manager.Authenticate(c.Request.Context(), req.Email, req.Password, req.RememberMe)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, authResponse(result))
}

// Logout ends the current session; it succeeds without one too
// @Summary Log out
// @Tags auth
// @Produce json
// @Success 200 {object} dto.SuccessResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.manager.Logout(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{
		Success: true,
		Message: "Logged out successfully",
	})
}

// LogoutAll ends every session of the current account
// @Summary Log out everywhere
// @Tags auth
// @Produce json
// @Success 200 {object} dto.LogoutAllResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /auth/logout-all [post]
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	ended, err := h.manager.LogoutAll(c.Request.Context(), c.GetString(ctxAccountID))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.LogoutAllResponse{
		Success:       true,
		SessionsEnded: ended,
	})
}

// GetMe returns the account of the current session
// @Summary Get current account
// @Tags auth
// @Produce json
// @Success 200 {object} dto.AccountResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) GetMe(c *gin.Context) {
	c.JSON(http.StatusOK, dto.AccountResponse{
		Success: true,
		User:    currentAccount(c),
	})
}

// GetSnapshot returns the cached account snapshot, which may be stale or null
// @Summary Get cached account snapshot
// @Tags auth
// @Produce json
// @Success 200 {object} dto.AccountResponse
// @Router /auth/snapshot [get]
func (h *AuthHandler) GetSnapshot(c *gin.Context) {
	user, err := h.manager.CachedAccount(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AccountResponse{
		Success: true,
		User:    user,
	})
}

func authResponse(result *service.AuthResult) dto.AuthResponse {
	return dto.AuthResponse{
		Success: true,
		User:    result.User,
		Session: sessionInfo(result.Session),
	}
}

func sessionInfo(session *domain.Session) *dto.SessionInfo {
	return &dto.SessionInfo{
		Token:      session.Token,
		ExpiresAt:  session.ExpiresAt.Format(time.RFC3339),
		ExpiresIn:  int(session.ExpiresAt.Sub(session.CreatedAt).Seconds()),
		RememberMe: session.RememberMe,
	}
}
