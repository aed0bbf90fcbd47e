package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/exam-prep-accounts/internal/dto"
	"github.com/prperemyshlev/exam-prep-accounts/internal/service"
)

// AccountHandler handles profile and progress requests of the current account
type AccountHandler struct {
	manager service.AccountManager
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(manager service.AccountManager) *AccountHandler {
	return &AccountHandler{
		manager: manager,
	}
}

// UpdateAccount applies a partial profile update
// @Summary Update current account
// @Tags account
// @Accept json
// @Produce json
// @Param request body dto.UpdateAccountRequest true "Fields to change"
// @Success 200 {object} dto.AccountResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /account [patch]
func (h *AccountHandler) UpdateAccount(c *gin.Context) {
	var req dto.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	user, err := h.manager.UpdateProfile(c.Request.Context(), c.GetString(ctxAccountID), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AccountResponse{
		Success: true,
		User:    user,
	})
}

// GetProgress returns the study progress record
// @Summary Get progress
// @Tags progress
// @Produce json
// @Success 200 {object} dto.ProgressResponse
// @Router /progress [get]
func (h *AccountHandler) GetProgress(c *gin.Context) {
	progress, err := h.manager.GetProgress(c.Request.Context(), c.GetString(ctxAccountID))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ProgressResponse{
		Success:  true,
		Progress: progress,
	})
}

// UpdateProgress merges a partial progress update
// @Summary Update progress
// @Tags progress
// @Accept json
// @Produce json
// @Param request body dto.UpdateProgressRequest true "Fields to replace"
// @Success 200 {object} dto.ProgressResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /progress [patch]
func (h *AccountHandler) UpdateProgress(c *gin.Context) {
	var req dto.UpdateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	progress, err := h.manager.UpdateProgress(c.Request.Context(), c.GetString(ctxAccountID), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ProgressResponse{
		Success:  true,
		Progress: progress,
	})
}

// GetStats returns statistics derived from progress
// @Summary Get study statistics
// @Tags progress
// @Produce json
// @Success 200 {object} dto.StatsResponse
// @Router /progress/stats [get]
func (h *AccountHandler) GetStats(c *gin.Context) {
	stats, err := h.manager.GetStats(c.Request.Context(), c.GetString(ctxAccountID))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.StatsResponse{
		Success: true,
		Stats:   stats,
	})
}
