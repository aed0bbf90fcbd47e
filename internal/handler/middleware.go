package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/exam-prep-accounts/internal/domain"
	"github.com/prperemyshlev/exam-prep-accounts/internal/dto"
	"github.com/prperemyshlev/exam-prep-accounts/internal/service"
)

// Context keys set by the middlewares
const (
	ctxAccount   = "account"
	ctxAccountID = "account_id"
	ctxErrorKind = "error_kind"
)

// RequireAccount resolves the current session and adds the account to context
func RequireAccount(manager service.AccountManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, err := manager.CurrentAccount(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}

		if account == nil {
			c.Set(ctxErrorKind, "unauthenticated")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
				Success: false,
				Error:   "unauthenticated",
				Message: "no active session, please log in",
			})
			return
		}

		c.Set(ctxAccount, account)
		c.Set(ctxAccountID, account.ID)

		c.Next()
	}
}

// currentAccount returns the account stored by RequireAccount
func currentAccount(c *gin.Context) *domain.SanitizedAccount {
	value, ok := c.Get(ctxAccount)
	if !ok {
		return nil
	}
	account, _ := value.(*domain.SanitizedAccount)
	return account
}
