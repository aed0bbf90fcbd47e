package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/exam-prep-accounts/internal/dto"
	"github.com/prperemyshlev/exam-prep-accounts/internal/service"
)

var statusByKind = map[service.ErrorKind]int{
	service.KindValidation:         http.StatusBadRequest,
	service.KindDuplicateAccount:   http.StatusConflict,
	service.KindInvalidCredentials: http.StatusUnauthorized,
	service.KindAccountDeactivated: http.StatusForbidden,
	service.KindAccountNotFound:    http.StatusNotFound,
	service.KindTooManyAttempts:    http.StatusTooManyRequests,
	service.KindStoreFailure:       http.StatusInternalServerError,
}

// respondError writes the uniform failure body for err
func respondError(c *gin.Context, err error) {
	kind := service.KindOf(err)

	status, ok := statusByKind[kind]
	if !ok {
		status = http.StatusInternalServerError
	}

	// kept for the request log
	c.Set(ctxErrorKind, string(kind))

	c.AbortWithStatusJSON(status, dto.ErrorResponse{
		Success: false,
		Error:   string(kind),
		Message: err.Error(),
	})
}

func respondBadRequest(c *gin.Context, message string) {
	c.Set(ctxErrorKind, string(service.KindValidation))
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{
		Success: false,
		Error:   string(service.KindValidation),
		Message: message,
	})
}
