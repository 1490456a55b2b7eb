package api

import (
	"errors"
	"net/http"

	"vidshare/middleware"
	"vidshare/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// abortWithError maps err to a status and a client safe message. Only
// unexpected failures are logged, with msg as the log message.
func abortWithError(c *gin.Context, err error, msg string) {
	requestID := c.GetString(middleware.RequestIDKey)
	status, public := statusFor(err)

	if status >= http.StatusInternalServerError {
		zap.L().Error(msg, zap.Error(err), zap.String("requestID", requestID))
	} else {
		zap.L().Debug(msg, zap.Error(err), zap.String("requestID", requestID))
	}

	c.AbortWithStatusJSON(status, gin.H{
		"error":     public,
		"requestID": requestID,
	})
}

func statusFor(err error) (int, string) {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return http.StatusRequestEntityTooLarge, "Request body size exceeds limit"
	}

	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		return http.StatusInternalServerError, "Internal server error"
	}

	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, svcErr.Message
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized, svcErr.Message
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict, svcErr.Message
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, svcErr.Message
	case errors.Is(err, service.ErrBusy):
		return http.StatusServiceUnavailable, svcErr.Message
	default:
		return http.StatusInternalServerError, svcErr.Message
	}
}
