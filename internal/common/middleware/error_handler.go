package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"nutristeck-bank-backend/internal/common/errors"
	"nutristeck-bank-backend/internal/common/logger"
)

// Recovery converts panics into a logged 500 without leaking internals.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error().
			Str("request_id", GetRequestID(c)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Interface("panic", recovered).
			Str("stack", string(debug.Stack())).
			Msg("Panic recovered")

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
			"code":  errors.ErrCodeInternal,
		})
	})
}

// RequestID tags every request with an id, honoring one supplied by the client.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// GetRequestID returns the request id set by RequestID, or "unknown".
func GetRequestID(c *gin.Context) string {
	if requestID, exists := c.Get("request_id"); exists {
		if id, ok := requestID.(string); ok {
			return id
		}
	}
	return "unknown"
}

// AbortWithError maps a typed application error onto an HTTP response.
// Internal errors are logged with their cause; business failures are returned as-is.
func AbortWithError(c *gin.Context, err error) {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		appErr = errors.Wrap(err, errors.ErrCodeInternal, "Internal server error")
	}

	if appErr.IsInternal() {
		logger.Error().
			Err(appErr).
			Str("request_id", GetRequestID(c)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("Internal error")
	}

	c.AbortWithStatusJSON(statusCode(appErr), gin.H{
		"error": appErr.Message,
		"code":  appErr.Code,
	})
}

func statusCode(appErr *errors.AppError) int {
	switch appErr.Code {
	case errors.ErrCodeValidation, errors.ErrCodeInsufficientFunds,
		errors.ErrCodeInvalidCode, errors.ErrCodeExpired, errors.ErrCodeAlreadyVerified:
		return http.StatusBadRequest
	case errors.ErrCodeInvalidCredentials, errors.ErrCodeInvalidToken:
		return http.StatusUnauthorized
	case errors.ErrCodeForbidden, errors.ErrCodeUnverified, errors.ErrCodePendingApproval:
		return http.StatusForbidden
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeConflict, errors.ErrCodeInvalidTransition:
		return http.StatusConflict
	case errors.ErrCodeMailDelivery:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
