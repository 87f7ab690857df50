package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"nutristeck-bank-backend/internal/common/errors"
	authservice "nutristeck-bank-backend/internal/features/auth/service"
)

const (
	ContextUserID   = "user_id"
	ContextUsername = "username"
	ContextRole     = "role"
)

// RequireAuth validates the Bearer access token and stores the session
// identity in the request context.
func RequireAuth(tokens *authservice.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			AbortWithError(c, errors.New(errors.ErrCodeInvalidToken, "Access token missing"))
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			AbortWithError(c, errors.New(errors.ErrCodeInvalidToken, "Bearer token required"))
			return
		}

		claims, err := tokens.VerifyAccess(tokenString)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUsername, claims.Username)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

// RequireRole gates a route group on the role carried by the access token.
// Must run after RequireAuth.
func RequireRole(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextRole)
		for _, r := range allowed {
			if role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error": "Access denied: insufficient permissions",
			"code":  errors.ErrCodeForbidden,
		})
	}
}
