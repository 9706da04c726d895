package middleware

import (
	"errors"
	"strings"

	"rxbridge-service/internal/auth"
	stderrors "rxbridge-service/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// UsernameContextKey holds the authenticated username.
	UsernameContextKey = "username"
	// SessionContextKey holds the JWT subject that scopes scans and cached results.
	SessionContextKey = "user_id"
)

// AuthMiddleware validates bearer JWT tokens
func AuthMiddleware(jwtManager *auth.JWTManager, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Warn("Missing authorization header",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
			)
			abortUnauthorized(c, "missing authorization header", "Header: Authorization")
			return
		}

		// Extract token from "Bearer <token>"
		scheme, tokenString, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tokenString) == "" {
			abortUnauthorized(c, "invalid authorization header format", "Expected: Bearer <token>")
			return
		}

		claims, err := jwtManager.ValidateToken(strings.TrimSpace(tokenString))
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				abortUnauthorized(c, "token expired", "Token has expired, please login again")
				return
			}
			logger.Warn("Invalid token",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
				zap.Error(err),
			)
			abortUnauthorized(c, "invalid token", err.Error())
			return
		}

		c.Set(UsernameContextKey, claims.Username)
		c.Set(SessionContextKey, claims.Subject)

		c.Next()
	}
}

// SessionID returns the session of the authenticated caller.
func SessionID(c *gin.Context) string {
	return c.GetString(SessionContextKey)
}

func abortUnauthorized(c *gin.Context, message, details string) {
	stdErr := stderrors.NewUnauthorized(message, details)
	c.AbortWithStatusJSON(stdErr.HTTPStatus(), stdErr)
}
