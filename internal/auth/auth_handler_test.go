package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rxbridge-service/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret-key-min-32-chars-for-testing"

var testUsers = map[string]string{"pharmacist": "rxbridge123"}

func setupAuthTestRouter(handler *AuthHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	// Error handler middleware (inline to avoid import cycle)
	router.Use(func(c *gin.Context) {
		c.Next()
		if len(c.Errors) > 0 {
			if stdErr, ok := c.Errors.Last().Err.(*errors.StandardError); ok {
				c.JSON(stdErr.HTTPStatus(), stdErr)
				return
			}
			c.JSON(http.StatusInternalServerError, errors.NewInternalError("internal server error", c.Errors.Last().Err))
		}
	})
	router.POST("/api/v1/auth/login", handler.Login)
	return router
}

func doLogin(router *gin.Engine, payload interface{}) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestLogin_Success(t *testing.T) {
	// Setup
	logger := zap.NewNop()
	jwtManager := NewJWTManager(testSecret, 30*time.Minute, logger)
	router := setupAuthTestRouter(NewAuthHandler(jwtManager, testUsers, logger))

	// Execute
	w := doLogin(router, LoginRequest{Username: "pharmacist", Password: "rxbridge123"})

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	var response LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Bearer", response.Type)
	assert.Equal(t, 1800, response.ExpiresIn)

	claims, err := jwtManager.ValidateToken(response.Token)
	require.NoError(t, err)
	assert.Equal(t, "pharmacist", claims.Subject)
	assert.Equal(t, "pharmacist", claims.Username)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	// Setup
	logger := zap.NewNop()
	router := setupAuthTestRouter(NewAuthHandler(NewJWTManager(testSecret, time.Hour, logger), testUsers, logger))

	// Execute
	wrongPassword := doLogin(router, LoginRequest{Username: "pharmacist", Password: "nope"})
	unknownUser := doLogin(router, LoginRequest{Username: "ghost", Password: "rxbridge123"})

	// Assert
	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownUser.Code)
	assert.Contains(t, wrongPassword.Body.String(), `"status":"error"`)
}

func TestLogin_MissingFields(t *testing.T) {
	// Setup
	logger := zap.NewNop()
	router := setupAuthTestRouter(NewAuthHandler(NewJWTManager(testSecret, time.Hour, logger), testUsers, logger))

	// Execute
	w := doLogin(router, map[string]string{"username": "pharmacist"})

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestJWTManager_RejectsTamperedAndExpiredTokens(t *testing.T) {
	logger := zap.NewNop()
	manager := NewJWTManager(testSecret, time.Hour, logger)

	token, _, err := manager.GenerateToken("pharmacist")
	require.NoError(t, err)

	_, err = NewJWTManager("another-secret-key-min-32-chars-long!!", time.Hour, logger).ValidateToken(token)
	assert.Equal(t, ErrInvalidToken, err)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, JWTClaims{
		Username: "pharmacist",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "pharmacist",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	signed, err := expired.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = manager.ValidateToken(signed)
	assert.Equal(t, ErrExpiredToken, err)
}

func TestNewJWTManager_DefaultTTL(t *testing.T) {
	assert.Equal(t, time.Hour, NewJWTManager(testSecret, 0, zap.NewNop()).TTL())
}
