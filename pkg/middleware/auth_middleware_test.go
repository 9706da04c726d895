package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rxbridge-service/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret-key-min-32-chars-for-testing"

func setupAuthMiddlewareTestRouter(jwtManager *auth.JWTManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	protected := router.Group("/api/v1")
	protected.Use(AuthMiddleware(jwtManager, zap.NewNop()))
	{
		protected.GET("/test", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"session": SessionID(c)})
		})
	}

	return router
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	// Setup
	jwtManager := auth.NewJWTManager(testSecret, time.Hour, zap.NewNop())
	router := setupAuthMiddlewareTestRouter(jwtManager)
	token, _, err := jwtManager.GenerateToken("pharmacist")
	require.NoError(t, err)

	// Execute
	req := httptest.NewRequest(http.MethodGet, "/api/v1/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"session":"pharmacist"}`, w.Body.String())
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	jwtManager := auth.NewJWTManager(testSecret, time.Hour, zap.NewNop())
	router := setupAuthMiddlewareTestRouter(jwtManager)

	testCases := map[string]string{
		"missing header": "",
		"wrong scheme":   "Basic abc",
		"empty token":    "Bearer ",
		"garbage token":  "Bearer not-a-jwt",
	}

	for name, header := range testCases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/test", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), `"status":"error"`)
		})
	}
}
