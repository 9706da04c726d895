package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func setupRequestIDTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"request_id": GetRequestID(c),
			"from_ctx":   RequestIDFromContext(c.Request.Context()),
		})
	})
	return router
}

func TestRequestIDMiddleware_GeneratesID(t *testing.T) {
	// Setup
	router := setupRequestIDTestRouter()

	// Execute
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	requestID := w.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(requestID)
	assert.NoError(t, err)
	assert.Contains(t, w.Body.String(), requestID)
}

func TestRequestIDMiddleware_UsesProvidedID(t *testing.T) {
	// Setup
	router := setupRequestIDTestRouter()

	// Execute
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(RequestIDHeader, "scan-req-42")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, "scan-req-42", w.Header().Get(RequestIDHeader))
	assert.JSONEq(t, `{"request_id":"scan-req-42","from_ctx":"scan-req-42"}`, w.Body.String())
}
