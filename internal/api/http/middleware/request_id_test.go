package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/venhawk/venhawk-intake/internal/logger"
)

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware(logger.NewTestLogger(t)))
	r.GET("/x", func(c *gin.Context) {
		assert.Equal(t, c.GetString("request_id"), GetRequestID(c.Request.Context()))
		c.String(http.StatusOK, GetRequestID(c.Request.Context()))
	})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	r.ServeHTTP(rr, req)
	assert.Equal(t, "abc-123", rr.Header().Get("X-Request-Id"))
	assert.Equal(t, "abc-123", rr.Body.String())

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/x", nil))
	_, err := uuid.Parse(rr.Header().Get("X-Request-Id"))
	assert.NoError(t, err)
}
