package middleware

import (
	"github.com/gin-gonic/gin"

	intakeauth "github.com/venhawk/venhawk-intake/internal/auth"
	"github.com/venhawk/venhawk-intake/internal/backend"
	"github.com/venhawk/venhawk-intake/internal/logger"
)

// RequestContextMiddleware moves the caller's identity into the request's
// context.Context: the bearer token for backend calls and a logger tagged
// with the user id.
func RequestContextMiddleware(fallback logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := backend.WithAccessToken(c.Request.Context(), intakeauth.AccessToken(c))
		if uid := intakeauth.UserFirebaseUID(c); uid != "" {
			l := logger.FromContext(ctx, fallback).WithFields(map[string]interface{}{"user_id": uid})
			ctx = logger.WithContext(ctx, l)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
