package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	intakeauth "github.com/venhawk/venhawk-intake/internal/auth"
	"github.com/venhawk/venhawk-intake/internal/auth/domain"
)

// HeaderAuthMiddleware trusts X-User-* headers set by a gateway in front of
// the service. The bearer token, if any, is still forwarded to the backend.
// Use this ONLY for development/testing.
func HeaderAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := strings.TrimSpace(c.GetHeader("X-User-Id"))
		if uid == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated", "code": "AUTH_FAILED"})
			return
		}

		intakeauth.SetIdentity(c, domain.Identity{
			UID:     uid,
			Email:   c.GetHeader("X-User-Email"),
			Name:    c.GetHeader("X-User-Name"),
			Picture: c.GetHeader("X-User-Photo"),
		}, extractToken(c))

		c.Next()
	}
}
