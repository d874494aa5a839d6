package middleware

import (
	"github.com/gin-gonic/gin"

	intakeauth "github.com/venhawk/venhawk-intake/internal/auth"
	"github.com/venhawk/venhawk-intake/internal/auth/service"
)

// UserSyncMiddleware syncs the caller with the backend on their first
// request. A failed sync never blocks the request.
func UserSyncMiddleware(svc *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, ok := intakeauth.CurrentIdentity(c); ok {
			_ = svc.EnsureSynced(c.Request.Context(), id)
		}
		c.Next()
	}
}
