package middleware

import (
	"context"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"

	intakeauth "github.com/venhawk/venhawk-intake/internal/auth"
	"github.com/venhawk/venhawk-intake/internal/auth/domain"
)

// TokenVerifier is satisfied by *auth.Client.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseAuthMiddleware validates Firebase ID tokens and extracts user info
func FirebaseAuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization token", "code": "AUTH_FAILED"})
			return
		}

		decodedToken, err := verifier.VerifyIDToken(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token", "code": "AUTH_FAILED"})
			return
		}

		intakeauth.SetIdentity(c, domain.Identity{
			UID:     decodedToken.UID,
			Email:   claim(decodedToken, "email"),
			Name:    claim(decodedToken, "name"),
			Picture: claim(decodedToken, "picture"),
		}, token)

		c.Next()
	}
}

func claim(t *auth.Token, key string) string {
	if v, ok := t.Claims[key].(string); ok {
		return v
	}
	return ""
}

// extractToken extracts the Bearer token from the Authorization header
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(bearerToken) > 7 && strings.HasPrefix(bearerToken, "Bearer ") {
		return strings.TrimSpace(bearerToken[7:])
	}
	return ""
}
