package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/venhawk/venhawk-intake/internal/auth/domain"
)

const (
	CtxFirebaseUID = "firebase_uid"
	CtxEmail       = "email"
	CtxName        = "name"
	CtxPicture     = "picture"
	CtxAccessToken = "access_token"
)

// SetIdentity stores the authenticated user and their bearer token.
func SetIdentity(c *gin.Context, id domain.Identity, accessToken string) {
	c.Set(CtxFirebaseUID, id.UID)
	c.Set(CtxEmail, id.Email)
	c.Set(CtxName, id.Name)
	c.Set(CtxPicture, id.Picture)
	c.Set(CtxAccessToken, accessToken)
}

// UserFirebaseUID extracts the Firebase UID from the Gin context
// This is set by the auth middleware
func UserFirebaseUID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxFirebaseUID))
}

// CurrentIdentity returns the user set by the auth middleware.
func CurrentIdentity(c *gin.Context) (domain.Identity, bool) {
	uid := UserFirebaseUID(c)
	if uid == "" {
		return domain.Identity{}, false
	}
	return domain.Identity{
		UID:     uid,
		Email:   c.GetString(CtxEmail),
		Name:    c.GetString(CtxName),
		Picture: c.GetString(CtxPicture),
	}, true
}

// AccessToken is the caller's bearer token, forwarded to the backend.
func AccessToken(c *gin.Context) string {
	return c.GetString(CtxAccessToken)
}
