package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	intakeauth "github.com/venhawk/venhawk-intake/internal/auth"
	"github.com/venhawk/venhawk-intake/internal/backend"
)

// GetProfile returns the current user's identity and sync status
func (h *Handler) GetProfile(c *gin.Context) {
	id, ok := intakeauth.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":   id,
		"synced": h.authService.Synced(id.UID),
	})
}

// SyncUser pushes the current user to the backend again, regardless of
// whether the automatic sync already ran.
func (h *Handler) SyncUser(c *gin.Context) {
	id, ok := intakeauth.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	if err := h.authService.SyncUser(c.Request.Context(), id); err != nil {
		msg := backend.ServerMessage(err)
		if msg == "" {
			msg = "failed to sync user"
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": msg, "code": "AUTH_FAILED"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": id, "synced": true})
}
