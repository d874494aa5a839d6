package bootstrap

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/venhawk/venhawk-intake/config"
	"github.com/venhawk/venhawk-intake/internal/auth"
	"github.com/venhawk/venhawk-intake/internal/auth/middleware"
)

// AuthMiddleware picks the caller identification for cfg.AuthMode.
func AuthMiddleware(ctx context.Context, cfg *config.FirebaseConfig) (gin.HandlerFunc, error) {
	switch cfg.AuthMode {
	case config.AuthModeHeader:
		return middleware.HeaderAuthMiddleware(), nil
	case config.AuthModeFirebase:
		client, err := auth.InitializeFirebase(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return middleware.FirebaseAuthMiddleware(client), nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.AuthMode)
	}
}
