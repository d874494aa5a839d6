package bootstrap

import "github.com/gin-gonic/gin"

// SetGinMode maps APP_ENV to a gin mode; anything unknown stays in debug.
func SetGinMode(env string) {
	switch env {
	case "production", "staging":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}
}
