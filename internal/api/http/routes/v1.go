package routes

import (
	"github.com/gin-gonic/gin"

	authhttp "github.com/venhawk/venhawk-intake/internal/auth/http"
	"github.com/venhawk/venhawk-intake/internal/auth/middleware"
	authsvc "github.com/venhawk/venhawk-intake/internal/auth/service"
	intakehttp "github.com/venhawk/venhawk-intake/internal/intake/http"
	"github.com/venhawk/venhawk-intake/internal/logger"
)

type V1Deps struct {
	// Auth identifies the caller; every /api/v1 route requires it.
	Auth        gin.HandlerFunc
	AuthService *authsvc.AuthService
	Intake      *intakehttp.Handler
	Log         logger.Logger
}

func RegisterV1(r *gin.Engine, dep V1Deps) {
	api := r.Group("/api/v1")
	api.Use(dep.Auth)
	api.Use(middleware.RequestContextMiddleware(dep.Log))
	api.Use(middleware.UserSyncMiddleware(dep.AuthService))

	users := api.Group("/users")
	authhttp.New(dep.AuthService).Register(users)

	intake := api.Group("/intake")
	dep.Intake.Register(intake)
}
