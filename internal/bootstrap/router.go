package bootstrap

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	httpapi "github.com/venhawk/venhawk-intake/internal/api/http"
	"github.com/venhawk/venhawk-intake/internal/api/http/middleware"
	"github.com/venhawk/venhawk-intake/internal/api/http/routes"
	authsvc "github.com/venhawk/venhawk-intake/internal/auth/service"
	intakehttp "github.com/venhawk/venhawk-intake/internal/intake/http"
	"github.com/venhawk/venhawk-intake/internal/logger"
)

type RouterDeps struct {
	ServiceName    string
	Version        string
	AllowedOrigins []string
	Redis          *redis.Client
	Log            logger.Logger

	Auth        gin.HandlerFunc
	AuthService *authsvc.AuthService
	Intake      *intakehttp.Handler
	Sessions    httpapi.SessionCounter
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	if dep.Log == nil {
		dep.Log = logger.NewNoOpLogger()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     dep.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-Id"},
		ExposeHeaders:    []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RequestIDMiddleware(dep.Log))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.Redis)
	if dep.Sessions != nil {
		healthHandler.WithSessions(dep.Sessions)
	}
	healthHandler.RegisterRoutes(r)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	routes.RegisterV1(r, routes.V1Deps{
		Auth:        dep.Auth,
		AuthService: dep.AuthService,
		Intake:      dep.Intake,
		Log:         dep.Log,
	})

	return r
}
