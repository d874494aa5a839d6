package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/venhawk/venhawk-intake/config"
	authsvc "github.com/venhawk/venhawk-intake/internal/auth/service"
	"github.com/venhawk/venhawk-intake/internal/backend"
	"github.com/venhawk/venhawk-intake/internal/bootstrap"
	"github.com/venhawk/venhawk-intake/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.App.LogLevel, cfg.App.LogFormat)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	bootstrap.SetGinMode(cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb, err := bootstrap.OpenRedis(ctx, bootstrap.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		zapLog.Fatal("redis connection failed", zap.Error(err))
	}
	if rdb != nil {
		defer rdb.Close()
		zapLog.Info("Redis connected successfully")
	} else {
		zapLog.Warn("REDIS_ADDR not set, saving drafts is disabled")
	}

	authMW, err := bootstrap.AuthMiddleware(ctx, &cfg.Firebase)
	if err != nil {
		zapLog.Fatal("auth init failed", zap.Error(err))
	}

	client := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout, nil,
		backend.WithRateLimit(cfg.Backend.RateLimit, cfg.Backend.Burst),
		backend.WithLogger(log),
	)

	intake := bootstrap.BuildIntake(cfg, client, rdb, log)
	if err := intake.Sessions.Start(cfg.Sessions.SweepSpec); err != nil {
		zapLog.Fatal("session janitor failed to start", zap.Error(err))
	}

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:    cfg.App.ServiceName,
		Version:        cfg.App.Version,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Redis:          rdb,
		Log:            log,
		Auth:           authMW,
		AuthService:    authsvc.NewAuthService(client, log),
		Intake:         intake.Handler,
		Sessions:       intake.Sessions,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zapLog.Info("listening", zap.String("addr", srv.Addr), zap.String("auth_mode", cfg.Firebase.AuthMode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("server shutdown failed", zap.Error(err))
	}
	intake.Sessions.Stop(shutdownCtx)
}
