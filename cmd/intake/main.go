package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/venhawk/venhawk-intake/config"
	authdomain "github.com/venhawk/venhawk-intake/internal/auth/domain"
	authsvc "github.com/venhawk/venhawk-intake/internal/auth/service"
	"github.com/venhawk/venhawk-intake/internal/backend"
	"github.com/venhawk/venhawk-intake/internal/intake/repository"
	"github.com/venhawk/venhawk-intake/internal/intake/service"
	"github.com/venhawk/venhawk-intake/internal/logger"
	"github.com/venhawk/venhawk-intake/internal/tui"
)

func main() {
	os.Exit(run())
}

// run owns every deferred cleanup so they execute before the process exits.
func run() int {
	draftPath := flag.String("draft", repository.DefaultDraftFile, "file that \"Save draft\" writes")
	email := flag.String("email", os.Getenv("INTAKE_USER_EMAIL"), "email to sync with the backend before starting")
	flag.Parse()

	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		return 2
	}

	zapLog := logger.New(cfg.App.LogLevel, cfg.App.LogFormat)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tokens := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Backend.AccessToken, TokenType: "Bearer"})
	client := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout, tokens,
		backend.WithRateLimit(cfg.Backend.RateLimit, cfg.Backend.Burst),
		backend.WithLogger(log),
	)

	if *email != "" {
		id := authdomain.Identity{UID: *email, Email: *email}
		_ = authsvc.NewAuthService(client, log).EnsureSynced(ctx, id)
	}

	limits := service.UploadLimits{
		MaxFileSize:   cfg.Uploads.MaxFileSize,
		MaxFiles:      cfg.Uploads.MaxFiles,
		MaxConcurrent: cfg.Uploads.MaxConcurrent,
	}
	wizard := service.NewWizard("cli", service.WizardDeps{
		Files:   client,
		Creator: client,
		Limits:  limits,
		Log:     log,
	})

	runner := tui.NewRunner(tui.NewSurveyDriver(), wizard,
		tui.WithDraftSaver(repository.NewFileDraftRepository(*draftPath)),
		tui.WithUploadLimits(limits),
	)

	_, err = runner.Run(ctx)
	if err != nil && !isUserExit(err) {
		zapLog.Error("intake wizard failed", zap.Error(err))
	}
	return exitCode(err)
}

func isUserExit(err error) bool {
	return errors.Is(err, tui.ErrAborted) || errors.Is(err, tui.ErrQuit)
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}
