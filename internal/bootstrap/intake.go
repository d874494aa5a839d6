package bootstrap

import (
	"github.com/redis/go-redis/v9"

	"github.com/venhawk/venhawk-intake/config"
	"github.com/venhawk/venhawk-intake/internal/backend"
	intakehttp "github.com/venhawk/venhawk-intake/internal/intake/http"
	"github.com/venhawk/venhawk-intake/internal/intake/repository"
	"github.com/venhawk/venhawk-intake/internal/intake/service"
	"github.com/venhawk/venhawk-intake/internal/logger"
)

// Intake is the wired intake feature.
type Intake struct {
	Sessions *service.SessionRegistry
	Handler  *intakehttp.Handler
}

// BuildIntake wires one wizard per user against the backend client. With a
// nil rdb, saving drafts is unavailable.
func BuildIntake(cfg *config.Config, client *backend.Client, rdb *redis.Client, log logger.Logger) *Intake {
	limits := service.UploadLimits{
		MaxFileSize:   cfg.Uploads.MaxFileSize,
		MaxFiles:      cfg.Uploads.MaxFiles,
		MaxConcurrent: cfg.Uploads.MaxConcurrent,
	}

	newWizard := func(id string) *service.Wizard {
		return service.NewWizard(id, service.WizardDeps{
			Files:   client,
			Creator: client,
			Limits:  limits,
			Log:     log,
		})
	}
	sessions := service.NewSessionRegistry(newWizard, cfg.Sessions.IdleTTL, log)

	deps := intakehttp.Deps{
		Sessions: sessions,
		Limits:   limits,
		Log:      log,
	}
	if rdb != nil {
		deps.Saver = repository.NewDraftRepository(rdb, cfg.Redis.SnapshotTTL)
	}

	return &Intake{Sessions: sessions, Handler: intakehttp.New(deps)}
}
