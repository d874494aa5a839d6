package service

import (
	"context"
	"sync"

	"github.com/venhawk/venhawk-intake/internal/auth/domain"
	intake "github.com/venhawk/venhawk-intake/internal/intake/domain"
	"github.com/venhawk/venhawk-intake/internal/logger"
)

// UserSyncer pushes a user profile to the backend. The caller's token
// travels in ctx.
type UserSyncer interface {
	SyncUser(ctx context.Context, profile intake.UserProfile) error
}

// AuthService syncs each user with the backend once per process.
type AuthService struct {
	syncer UserSyncer
	log    logger.Logger

	mu      sync.Mutex
	synced  map[string]bool
	pending map[string]bool
}

func NewAuthService(syncer UserSyncer, log logger.Logger) *AuthService {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &AuthService{
		syncer:  syncer,
		log:     log,
		synced:  make(map[string]bool),
		pending: make(map[string]bool),
	}
}

// EnsureSynced syncs id unless that already succeeded or another request
// is syncing it right now. A failure is logged and returned; the next call
// tries again.
func (s *AuthService) EnsureSynced(ctx context.Context, id domain.Identity) error {
	s.mu.Lock()
	if s.synced[id.UID] || s.pending[id.UID] {
		s.mu.Unlock()
		return nil
	}
	s.pending[id.UID] = true
	s.mu.Unlock()

	return s.sync(ctx, id)
}

// SyncUser syncs id unconditionally.
func (s *AuthService) SyncUser(ctx context.Context, id domain.Identity) error {
	s.mu.Lock()
	s.pending[id.UID] = true
	s.mu.Unlock()

	return s.sync(ctx, id)
}

func (s *AuthService) sync(ctx context.Context, id domain.Identity) error {
	err := s.syncer.SyncUser(ctx, id.Profile())

	s.mu.Lock()
	delete(s.pending, id.UID)
	if err == nil {
		s.synced[id.UID] = true
	}
	s.mu.Unlock()

	if err != nil {
		logger.FromContext(ctx, s.log).WithError(err).Error("user sync failed", map[string]interface{}{
			"user_id": id.UID,
			"code":    intake.ErrCodeAuthFailed,
		})
		return err
	}
	return nil
}

// Synced reports whether uid has been synced by this process.
func (s *AuthService) Synced(uid string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.synced[uid]
}
