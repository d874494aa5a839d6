package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/venhawk/venhawk-intake/internal/logger"
	"github.com/venhawk/venhawk-intake/internal/metrics"
)

// SessionRegistry keeps one wizard per user and evicts idle ones.
type SessionRegistry struct {
	mu      sync.Mutex
	wizards map[string]*Wizard
	newFn   func(id string) *Wizard
	idleTTL time.Duration
	log     logger.Logger
	now     func() time.Time

	cron *cron.Cron
}

func NewSessionRegistry(newFn func(id string) *Wizard, idleTTL time.Duration, log logger.Logger) *SessionRegistry {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &SessionRegistry{
		wizards: make(map[string]*Wizard),
		newFn:   newFn,
		idleTTL: idleTTL,
		log:     log,
		now:     time.Now,
	}
}

// Get returns the wizard of id, creating a fresh one on first use, and
// marks it active.
func (r *SessionRegistry) Get(id string) *Wizard {
	r.mu.Lock()
	defer r.mu.Unlock()
	if w, ok := r.wizards[id]; ok {
		w.markActive(r.now())
		return w
	}
	w := r.newFn(id)
	w.markActive(r.now())
	r.wizards[id] = w
	metrics.ActiveSessions.Set(float64(len(r.wizards)))
	return w
}

func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.wizards)
}

// Sweep drops wizards idle for longer than the TTL that have no pending
// network call. It returns the number evicted.
func (r *SessionRegistry) Sweep() int {
	if r.idleTTL <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.idleTTL)

	r.mu.Lock()
	evicted := 0
	for id, w := range r.wizards {
		if w.IdleSince().Before(cutoff) && !w.Busy() {
			delete(r.wizards, id)
			evicted++
		}
	}
	active := len(r.wizards)
	r.mu.Unlock()

	metrics.ActiveSessions.Set(float64(active))
	if evicted > 0 {
		r.log.Info("evicted idle wizards", map[string]interface{}{
			"evicted": evicted,
			"active":  active,
		})
	}
	return evicted
}

// Start runs Sweep on the given cron spec (for example "@every 5m").
func (r *SessionRegistry) Start(spec string) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() { r.Sweep() }); err != nil {
		return fmt.Errorf("schedule session sweep %q: %w", spec, err)
	}
	r.cron = c
	c.Start()
	r.log.Info("session janitor started", map[string]interface{}{"spec": spec, "idle_ttl": r.idleTTL.String()})
	return nil
}

// Stop halts the janitor and waits for a running sweep to finish.
func (r *SessionRegistry) Stop(ctx context.Context) {
	if r.cron == nil {
		return
	}
	select {
	case <-r.cron.Stop().Done():
	case <-ctx.Done():
	}
}
