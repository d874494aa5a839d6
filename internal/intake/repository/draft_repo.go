package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/venhawk/venhawk-intake/internal/intake/domain"
)

const (
	draftKeyPrefix  = "intake:draft:" // intake:draft:{user_id}
	defaultDraftTTL = 7 * 24 * time.Hour
)

// DraftSnapshot is what "save draft" writes.
type DraftSnapshot struct {
	Draft   domain.Draft `json:"draft"`
	SavedAt time.Time    `json:"savedAt"`
}

// DraftRepository stores draft snapshots in Redis. Snapshots are write-only
// from the wizard's point of view; Get exists for operators and tests.
type DraftRepository struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

func NewDraftRepository(client *redis.Client, ttl time.Duration) *DraftRepository {
	if ttl <= 0 {
		ttl = defaultDraftTTL
	}
	return &DraftRepository{client: client, ttl: ttl, now: time.Now}
}

// SaveDraft overwrites the owner's snapshot and refreshes its TTL.
func (r *DraftRepository) SaveDraft(ctx context.Context, owner string, d domain.Draft) error {
	if owner == "" {
		return fmt.Errorf("draft owner is required")
	}

	data, err := json.Marshal(DraftSnapshot{Draft: d, SavedAt: r.now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}

	if err := r.client.Set(ctx, draftKey(owner), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

// Get returns the owner's snapshot, or nil when there is none.
func (r *DraftRepository) Get(ctx context.Context, owner string) (*DraftSnapshot, error) {
	data, err := r.client.Get(ctx, draftKey(owner)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}

	var snap DraftSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal draft: %w", err)
	}
	return &snap, nil
}

func draftKey(owner string) string {
	return draftKeyPrefix + owner
}
