package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/venhawk/venhawk-intake/internal/intake/domain"
)

// DefaultDraftFile is where the terminal client keeps its snapshot.
const DefaultDraftFile = "venhawk_draft_project.json"

// FileDraftRepository writes one draft snapshot to a local JSON file.
type FileDraftRepository struct {
	path string
	now  func() time.Time
}

func NewFileDraftRepository(path string) *FileDraftRepository {
	if path == "" {
		path = DefaultDraftFile
	}
	return &FileDraftRepository{path: path, now: time.Now}
}

func (r *FileDraftRepository) Path() string { return r.path }

// SaveDraft replaces the file atomically. The owner is not part of the file;
// a terminal session has exactly one.
func (r *FileDraftRepository) SaveDraft(ctx context.Context, owner string, d domain.Draft) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(DraftSnapshot{Draft: d, SavedAt: r.now().UTC()}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}

	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, ".draft-*.json")
	if err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to save draft: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}
