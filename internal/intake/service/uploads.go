package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/venhawk/venhawk-intake/internal/intake/domain"
	"github.com/venhawk/venhawk-intake/internal/logger"
	"github.com/venhawk/venhawk-intake/internal/metrics"
)

// FileService is the remote file storage the manager uploads to.
type FileService interface {
	UploadFile(ctx context.Context, name, mimeType string, content io.Reader) (domain.FileRef, error)
	DeleteFile(ctx context.Context, fileURL string) error
}

// Upload is one user-selected file. Open is called at most once, when the
// file has been accepted.
type Upload struct {
	Name     string
	Size     int64
	MimeType string
	Open     func() (io.ReadCloser, error)
}

// UploadLimits bounds a draft's attachments. MaxConcurrent 0 means every
// accepted file of a batch is uploaded at once.
type UploadLimits struct {
	MaxFileSize   int64
	MaxFiles      int
	MaxConcurrent int
}

func DefaultUploadLimits() UploadLimits {
	return UploadLimits{MaxFileSize: domain.DefaultMaxFileSize, MaxFiles: domain.DefaultMaxFiles}
}

// InFlight is an upload that has been accepted but has not settled yet.
type InFlight struct {
	ID        string    `json:"id"`
	FileName  string    `json:"fileName"`
	FileSize  int64     `json:"fileSize"`
	StartedAt time.Time `json:"startedAt"`

	epoch uint64
}

// BatchResult reports what happened to every file of a batch.
type BatchResult struct {
	Accepted []domain.FileRef      `json:"accepted"`
	Failures []*domain.IntakeError `json:"failures"`
	Dropped  int                   `json:"dropped"`
	Message  string                `json:"message,omitempty"`
}

// UploadManager mediates between selected files, the remote file service
// and the draft's file list.
type UploadManager struct {
	store  *DraftStore
	files  FileService
	limits UploadLimits
	log    logger.Logger

	mu       sync.Mutex
	inFlight map[string]InFlight
	deleting map[string]bool
}

func NewUploadManager(store *DraftStore, files FileService, limits UploadLimits, log logger.Logger) *UploadManager {
	if limits.MaxFileSize <= 0 {
		limits.MaxFileSize = domain.DefaultMaxFileSize
	}
	if limits.MaxFiles <= 0 {
		limits.MaxFiles = domain.DefaultMaxFiles
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &UploadManager{
		store:    store,
		files:    files,
		limits:   limits,
		log:      log,
		inFlight: make(map[string]InFlight),
		deleting: make(map[string]bool),
	}
}

// UploadBatch validates, truncates and uploads a batch. It blocks until
// every accepted file has settled. Failures are per file and never abort
// the rest of the batch.
func (m *UploadManager) UploadBatch(ctx context.Context, uploads []Upload) BatchResult {
	res := BatchResult{Accepted: []domain.FileRef{}, Failures: []*domain.IntakeError{}}

	sized := make([]Upload, 0, len(uploads))
	for _, u := range uploads {
		if u.Size > m.limits.MaxFileSize {
			metrics.UploadsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
			res.Failures = append(res.Failures, domain.NewOversizeError(u.Name, m.limits.MaxFileSize))
			continue
		}
		sized = append(sized, u)
	}

	accepted, ids, epoch, remaining := m.reserve(sized)
	if dropped := len(sized) - len(accepted); dropped > 0 {
		metrics.UploadsTotal.WithLabelValues(metrics.OutcomeDropped).Add(float64(dropped))
		res.Dropped = dropped
		res.Message = capacityMessage(remaining, m.limits.MaxFiles)
	}
	if len(accepted) == 0 {
		return res
	}

	refs := make([]*domain.FileRef, len(accepted))
	errs := make([]*domain.IntakeError, len(accepted))

	var g errgroup.Group
	if m.limits.MaxConcurrent > 0 {
		g.SetLimit(m.limits.MaxConcurrent)
	}
	for i := range accepted {
		g.Go(func() error {
			ref, err := m.uploadOne(ctx, epoch, ids[i], accepted[i])
			if err != nil {
				errs[i] = err
			} else {
				refs[i] = ref
			}
			return nil
		})
	}
	_ = g.Wait()

	for i := range accepted {
		if refs[i] != nil {
			res.Accepted = append(res.Accepted, *refs[i])
		}
		if errs[i] != nil {
			res.Failures = append(res.Failures, errs[i])
		}
	}
	return res
}

// reserve claims slots for as many uploads as fit next to the files already
// in the draft and those still in flight for the same draft. Uploads started
// before a reset hold no slots, their results are discarded.
func (m *UploadManager) reserve(uploads []Upload) ([]Upload, []string, uint64, int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	epoch := m.store.Epoch()
	remaining := m.limits.MaxFiles - len(m.store.Snapshot().FileUploads) - m.pendingLocked(epoch)
	if remaining < 0 {
		remaining = 0
	}
	if len(uploads) > remaining {
		uploads = uploads[:remaining]
	}

	ids := make([]string, len(uploads))
	now := time.Now()
	for i, u := range uploads {
		id := uuid.NewString()
		ids[i] = id
		m.inFlight[id] = InFlight{ID: id, FileName: u.Name, FileSize: u.Size, StartedAt: now, epoch: epoch}
	}
	return uploads, ids, epoch, remaining
}

func (m *UploadManager) pendingLocked(epoch uint64) int {
	n := 0
	for _, f := range m.inFlight {
		if f.epoch == epoch {
			n++
		}
	}
	return n
}

func (m *UploadManager) uploadOne(ctx context.Context, epoch uint64, id string, u Upload) (*domain.FileRef, *domain.IntakeError) {
	log := logger.FromContext(ctx, m.log).WithFields(map[string]interface{}{
		"upload_id": id,
		"file_name": u.Name,
		"file_size": u.Size,
	})
	ref, err := m.send(ctx, u)
	if err != nil {
		m.settle(id)
		metrics.UploadsTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
		log.WithError(err).Warn("file upload failed", nil)
		return nil, domain.NewUploadError(u.Name, err)
	}

	// Move the slot from in-flight to the draft atomically.
	m.mu.Lock()
	_, applied := m.store.UpdateIf(epoch, func(d domain.Draft) domain.Draft {
		d.FileUploads = append(d.FileUploads, ref)
		return d
	})
	delete(m.inFlight, id)
	m.mu.Unlock()
	if !applied {
		// The draft was reset while this file was uploading.
		metrics.UploadsTotal.WithLabelValues(metrics.OutcomeDiscard).Inc()
		log.Info("discarding upload for a reset draft", map[string]interface{}{"file_url": ref.FileURL})
		if err := m.files.DeleteFile(context.WithoutCancel(ctx), ref.FileURL); err != nil {
			log.WithError(err).Warn("failed to remove orphaned file", nil)
		}
		return nil, nil
	}

	metrics.UploadsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	return &ref, nil
}

func (m *UploadManager) send(ctx context.Context, u Upload) (domain.FileRef, error) {
	if u.Open == nil {
		return domain.FileRef{}, fmt.Errorf("no content")
	}
	rc, err := u.Open()
	if err != nil {
		return domain.FileRef{}, err
	}
	defer rc.Close()

	ref, err := m.files.UploadFile(ctx, u.Name, u.MimeType, rc)
	if err != nil {
		return domain.FileRef{}, err
	}
	if ref.FileName == "" {
		ref.FileName = u.Name
	}
	if ref.FileSize == 0 {
		ref.FileSize = u.Size
	}
	if ref.MimeType == "" {
		ref.MimeType = u.MimeType
	}
	return ref, nil
}

func (m *UploadManager) settle(id string) {
	m.mu.Lock()
	delete(m.inFlight, id)
	m.mu.Unlock()
}

// Delete removes the file with the given URL. The draft keeps the entry
// until the remote delete has succeeded.
func (m *UploadManager) Delete(ctx context.Context, fileURL string) error {
	d := m.store.Snapshot()
	idx := d.FileIndex(fileURL)
	if idx < 0 {
		return domain.ErrFileNotFound
	}
	name := d.FileUploads[idx].FileName

	m.mu.Lock()
	if m.deleting[fileURL] {
		m.mu.Unlock()
		return domain.ErrDeleteInProgress
	}
	m.deleting[fileURL] = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		delete(m.deleting, fileURL)
		m.mu.Unlock()
	}()

	log := logger.FromContext(ctx, m.log).WithFields(map[string]interface{}{"file_url": fileURL})
	if err := m.files.DeleteFile(ctx, fileURL); err != nil {
		metrics.DeletesTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
		log.WithError(err).Warn("file delete failed", nil)
		return domain.NewDeleteError(name, err)
	}

	m.store.Update(func(d domain.Draft) domain.Draft {
		if i := d.FileIndex(fileURL); i >= 0 {
			d.FileUploads = append(d.FileUploads[:i], d.FileUploads[i+1:]...)
		}
		return d
	})
	metrics.DeletesTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	return nil
}

// InFlight lists the current draft's unsettled uploads, oldest first.
func (m *UploadManager) InFlight() []InFlight {
	m.mu.Lock()
	epoch := m.store.Epoch()
	out := make([]InFlight, 0, len(m.inFlight))
	for _, f := range m.inFlight {
		if f.epoch == epoch {
			out = append(out, f)
		}
	}
	m.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].FileName < out[j].FileName
		}
		return out[i].StartedAt.Before(out[j].StartedAt)
	})
	return out
}

// Deleting lists the URLs whose remote delete is pending.
func (m *UploadManager) Deleting() []string {
	m.mu.Lock()
	out := make([]string, 0, len(m.deleting))
	for url := range m.deleting {
		out = append(out, url)
	}
	m.mu.Unlock()
	sort.Strings(out)
	return out
}

// Busy reports whether any upload or delete is pending.
func (m *UploadManager) Busy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.inFlight) > 0 || len(m.deleting) > 0
}

func capacityMessage(remaining, max int) string {
	if remaining <= 0 {
		return fmt.Sprintf("Maximum %d files allowed", max)
	}
	plural := "s"
	if remaining == 1 {
		plural = ""
	}
	return fmt.Sprintf("You can only upload %d more file%s. Maximum %d files allowed.", remaining, plural, max)
}
