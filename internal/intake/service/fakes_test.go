package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/venhawk/venhawk-intake/internal/intake/domain"
)

// fakeFiles is an in-memory FileService. Uploads of names listed in fail
// return an error; gate, when set, blocks every call until it is closed.
type fakeFiles struct {
	mu        sync.Mutex
	fail      map[string]error
	deleteErr error
	gate      chan struct{}
	started   chan string
	deleted   []string

	active    atomic.Int32
	maxActive atomic.Int32
}

func newFakeFiles() *fakeFiles {
	return &fakeFiles{fail: map[string]error{}}
}

func (f *fakeFiles) UploadFile(ctx context.Context, name, mimeType string, content io.Reader) (domain.FileRef, error) {
	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		m := f.maxActive.Load()
		if n <= m || f.maxActive.CompareAndSwap(m, n) {
			break
		}
	}

	data, err := io.ReadAll(content)
	if err != nil {
		return domain.FileRef{}, err
	}
	if f.started != nil {
		f.started <- name
	}
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return domain.FileRef{}, ctx.Err()
		}
	}

	f.mu.Lock()
	err = f.fail[name]
	f.mu.Unlock()
	if err != nil {
		return domain.FileRef{}, err
	}
	return domain.FileRef{
		FileURL:  "https://files.example/" + name,
		FileName: name,
		FileSize: int64(len(data)),
		MimeType: mimeType,
	}, nil
}

func (f *fakeFiles) DeleteFile(ctx context.Context, fileURL string) error {
	if f.started != nil {
		f.started <- fileURL
	}
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, fileURL)
	return nil
}

func (f *fakeFiles) deletedURLs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

func upload(name string, size int64) Upload {
	return Upload{
		Name:     name,
		Size:     size,
		MimeType: "application/pdf",
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(name)), nil
		},
	}
}

func uploads(n int) []Upload {
	out := make([]Upload, n)
	for i := range out {
		out[i] = upload(fmt.Sprintf("file-%02d.pdf", i), 1024)
	}
	return out
}

// fakeCreator records payloads and answers with result or err. When gate is
// set the call blocks until it is closed.
type fakeCreator struct {
	mu       sync.Mutex
	payloads []domain.ProjectPayload
	result   *domain.ProjectResult
	err      error
	gate     chan struct{}
	entered  chan struct{}
}

func (c *fakeCreator) CreateProject(ctx context.Context, p domain.ProjectPayload) (*domain.ProjectResult, error) {
	if c.entered != nil {
		close(c.entered)
	}
	if c.gate != nil {
		<-c.gate
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.payloads = append(c.payloads, p)
	if c.err != nil {
		return nil, c.err
	}
	if c.result == nil {
		return nil, errors.New("no result configured")
	}
	return c.result, nil
}
