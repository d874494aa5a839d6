package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venhawk/venhawk-intake/internal/auth/middleware"
	"github.com/venhawk/venhawk-intake/internal/backend"
	"github.com/venhawk/venhawk-intake/internal/intake/domain"
	"github.com/venhawk/venhawk-intake/internal/intake/service"
)

type memFiles struct {
	mu      sync.Mutex
	n       int
	deleted []string
}

func (f *memFiles) UploadFile(ctx context.Context, name, mimeType string, content io.Reader) (domain.FileRef, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return domain.FileRef{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.n++
	return domain.FileRef{
		FileURL:  fmt.Sprintf("https://files.example.com/%d/%s", f.n, name),
		FileName: name,
		FileSize: int64(len(data)),
		MimeType: mimeType,
	}, nil
}

func (f *memFiles) DeleteFile(ctx context.Context, fileURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, fileURL)
	return nil
}

type stubCreator struct {
	err     error
	vendors []domain.Vendor
	got     domain.ProjectPayload
}

func (s *stubCreator) CreateProject(ctx context.Context, p domain.ProjectPayload) (*domain.ProjectResult, error) {
	s.got = p
	if s.err != nil {
		return nil, s.err
	}
	return &domain.ProjectResult{ID: "p-1", MatchedVendors: s.vendors}, nil
}

type stubSaver struct {
	owner string
	draft domain.Draft
}

func (s *stubSaver) SaveDraft(ctx context.Context, owner string, d domain.Draft) error {
	s.owner, s.draft = owner, d
	return nil
}

type testEnv struct {
	router  *gin.Engine
	files   *memFiles
	creator *stubCreator
	saver   *stubSaver
}

func setup(t *testing.T, withSaver bool) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{files: &memFiles{}, creator: &stubCreator{}}
	newWizard := func(id string) *service.Wizard {
		return service.NewWizard(id, service.WizardDeps{Files: env.files, Creator: env.creator})
	}
	deps := Deps{Sessions: service.NewSessionRegistry(newWizard, time.Hour, nil)}
	if withSaver {
		env.saver = &stubSaver{}
		deps.Saver = env.saver
	}

	r := gin.New()
	g := r.Group("/api/v1/intake", middleware.HeaderAuthMiddleware())
	New(deps).Register(g)
	env.router = r
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, "/api/v1/intake"+path, rd)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "u1")
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decodeState(t *testing.T, rr *httptest.ResponseRecorder) service.State {
	t.Helper()
	var st service.State
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &st))
	return st
}

func details() map[string]string {
	return map[string]string{
		"projectTitle":         "DMS migration",
		"projectCategory":      "cloud-migration",
		"projectObjective":     "Move to the cloud",
		"businessRequirements": "No downtime",
	}
}

func (e *testEnv) toReview(t *testing.T) {
	t.Helper()
	require.Equal(t, http.StatusOK, e.do(t, http.MethodPatch, "/wizard/details", details()).Code)
	require.Equal(t, http.StatusOK, e.do(t, http.MethodPost, "/wizard/next", nil).Code)
	require.Equal(t, http.StatusOK, e.do(t, http.MethodPatch, "/wizard/timeline", map[string]interface{}{
		"startDate":   "2026-01-05",
		"budgetType":  "single",
		"totalBudget": "50000",
	}).Code)
	require.Equal(t, http.StatusOK, e.do(t, http.MethodPost, "/wizard/next", nil).Code)
}

func TestRequiresUser(t *testing.T) {
	env := setup(t, false)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/intake/wizard", nil)
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestOptions(t *testing.T) {
	env := setup(t, false)
	rr := env.do(t, http.MethodGet, "/options", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var c domain.Catalog
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &c))
	assert.Len(t, c.Industries, 1)
	assert.Equal(t, "other", c.Categories[len(c.Categories)-1].Value)
}

func TestInitialWizard(t *testing.T) {
	env := setup(t, false)
	st := decodeState(t, env.do(t, http.MethodGet, "/wizard", nil))

	assert.Equal(t, service.StepProjectDetails, st.Step)
	assert.Equal(t, "/", st.Route)
	assert.Equal(t, "legal", st.Draft.ClientIndustry)
	assert.False(t, st.CanAdvance)
	assert.Contains(t, st.Errors, "projectTitle")
}

func TestNextWithInvalidScreen(t *testing.T) {
	env := setup(t, false)
	rr := env.do(t, http.MethodPost, "/wizard/next", nil)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "MISSING_FIELD", resp.Code)
	assert.Equal(t, "Project title is required", resp.Errors["projectTitle"])
	require.NotNil(t, resp.State)
	assert.Equal(t, service.StepProjectDetails, resp.State.Step)
}

func TestDetailsAreSanitized(t *testing.T) {
	env := setup(t, false)
	rr := env.do(t, http.MethodPatch, "/wizard/details", map[string]string{
		"projectTitle": `<script>alert(1)</script>Move & merge`,
	})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Move & merge", decodeState(t, rr).Draft.ProjectTitle)
}

func TestTimelineOnWrongStep(t *testing.T) {
	env := setup(t, false)
	rr := env.do(t, http.MethodPatch, "/wizard/timeline", map[string]string{"totalBudget": "5"})
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestInvalidBudgetType(t *testing.T) {
	env := setup(t, false)
	env.do(t, http.MethodPatch, "/wizard/details", details())
	env.do(t, http.MethodPost, "/wizard/next", nil)

	rr := env.do(t, http.MethodPatch, "/wizard/timeline", map[string]string{"budgetType": "hourly"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "INVALID_FORMAT")
}

func TestUnknownCategory(t *testing.T) {
	env := setup(t, false)

	body := details()
	body["projectCategory"] = "space-elevator"
	rr := env.do(t, http.MethodPatch, "/wizard/details", body)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "INVALID_FORMAT")
	assert.Contains(t, rr.Body.String(), "space-elevator")

	rr = env.do(t, http.MethodPatch, "/wizard/details", map[string]string{"clientIndustry": "aerospace"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestFlowAndSubmit(t *testing.T) {
	env := setup(t, false)
	env.creator.vendors = []domain.Vendor{{ID: "v1", Name: "Acme"}}
	env.toReview(t)

	st := decodeState(t, env.do(t, http.MethodGet, "/wizard", nil))
	assert.Equal(t, service.StepReviewSubmit, st.Step)
	assert.Equal(t, "50,000", st.Draft.TotalBudget)

	rr := env.do(t, http.MethodPost, "/wizard/submit", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	st = decodeState(t, rr)
	assert.Equal(t, service.StepSubmitted, st.Step)
	assert.Equal(t, "/vendors", st.Route)
	assert.Equal(t, "50000", env.creator.got.TotalBudget)

	rr = env.do(t, http.MethodGet, "/wizard/results", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var res ResultsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.Equal(t, 1, res.Count)
	assert.Equal(t, "Acme", res.Vendors[0].Name)
}

func TestSubmitFailureKeepsDraft(t *testing.T) {
	env := setup(t, false)
	env.creator.err = &backend.APIError{Status: 400, Message: "Budget too low"}
	env.toReview(t)

	rr := env.do(t, http.MethodPost, "/wizard/submit", nil)
	require.Equal(t, http.StatusBadGateway, rr.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Budget too low", resp.Error)
	assert.Equal(t, "SUBMISSION_FAILED", resp.Code)
	require.NotNil(t, resp.State)
	assert.Equal(t, service.StepReviewSubmit, resp.State.Step)
	assert.Equal(t, "DMS migration", resp.State.Draft.ProjectTitle)
}

func TestResultsRedirectWithoutSubmission(t *testing.T) {
	env := setup(t, false)
	rr := env.do(t, http.MethodGet, "/wizard/results", nil)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/api/v1/intake/wizard", rr.Header().Get("Location"))
}

func TestBackAndEdit(t *testing.T) {
	env := setup(t, false)
	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodPost, "/wizard/back", nil).Code)

	env.toReview(t)
	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodPost, "/wizard/back", nil).Code)

	rr := env.do(t, http.MethodPost, "/wizard/edit", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, service.StepProjectDetails, decodeState(t, rr).Step)
}

func multipartBody(t *testing.T, names ...string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, n := range names {
		fw, err := mw.CreateFormFile("files", n)
		require.NoError(t, err)
		_, err = fw.Write([]byte("content of " + n))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadAndDeleteFiles(t *testing.T) {
	env := setup(t, false)

	body, ct := multipartBody(t, "a.pdf", "b.pdf")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/intake/wizard/files", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("X-User-Id", "u1")
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Result service.BatchResult `json:"result"`
		State  service.State       `json:"state"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Len(t, resp.Result.Accepted, 2)
	assert.Empty(t, resp.Result.Failures)
	require.Len(t, resp.State.Draft.FileUploads, 2)

	target := resp.State.Draft.FileUploads[0].FileURL
	rr = env.do(t, http.MethodDelete, "/wizard/files?url="+target, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decodeState(t, rr).Draft.FileUploads, 1)
	assert.Equal(t, []string{target}, env.files.deleted)

	rr = env.do(t, http.MethodDelete, "/wizard/files?url="+target, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = env.do(t, http.MethodDelete, "/wizard/files", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUploadWithoutFiles(t *testing.T) {
	env := setup(t, false)
	body, ct := multipartBody(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/intake/wizard/files", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("X-User-Id", "u1")
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSaveDraft(t *testing.T) {
	env := setup(t, false)
	assert.Equal(t, http.StatusServiceUnavailable, env.do(t, http.MethodPost, "/wizard/draft", nil).Code)

	env = setup(t, true)
	env.do(t, http.MethodPatch, "/wizard/details", details())
	rr := env.do(t, http.MethodPost, "/wizard/draft", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "u1", env.saver.owner)
	assert.Equal(t, "DMS migration", env.saver.draft.ProjectTitle)
}

func TestRestart(t *testing.T) {
	env := setup(t, false)
	env.toReview(t)

	rr := env.do(t, http.MethodPost, "/wizard/restart", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	st := decodeState(t, rr)
	assert.Equal(t, service.StepProjectDetails, st.Step)
	assert.Empty(t, st.Draft.ProjectTitle)
	assert.Equal(t, "legal", st.Draft.ClientIndustry)
	assert.True(t, strings.HasPrefix(st.Route, "/"))
}
