package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venhawk/venhawk-intake/config"
	"github.com/venhawk/venhawk-intake/internal/auth/middleware"
	authsvc "github.com/venhawk/venhawk-intake/internal/auth/service"
	"github.com/venhawk/venhawk-intake/internal/backend"
	intake "github.com/venhawk/venhawk-intake/internal/intake/domain"
)

type countingSyncer struct{ calls int }

func (s *countingSyncer) SyncUser(ctx context.Context, profile intake.UserProfile) error {
	s.calls++
	return nil
}

func testRouter(t *testing.T) (*gin.Engine, *countingSyncer) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Uploads:  config.UploadConfig{MaxFileSize: 1024, MaxFiles: 2},
		Sessions: config.SessionConfig{IdleTTL: time.Hour},
	}
	client := backend.NewClient("http://127.0.0.1:1", time.Second, nil)
	in := BuildIntake(cfg, client, nil, nil)

	syncer := &countingSyncer{}
	r := BuildRouter(RouterDeps{
		ServiceName:    "venhawk-intake",
		Version:        "test",
		AllowedOrigins: []string{"http://localhost:5173"},
		Auth:           middleware.HeaderAuthMiddleware(),
		AuthService:    authsvc.NewAuthService(syncer, nil),
		Intake:         in.Handler,
		Sessions:       in.Sessions,
	})
	return r, syncer
}

func TestRouterHealthAndMetrics(t *testing.T) {
	r, _ := testRouter(t)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Request-Id"))
	assert.Contains(t, rr.Body.String(), `"activeSessions":0`)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRouterIntakeRequiresAuthAndSyncsOnce(t *testing.T) {
	r, syncer := testRouter(t)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/intake/wizard", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/intake/wizard", nil)
		req.Header.Set("X-User-Id", "u1")
		rr = httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)
	}
	assert.Equal(t, 1, syncer.calls)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/intake/wizard/draft", nil)
	req.Header.Set("X-User-Id", "u1")
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestRouterCORSPreflight(t *testing.T) {
	r, _ := testRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/intake/wizard", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "PATCH")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "http://localhost:5173", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestSetGinMode(t *testing.T) {
	t.Cleanup(func() { gin.SetMode(gin.TestMode) })

	SetGinMode("production")
	assert.Equal(t, gin.ReleaseMode, gin.Mode())

	SetGinMode("development")
	assert.Equal(t, gin.DebugMode, gin.Mode())

	SetGinMode("test")
	assert.Equal(t, gin.TestMode, gin.Mode())
}

func TestAuthMiddleware(t *testing.T) {
	ctx := context.Background()

	mw, err := AuthMiddleware(ctx, &config.FirebaseConfig{AuthMode: config.AuthModeHeader})
	require.NoError(t, err)
	assert.NotNil(t, mw)

	_, err = AuthMiddleware(ctx, &config.FirebaseConfig{AuthMode: "saml"})
	assert.Error(t, err)

	_, err = AuthMiddleware(ctx, &config.FirebaseConfig{AuthMode: config.AuthModeFirebase})
	assert.Error(t, err)
}
