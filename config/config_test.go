package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("AUTH_MODE", AuthModeHeader)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "http://localhost:3000/api", cfg.Backend.BaseURL)
	assert.Equal(t, int64(52428800), cfg.Uploads.MaxFileSize)
	assert.Equal(t, 10, cfg.Uploads.MaxFiles)
	assert.Equal(t, 0, cfg.Uploads.MaxConcurrent)
	assert.Equal(t, 2*time.Hour, cfg.Sessions.IdleTTL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("AUTH_MODE", AuthModeHeader)
	t.Setenv("API_BASE_URL", "https://api.example.com/api/")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("BACKEND_TIMEOUT", "5s")
	t.Setenv("UPLOAD_MAX_FILES", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com/api", cfg.Backend.BaseURL)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 5*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 10, cfg.Uploads.MaxFiles)
}

func TestValidate(t *testing.T) {
	t.Run("firebase mode needs credentials", func(t *testing.T) {
		t.Setenv("AUTH_MODE", AuthModeFirebase)
		t.Setenv("FIREBASE_CREDENTIALS_PATH", "")
		t.Setenv("FIREBASE_AUTH_EMULATOR_HOST", "")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("firebase emulator needs no credentials", func(t *testing.T) {
		t.Setenv("AUTH_MODE", AuthModeFirebase)
		t.Setenv("FIREBASE_CREDENTIALS_PATH", "")
		t.Setenv("FIREBASE_AUTH_EMULATOR_HOST", "localhost:9099")
		t.Setenv("FIREBASE_PROJECT_ID", "demo-venhawk")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "demo-venhawk", cfg.Firebase.ProjectID)
	})

	t.Run("unknown auth mode", func(t *testing.T) {
		t.Setenv("AUTH_MODE", "saml")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("non-positive upload limits", func(t *testing.T) {
		t.Setenv("AUTH_MODE", AuthModeHeader)
		t.Setenv("UPLOAD_MAX_FILE_SIZE", "0")

		_, err := Load()
		assert.Error(t, err)
	})
}

func TestLoadClient(t *testing.T) {
	t.Run("needs an access token", func(t *testing.T) {
		t.Setenv("INTAKE_ACCESS_TOKEN", "")

		_, err := LoadClient()
		assert.Error(t, err)
	})

	t.Run("ignores server auth settings", func(t *testing.T) {
		t.Setenv("INTAKE_ACCESS_TOKEN", "tok")
		t.Setenv("AUTH_MODE", AuthModeFirebase)
		t.Setenv("FIREBASE_CREDENTIALS_PATH", "")

		cfg, err := LoadClient()
		require.NoError(t, err)
		assert.Equal(t, "tok", cfg.Backend.AccessToken)
	})
}
