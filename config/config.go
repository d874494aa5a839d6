package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	AuthModeFirebase = "firebase"
	AuthModeHeader   = "header"
)

type Config struct {
	Server   ServerConfig
	App      AppConfig
	Backend  BackendConfig
	Uploads  UploadConfig
	Redis    RedisConfig
	Firebase FirebaseConfig
	Sessions SessionConfig
}

type ServerConfig struct {
	Port           string
	AllowedOrigins []string
}

type AppConfig struct {
	Environment string
	LogLevel    string
	LogFormat   string
	Version     string
	ServiceName string
}

// BackendConfig points at the vendor-matching REST API.
type BackendConfig struct {
	BaseURL     string
	Timeout     time.Duration
	RateLimit   float64
	Burst       int
	AccessToken string // terminal client only
}

type UploadConfig struct {
	MaxFileSize   int64
	MaxFiles      int
	MaxConcurrent int
}

type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	SnapshotTTL time.Duration
}

type FirebaseConfig struct {
	AuthMode        string
	CredentialsPath string
	ProjectID       string
	// EmulatorHost is read by the Firebase SDK itself; it is kept here so
	// validation can allow running without credentials.
	EmulatorHost string
}

type SessionConfig struct {
	IdleTTL   time.Duration
	SweepSpec string
}

func Load() (*Config, error) {
	cfg := load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadClient loads the settings of the terminal client, which talks to the
// backend directly and needs no server-side auth.
func LoadClient() (*Config, error) {
	cfg := load()
	if err := cfg.ValidateClient(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func load() *Config {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			LogFormat:   getEnv("LOG_FORMAT", "console"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			ServiceName: getEnv("SERVICE_NAME", "venhawk-intake"),
		},
		Backend: BackendConfig{
			BaseURL:     strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:3000/api"), "/"),
			Timeout:     getEnvAsDuration("BACKEND_TIMEOUT", 30*time.Second),
			RateLimit:   getEnvAsFloat("BACKEND_RATE_LIMIT", 10),
			Burst:       getEnvAsInt("BACKEND_BURST", 20),
			AccessToken: getEnv("INTAKE_ACCESS_TOKEN", ""),
		},
		Uploads: UploadConfig{
			MaxFileSize:   int64(getEnvAsInt("UPLOAD_MAX_FILE_SIZE", 50*1024*1024)),
			MaxFiles:      getEnvAsInt("UPLOAD_MAX_FILES", 10),
			MaxConcurrent: getEnvAsInt("UPLOAD_MAX_CONCURRENT", 0),
		},
		Redis: RedisConfig{
			Addr:        getEnv("REDIS_ADDR", ""),
			Password:    getEnv("REDIS_PASSWORD", ""),
			DB:          getEnvAsInt("REDIS_DB", 0),
			SnapshotTTL: getEnvAsDuration("DRAFT_SNAPSHOT_TTL", 7*24*time.Hour),
		},
		Firebase: FirebaseConfig{
			AuthMode:        getEnv("AUTH_MODE", AuthModeFirebase),
			CredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
			ProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
			EmulatorHost:    getEnv("FIREBASE_AUTH_EMULATOR_HOST", ""),
		},
		Sessions: SessionConfig{
			IdleTTL:   getEnvAsDuration("SESSION_IDLE_TTL", 2*time.Hour),
			SweepSpec: getEnv("SESSION_SWEEP_SPEC", "@every 5m"),
		},
	}
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Backend.BaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}

	switch c.Firebase.AuthMode {
	case AuthModeFirebase:
		if c.Firebase.CredentialsPath == "" && c.Firebase.EmulatorHost == "" {
			return fmt.Errorf("FIREBASE_CREDENTIALS_PATH is required when AUTH_MODE=firebase")
		}
	case AuthModeHeader:
	default:
		return fmt.Errorf("AUTH_MODE must be %q or %q", AuthModeFirebase, AuthModeHeader)
	}

	if c.Uploads.MaxFileSize <= 0 || c.Uploads.MaxFiles <= 0 {
		return fmt.Errorf("upload limits must be positive")
	}

	return nil
}

func (c *Config) ValidateClient() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	if c.Backend.AccessToken == "" {
		return fmt.Errorf("INTAKE_ACCESS_TOKEN is required")
	}
	if c.Uploads.MaxFileSize <= 0 || c.Uploads.MaxFiles <= 0 {
		return fmt.Errorf("upload limits must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid number for %s, using default: %g", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
