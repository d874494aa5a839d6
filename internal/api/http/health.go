package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// SessionCounter reports how many wizard sessions are held in memory.
type SessionCounter interface {
	Len() int
}

type HealthResponse struct {
	Status         string    `json:"status"`
	Timestamp      time.Time `json:"timestamp"`
	Service        string    `json:"service"`
	Version        string    `json:"version"`
	Redis          string    `json:"redis,omitempty"`
	ActiveSessions *int      `json:"activeSessions,omitempty"`
}

type HealthHandler struct {
	serviceName string
	version     string
	redis       *redis.Client
	sessions    SessionCounter
}

func NewHealthHandler(serviceName, version string, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		redis:       rdb,
	}
}

// WithSessions adds the live session count to every health response.
func (h *HealthHandler) WithSessions(s SessionCounter) *HealthHandler {
	h.sessions = s
	return h
}

// HealthCheck always answers 200. A configured Redis that does not answer
// turns the status to "degraded": the wizard still works but "Save draft"
// fails.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Service:   h.serviceName,
		Version:   h.version,
		Redis:     h.redisStatus(c.Request.Context()),
	}
	if resp.Redis == "down" {
		resp.Status = "degraded"
	}
	if h.sessions != nil {
		n := h.sessions.Len()
		resp.ActiveSessions = &n
	}
	c.JSON(http.StatusOK, resp)
}

func (h *HealthHandler) redisStatus(ctx context.Context) string {
	if h.redis == nil {
		return "disabled"
	}
	pingCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := h.redis.Ping(pingCtx).Err(); err != nil {
		return "down"
	}
	return "up"
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.HealthCheck)
}
