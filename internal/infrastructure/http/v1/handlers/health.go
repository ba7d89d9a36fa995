// Package handlers provides HTTP request handlers.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger checks the backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	store     Pinger
	storage   string
	version   string
	startedAt time.Time
	stats     func() any
}

// NewHealthHandler creates a new health handler. stats may be nil; when set
// its result is reported under "database" by Info.
func NewHealthHandler(store Pinger, storage, version string, stats func() any) *HealthHandler {
	return &HealthHandler{
		store:     store,
		storage:   storage,
		version:   version,
		startedAt: time.Now(),
		stats:     stats,
	}
}

// Live reports whether the process is alive.
// GET /health/live
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports whether the service can accept traffic.
// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "error",
			"checks": map[string]string{h.storage: "unhealthy: " + err.Error()},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"checks": map[string]string{h.storage: "healthy"},
	})
}

// Info returns application information.
// GET /health/info
func (h *HealthHandler) Info(c *gin.Context) {
	info := gin.H{
		"app":            "laluna",
		"version":        h.version,
		"storage":        h.storage,
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
	}
	if h.stats != nil {
		info["database"] = h.stats()
	}
	c.JSON(http.StatusOK, info)
}
