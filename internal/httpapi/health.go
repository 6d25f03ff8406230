package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is satisfied by the store and cache implementations.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the liveness and readiness endpoints.
type HealthHandler struct {
	store        Pinger
	cache        Pinger
	cacheBackend string
	environment  string
	started      time.Time
}

// NewHealthHandler returns a handler that pings store and cache.
func NewHealthHandler(store, cache Pinger, cacheBackend, environment string) *HealthHandler {
	return &HealthHandler{
		store:        store,
		cache:        cache,
		cacheBackend: cacheBackend,
		environment:  environment,
		started:      time.Now(),
	}
}

// Health reports 200 when the store answers a ping and 503 otherwise. A
// failing cache is reported but does not fail the check, since requests
// still succeed without it.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	message := "OK"
	storeStatus := gin.H{"status": "connected"}
	if err := h.store.Ping(ctx); err != nil {
		status = http.StatusServiceUnavailable
		message = "ERROR"
		storeStatus = gin.H{"status": "error", "error": err.Error()}
	}

	cacheStatus := gin.H{"backend": h.cacheBackend, "status": "connected"}
	if err := h.cache.Ping(ctx); err != nil {
		cacheStatus["status"] = "degraded"
		cacheStatus["error"] = err.Error()
	}

	c.JSON(status, gin.H{
		"uptime":      time.Since(h.started).Seconds(),
		"message":     message,
		"timestamp":   time.Now().UnixMilli(),
		"environment": h.environment,
		"database":    storeStatus,
		"cache":       cacheStatus,
	})
}

// Ping answers without touching any dependency.
func (h *HealthHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong", "timestamp": time.Now().UnixMilli()})
}
