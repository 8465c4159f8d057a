package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/prohmpiriya/career-passport/pkg/response"
)

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles liveness and readiness checks
type HealthHandler struct {
	store   Pinger
	version string
	responder
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(store Pinger, version string, opts Options) *HealthHandler {
	return &HealthHandler{
		store:     store,
		version:   version,
		responder: newResponder(opts),
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, response.OK().With("status", "healthy").With("version", h.version))
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.log(c).Warn("readiness check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, response.ServiceUnavailable("store is not ready"))
		return
	}
	c.JSON(http.StatusOK, response.OK().With("status", "ready"))
}
