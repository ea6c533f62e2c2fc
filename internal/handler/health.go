package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const healthCheckTimeout = 2 * time.Second

// Pinger reports whether a dependency is reachable.
type Pinger func(ctx context.Context) error

type HealthHandler struct {
	deps   map[string]Pinger
	logger *zap.Logger
}

func NewHealthHandler(deps map[string]Pinger, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		deps:   deps,
		logger: logger.Named("HealthHandler"),
	}
}

func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	healthy := true
	statuses := gin.H{}
	for name, ping := range h.deps {
		if err := ping(ctx); err != nil {
			healthy = false
			statuses[name] = "error"
			h.logger.Error("Health check: dependency ping failed", zap.String("dependency", name), zap.Error(err))
			continue
		}
		statuses[name] = "ok"
	}

	if !healthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "dependencies": statuses})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "dependencies": statuses})
}
