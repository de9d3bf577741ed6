package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/exam-schedule-api/pkg/response"
)

// HealthHandler answers liveness and readiness probes.
type HealthHandler struct {
	redis   *redis.Client
	version string
}

// NewHealthHandler constructs the handler. The Redis client may be nil when
// caching is disabled.
func NewHealthHandler(redisClient *redis.Client, version string) *HealthHandler {
	return &HealthHandler{redis: redisClient, version: version}
}

// Health godoc
// @Summary Liveness probe
// @Tags Health
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	response.JSON(c, http.StatusOK, gin.H{
		"status":  "ok",
		"version": h.version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready godoc
// @Summary Readiness probe
// @Description Reports dependency status; degrades rather than failing when
// the cache is unreachable.
// @Tags Health
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	deps := gin.H{}
	status := "ok"

	if h.redis != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.redis.Ping(ctx).Err(); err != nil {
			deps["redis"] = "unreachable"
			status = "degraded"
		} else {
			deps["redis"] = "ok"
		}
	} else {
		deps["redis"] = "disabled"
	}

	response.JSON(c, http.StatusOK, gin.H{
		"status":       status,
		"dependencies": deps,
	})
}
