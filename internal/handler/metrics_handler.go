package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-schedule-api/internal/service"
)

// MetricsHandler exposes the Prometheus scrape endpoint.
type MetricsHandler struct {
	metrics *service.MetricsService
}

// NewMetricsHandler constructs the handler.
func NewMetricsHandler(metrics *service.MetricsService) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

// Metrics serves the Prometheus exposition format.
func (h *MetricsHandler) Metrics(c *gin.Context) {
	gin.WrapH(h.metrics.Handler())(c)
}
