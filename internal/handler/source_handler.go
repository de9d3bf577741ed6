package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-schedule-api/internal/middleware"
	"github.com/noah-isme/exam-schedule-api/internal/models"
	"github.com/noah-isme/exam-schedule-api/internal/service"
	"github.com/noah-isme/exam-schedule-api/pkg/response"
)

type scheduleService interface {
	Get(ctx context.Context, id string, force bool) (models.SourceResult, service.ResultMeta, error)
	List(ctx context.Context) []models.SourceStatus
}

// SourceHandler exposes the schedule endpoints.
type SourceHandler struct {
	service scheduleService
}

// NewSourceHandler constructs a source handler.
func NewSourceHandler(svc scheduleService) *SourceHandler {
	return &SourceHandler{service: svc}
}

// List godoc
// @Summary List registered sources
// @Description Every academic unit with its availability and cache state
// @Tags Sources
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /sources [get]
func (h *SourceHandler) List(c *gin.Context) {
	statuses := h.service.List(c.Request.Context())
	response.JSON(c, http.StatusOK, statuses, middleware.Extract(c))
}

// Get godoc
// @Summary Get the processed schedule of a source
// @Description Full normalized schedule grouped by program
// @Tags Sources
// @Produce json
// @Param id path string true "Source id"
// @Param refresh query bool false "Bypass the cache freshness check"
// @Param debug query bool false "Include sheet-level diagnostics"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /sources/{id} [get]
func (h *SourceHandler) Get(c *gin.Context) {
	id := c.Param("id")
	force, _ := strconv.ParseBool(c.Query("refresh"))
	debug, _ := strconv.ParseBool(c.Query("debug"))

	result, meta, err := h.service.Get(c.Request.Context(), id, force)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !debug {
		result.Debug = nil
	}

	middleware.SetCacheInfo(c, meta.CacheHit, meta.AgeMinutes, meta.NextRefreshAt)
	response.JSON(c, http.StatusOK, result, middleware.Extract(c))
}

// Refresh godoc
// @Summary Force a refresh of a source
// @Description Re-runs the pipeline and overwrites the cached entry
// @Tags Sources
// @Produce json
// @Param id path string true "Source id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /sources/{id}/refresh [post]
func (h *SourceHandler) Refresh(c *gin.Context) {
	id := c.Param("id")

	result, meta, err := h.service.Get(c.Request.Context(), id, true)
	if err != nil {
		response.Error(c, err)
		return
	}
	result.Debug = nil

	middleware.SetCacheInfo(c, meta.CacheHit, meta.AgeMinutes, meta.NextRefreshAt)
	response.JSON(c, http.StatusOK, result, middleware.Extract(c))
}
