package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-schedule-api/internal/service"
	"github.com/noah-isme/exam-schedule-api/pkg/response"
)

type exportRenderer interface {
	Render(ctx context.Context, sourceID, format string) (service.ExportFile, error)
}

// ExportHandler serves schedule downloads.
type ExportHandler struct {
	service exportRenderer
}

// NewExportHandler constructs an export handler.
func NewExportHandler(svc exportRenderer) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Export godoc
// @Summary Download the schedule of a source
// @Description Renders the processed schedule as CSV or PDF
// @Tags Sources
// @Produce octet-stream
// @Param id path string true "Source id"
// @Param format query string true "Export format" Enums(csv, pdf)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sources/{id}/export [get]
func (h *ExportHandler) Export(c *gin.Context) {
	id := c.Param("id")
	format := c.DefaultQuery("format", "csv")

	file, err := h.service.Render(c.Request.Context(), id, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Content)
}
