package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/uniplex/academic-api/internal/models"
	"github.com/uniplex/academic-api/internal/service"
	appErrors "github.com/uniplex/academic-api/pkg/errors"
	"github.com/uniplex/academic-api/pkg/response"
)

// ExportHandler wires HTTP endpoints to document exports.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler creates a new handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

func exportFormat(c *gin.Context) (models.ExportFormat, bool) {
	format := models.ExportFormat(c.DefaultQuery("format", "csv"))
	if format != models.ExportCSV && format != models.ExportPDF {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
		return "", false
	}
	return format, true
}

// Sheet godoc
// @Summary Export grade sheet
// @Description Render a sheet roster with grades into CSV or PDF
// @Tags Exports
// @Produce json
// @Param id path string true "Sheet ID"
// @Param format query string false "csv or pdf"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /grade-sheets/{id}/export [post]
func (h *ExportHandler) Sheet(c *gin.Context) {
	format, ok := exportFormat(c)
	if !ok {
		return
	}

	result, err := h.service.ExportSheet(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, result, nil)
}

// StudentSummary godoc
// @Summary Export student summary
// @Description Render a student's performance summaries into CSV or PDF
// @Tags Exports
// @Produce json
// @Param id path string true "Student ID"
// @Param format query string false "csv or pdf"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/performance/export [post]
func (h *ExportHandler) StudentSummary(c *gin.Context) {
	format, ok := exportFormat(c)
	if !ok {
		return
	}

	result, err := h.service.ExportStudentSummary(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, result, nil)
}

// Download godoc
// @Summary Download export
// @Description Stream a stored export file referenced by a signed token
// @Tags Exports
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /exports/download [get]
func (h *ExportHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}

	result, data, err := h.service.Open(token)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+result.FileName)
	c.Data(http.StatusOK, result.ContentType, data)
}
