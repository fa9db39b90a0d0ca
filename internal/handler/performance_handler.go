package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/uniplex/academic-api/internal/service"
	appErrors "github.com/uniplex/academic-api/pkg/errors"
	"github.com/uniplex/academic-api/pkg/response"
)

// PerformanceHandler serves performance summaries.
type PerformanceHandler struct {
	service *service.PerformanceService
}

// NewPerformanceHandler creates a new handler.
func NewPerformanceHandler(svc *service.PerformanceService) *PerformanceHandler {
	return &PerformanceHandler{service: svc}
}

// Summary godoc
// @Summary Get semester summary
// @Description Returns the stored semester summary for a student
// @Tags Performance
// @Produce json
// @Param id path string true "Student ID"
// @Param semester_id query string true "Semester ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/performance [get]
func (h *PerformanceHandler) Summary(c *gin.Context) {
	semesterID := c.Query("semester_id")
	if semesterID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "semester_id is required"))
		return
	}

	summary, err := h.service.Summary(c.Request.Context(), c.Param("id"), semesterID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, summary, nil)
}

// ListForStudent godoc
// @Summary List summaries
// @Description Returns all stored summaries of a student
// @Tags Performance
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/performance/history [get]
func (h *PerformanceHandler) ListForStudent(c *gin.Context) {
	summaries, err := h.service.ListForStudent(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, summaries, nil)
}

// Recompute godoc
// @Summary Recompute summary
// @Description Rebuild the semester summary from canonical grades
// @Tags Performance
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body map[string]string true "Semester ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/performance/recompute [post]
func (h *PerformanceHandler) Recompute(c *gin.Context) {
	var payload struct {
		SemesterID string `json:"semester_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "semester_id required"))
		return
	}

	summary, err := h.service.Recompute(c.Request.Context(), c.Param("id"), payload.SemesterID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, summary, nil)
}
