package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/uniplex/academic-api/internal/models"
	"github.com/uniplex/academic-api/internal/service"
	appErrors "github.com/uniplex/academic-api/pkg/errors"
	"github.com/uniplex/academic-api/pkg/response"
)

// GradeHandler wires HTTP endpoints to canonical grade operations.
type GradeHandler struct {
	service *service.GradebookService
}

// NewGradeHandler creates a new handler.
func NewGradeHandler(svc *service.GradebookService) *GradeHandler {
	return &GradeHandler{service: svc}
}

// Upsert godoc
// @Summary Record grade
// @Description Record a grade directly and run the propagation chain
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body service.UpsertGradeRequest true "Grade payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /grades [post]
func (h *GradeHandler) Upsert(c *gin.Context) {
	var req service.UpsertGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid grade payload"))
		return
	}
	if req.GradedBy == "" {
		if actor := actorFromContext(c); actor != nil {
			req.GradedBy = *actor
		}
	}

	grade, err := h.service.UpsertGrade(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, grade, nil)
}

// Annul godoc
// @Summary Annul grade
// @Description Void a grade and re-derive summary and standing
// @Tags Grades
// @Accept json
// @Produce json
// @Param id path string true "Grade ID"
// @Param payload body map[string]string false "Annulment reason"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /grades/{id}/annul [post]
func (h *GradeHandler) Annul(c *gin.Context) {
	var payload struct {
		Reason *string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&payload)

	if err := h.service.AnnulGrade(c.Request.Context(), c.Param("id"), actorFromContext(c), payload.Reason); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// List godoc
// @Summary List grades
// @Description List canonical grades with filters and pagination
// @Tags Grades
// @Produce json
// @Param student_id query string false "Student filter"
// @Param subject_id query string false "Subject filter"
// @Param semester_id query string false "Semester filter"
// @Param grade_type_id query string false "Grade type filter"
// @Param status query string false "Status filter"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /grades [get]
func (h *GradeHandler) List(c *gin.Context) {
	filter := models.GradeFilter{
		StudentID:   c.Query("student_id"),
		SubjectID:   c.Query("subject_id"),
		SemesterID:  c.Query("semester_id"),
		GradeTypeID: c.Query("grade_type_id"),
	}
	if status := c.Query("status"); status != "" {
		s := models.GradeStatus(status)
		filter.Status = &s
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	grades, total, err := h.service.ListGrades(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, grades, &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	})
}

// History godoc
// @Summary List grade history
// @Description List ledger rows for a student, subject or semester scope
// @Tags Grades
// @Produce json
// @Param student_id query string false "Student filter"
// @Param subject_id query string false "Subject filter"
// @Param semester_id query string false "Semester filter"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /grades/history [get]
func (h *GradeHandler) History(c *gin.Context) {
	filter := models.HistoryFilter{
		StudentID:  c.Query("student_id"),
		SubjectID:  c.Query("subject_id"),
		SemesterID: c.Query("semester_id"),
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	entries, total, err := h.service.GradeHistory(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, entries, &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	})
}
