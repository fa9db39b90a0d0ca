package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/uniplex/academic-api/internal/service"
	appErrors "github.com/uniplex/academic-api/pkg/errors"
	"github.com/uniplex/academic-api/pkg/response"
)

// AttendanceHandler wires HTTP endpoints to attendance operations.
type AttendanceHandler struct {
	service *service.AttendanceService
}

// NewAttendanceHandler creates a new handler.
func NewAttendanceHandler(svc *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: svc}
}

// Mark godoc
// @Summary Mark attendance
// @Description Record marks for a whole class in one transaction
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.MarkAttendanceRequest true "Attendance payload"
// @Success 204 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /attendance [post]
func (h *AttendanceHandler) Mark(c *gin.Context) {
	var req service.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid attendance payload"))
		return
	}
	if req.MarkedBy == "" {
		if actor := actorFromContext(c); actor != nil {
			req.MarkedBy = *actor
		}
	}

	if err := h.service.Mark(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// ClassJournal godoc
// @Summary Get class journal
// @Description Returns the marks and journal status of a class
// @Tags Attendance
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/journal [get]
func (h *AttendanceHandler) ClassJournal(c *gin.Context) {
	sheet, marks, err := h.service.ClassJournal(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"journal": sheet, "marks": marks}, nil)
}

// StudentStats godoc
// @Summary Get student attendance
// @Description Returns a student's semester attendance statistics
// @Tags Attendance
// @Produce json
// @Param id path string true "Student ID"
// @Param semester_id query string true "Semester ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/attendance [get]
func (h *AttendanceHandler) StudentStats(c *gin.Context) {
	semesterID := c.Query("semester_id")
	if semesterID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "semester_id is required"))
		return
	}

	stats, err := h.service.StudentStats(c.Request.Context(), c.Param("id"), semesterID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, stats, nil)
}

// VerifyJournal godoc
// @Summary Verify class journal
// @Description Mark a fully filled journal as verified
// @Tags Attendance
// @Produce json
// @Param id path string true "Class ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /classes/{id}/journal/verify [post]
func (h *AttendanceHandler) VerifyJournal(c *gin.Context) {
	verifiedBy := ""
	if actor := actorFromContext(c); actor != nil {
		verifiedBy = *actor
	}

	if err := h.service.VerifyJournal(c.Request.Context(), c.Param("id"), verifiedBy); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
