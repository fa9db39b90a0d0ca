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

// GradeSheetHandler wires HTTP endpoints to sheet lifecycle operations.
type GradeSheetHandler struct {
	service *service.GradebookService
}

// NewGradeSheetHandler creates a new handler.
func NewGradeSheetHandler(svc *service.GradebookService) *GradeSheetHandler {
	return &GradeSheetHandler{service: svc}
}

// Create godoc
// @Summary Create grade sheet
// @Description Open a sheet and pin the group roster
// @Tags GradeSheets
// @Accept json
// @Produce json
// @Param payload body service.CreateSheetRequest true "Sheet payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /grade-sheets [post]
func (h *GradeSheetHandler) Create(c *gin.Context) {
	var req service.CreateSheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid sheet payload"))
		return
	}
	if req.IssuedBy == nil {
		req.IssuedBy = actorFromContext(c)
	}

	sheet, err := h.service.CreateSheet(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, sheet)
}

// Get godoc
// @Summary Get grade sheet
// @Description Returns a sheet with its items
// @Tags GradeSheets
// @Produce json
// @Param id path string true "Sheet ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /grade-sheets/{id} [get]
func (h *GradeSheetHandler) Get(c *gin.Context) {
	sheet, err := h.service.GetSheet(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, sheet, nil)
}

// List godoc
// @Summary List grade sheets
// @Description List sheets with filters and pagination
// @Tags GradeSheets
// @Produce json
// @Param subject_id query string false "Subject filter"
// @Param group_id query string false "Group filter"
// @Param semester_id query string false "Semester filter"
// @Param sheet_type query string false "Sheet type filter"
// @Param status query string false "Status filter"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /grade-sheets [get]
func (h *GradeSheetHandler) List(c *gin.Context) {
	filter := models.SheetFilter{
		SubjectID:  c.Query("subject_id"),
		GroupID:    c.Query("group_id"),
		SemesterID: c.Query("semester_id"),
	}
	if sheetType := c.Query("sheet_type"); sheetType != "" {
		st := models.SheetType(sheetType)
		filter.SheetType = &st
	}
	if status := c.Query("status"); status != "" {
		s := models.SheetStatus(status)
		filter.Status = &s
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	sheets, total, err := h.service.ListSheets(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, sheets, &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	})
}

// SaveItem godoc
// @Summary Grade sheet item
// @Description Grade one student row and propagate the result
// @Tags GradeSheets
// @Accept json
// @Produce json
// @Param id path string true "Sheet ID"
// @Param itemId path string true "Item ID"
// @Param payload body service.SaveItemRequest true "Item payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /grade-sheets/{id}/items/{itemId} [put]
func (h *GradeSheetHandler) SaveItem(c *gin.Context) {
	var req service.SaveItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid item payload"))
		return
	}
	req.ItemID = c.Param("itemId")
	if req.GradedBy == "" {
		if actor := actorFromContext(c); actor != nil {
			req.GradedBy = *actor
		}
	}

	item, err := h.service.SaveItem(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, item, nil)
}

// MarkItem godoc
// @Summary Mark sheet item
// @Description Record a non-graded outcome for an item
// @Tags GradeSheets
// @Accept json
// @Produce json
// @Param id path string true "Sheet ID"
// @Param itemId path string true "Item ID"
// @Param payload body service.MarkItemRequest true "Mark payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /grade-sheets/{id}/items/{itemId}/mark [post]
func (h *GradeSheetHandler) MarkItem(c *gin.Context) {
	var req service.MarkItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid item payload"))
		return
	}
	req.ItemID = c.Param("itemId")
	if req.MarkedBy == "" {
		if actor := actorFromContext(c); actor != nil {
			req.MarkedBy = *actor
		}
	}

	item, err := h.service.MarkItem(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, item, nil)
}

// Transition godoc
// @Summary Transition grade sheet
// @Description Move a sheet along its lifecycle
// @Tags GradeSheets
// @Accept json
// @Produce json
// @Param id path string true "Sheet ID"
// @Param payload body map[string]string true "Target status"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /grade-sheets/{id}/status [post]
func (h *GradeSheetHandler) Transition(c *gin.Context) {
	var payload struct {
		Status models.SheetStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "target status required"))
		return
	}

	sheet, err := h.service.Transition(c.Request.Context(), c.Param("id"), payload.Status, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, sheet, nil)
}
