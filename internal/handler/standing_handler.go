package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/uniplex/academic-api/internal/models"
	"github.com/uniplex/academic-api/internal/service"
	appErrors "github.com/uniplex/academic-api/pkg/errors"
	"github.com/uniplex/academic-api/pkg/response"
)

// StandingHandler wires HTTP endpoints to standings, debts and retakes.
type StandingHandler struct {
	service *service.StandingService
}

// NewStandingHandler creates a new handler.
func NewStandingHandler(svc *service.StandingService) *StandingHandler {
	return &StandingHandler{service: svc}
}

// Current godoc
// @Summary Get current standing
// @Description Returns the student's open standing interval
// @Tags Standing
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/standing [get]
func (h *StandingHandler) Current(c *gin.Context) {
	standing, err := h.service.Current(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, standing, nil)
}

// History godoc
// @Summary List standing history
// @Description Returns all standing intervals of a student
// @Tags Standing
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/standing/history [get]
func (h *StandingHandler) History(c *gin.Context) {
	standings, err := h.service.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, standings, nil)
}

// SetStanding godoc
// @Summary Set standing manually
// @Description Open a manual standing interval, closing the previous one
// @Tags Standing
// @Accept json
// @Produce json
// @Param payload body service.SetStandingRequest true "Standing payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /standings [post]
func (h *StandingHandler) SetStanding(c *gin.Context) {
	var req service.SetStandingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid standing payload"))
		return
	}
	if req.ChangedBy == nil {
		req.ChangedBy = actorFromContext(c)
	}

	standing, err := h.service.SetStanding(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, standing, nil)
}

// Reevaluate godoc
// @Summary Reevaluate standing
// @Description Re-derive the standing from the outstanding debt count
// @Tags Standing
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/standing/reevaluate [post]
func (h *StandingHandler) Reevaluate(c *gin.Context) {
	standing, err := h.service.Reevaluate(c.Request.Context(), c.Param("id"), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, standing, nil)
}

// CreateDebt godoc
// @Summary Register academic debt
// @Description Register a debt and re-derive the standing
// @Tags Debts
// @Accept json
// @Produce json
// @Param payload body service.CreateDebtRequest true "Debt payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /debts [post]
func (h *StandingHandler) CreateDebt(c *gin.Context) {
	var req service.CreateDebtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid debt payload"))
		return
	}
	if req.CreatedBy == nil {
		req.CreatedBy = actorFromContext(c)
	}

	debt, err := h.service.CreateDebt(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, debt)
}

// ListDebts godoc
// @Summary List debts
// @Description Returns a student's academic debts
// @Tags Debts
// @Produce json
// @Param id path string true "Student ID"
// @Param status query string false "Status filter"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/debts [get]
func (h *StandingHandler) ListDebts(c *gin.Context) {
	var status *models.DebtStatus
	if q := c.Query("status"); q != "" {
		s := models.DebtStatus(q)
		status = &s
	}

	debts, err := h.service.ListDebts(c.Request.Context(), c.Param("id"), status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, debts, nil)
}

// ExtendDebt godoc
// @Summary Extend debt deadline
// @Description Grant a new deadline for an open debt
// @Tags Debts
// @Accept json
// @Produce json
// @Param id path string true "Debt ID"
// @Param payload body map[string]string true "New deadline"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /debts/{id}/extend [post]
func (h *StandingHandler) ExtendDebt(c *gin.Context) {
	var payload struct {
		Deadline time.Time `json:"deadline" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "deadline required"))
		return
	}

	if err := h.service.ExtendDebt(c.Request.Context(), c.Param("id"), payload.Deadline, actorFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// WaiveDebt godoc
// @Summary Waive debt
// @Description Forgive a debt without a passing grade
// @Tags Debts
// @Produce json
// @Param id path string true "Debt ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /debts/{id}/waive [post]
func (h *StandingHandler) WaiveDebt(c *gin.Context) {
	if err := h.service.WaiveDebt(c.Request.Context(), c.Param("id"), actorFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// ExpireDebt godoc
// @Summary Expire debt
// @Description Mark an overdue debt expired
// @Tags Debts
// @Produce json
// @Param id path string true "Debt ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /debts/{id}/expire [post]
func (h *StandingHandler) ExpireDebt(c *gin.Context) {
	if err := h.service.ExpireDebt(c.Request.Context(), c.Param("id"), actorFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// IssueRetake godoc
// @Summary Issue retake permission
// @Description Create a numbered retake permission for a debt
// @Tags Retakes
// @Accept json
// @Produce json
// @Param payload body service.IssueRetakeRequest true "Retake payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /retakes [post]
func (h *StandingHandler) IssueRetake(c *gin.Context) {
	var req service.IssueRetakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid retake payload"))
		return
	}
	if req.CreatedBy == nil {
		req.CreatedBy = actorFromContext(c)
	}

	retake, err := h.service.IssueRetake(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, retake)
}

// ListRetakes godoc
// @Summary List retakes
// @Description Returns a student's retake permissions
// @Tags Retakes
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/retakes [get]
func (h *StandingHandler) ListRetakes(c *gin.Context) {
	retakes, err := h.service.ListRetakes(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, retakes, nil)
}
