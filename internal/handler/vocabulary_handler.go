package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/uniplex/academic-api/internal/service"
	appErrors "github.com/uniplex/academic-api/pkg/errors"
	"github.com/uniplex/academic-api/pkg/response"
)

// VocabularyHandler wires HTTP endpoints to the grading vocabulary.
type VocabularyHandler struct {
	service *service.VocabularyService
}

// NewVocabularyHandler creates a new handler.
func NewVocabularyHandler(svc *service.VocabularyService) *VocabularyHandler {
	return &VocabularyHandler{service: svc}
}

// ListSystems godoc
// @Summary List grade systems
// @Tags Vocabulary
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /grade-systems [get]
func (h *VocabularyHandler) ListSystems(c *gin.Context) {
	systems, err := h.service.ListSystems(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, systems, nil)
}

// CreateSystem godoc
// @Summary Create grade system
// @Tags Vocabulary
// @Accept json
// @Produce json
// @Param payload body service.CreateSystemRequest true "System payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /grade-systems [post]
func (h *VocabularyHandler) CreateSystem(c *gin.Context) {
	var req service.CreateSystemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid grade system payload"))
		return
	}

	system, err := h.service.CreateSystem(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, system)
}

// ListValues godoc
// @Summary List grade values
// @Tags Vocabulary
// @Produce json
// @Param id path string true "Grade system ID"
// @Success 200 {object} response.Envelope
// @Router /grade-systems/{id}/values [get]
func (h *VocabularyHandler) ListValues(c *gin.Context) {
	values, err := h.service.ListValues(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, values, nil)
}

// CreateValue godoc
// @Summary Create grade value
// @Tags Vocabulary
// @Accept json
// @Produce json
// @Param payload body service.CreateValueRequest true "Value payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /grade-values [post]
func (h *VocabularyHandler) CreateValue(c *gin.Context) {
	var req service.CreateValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid grade value payload"))
		return
	}

	value, err := h.service.CreateValue(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, value)
}

// ValueForPercent godoc
// @Summary Resolve value by percentage
// @Description Maps a percentage onto a value of the system
// @Tags Vocabulary
// @Produce json
// @Param id path string true "Grade system ID"
// @Param percent query number true "Percentage"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /grade-systems/{id}/resolve [get]
func (h *VocabularyHandler) ValueForPercent(c *gin.Context) {
	percent, err := strconv.ParseFloat(c.Query("percent"), 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid percent"))
		return
	}

	value, err := h.service.ValueForPercent(c.Request.Context(), c.Param("id"), percent)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, value, nil)
}

// ListTypes godoc
// @Summary List grade types
// @Tags Vocabulary
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /grade-types [get]
func (h *VocabularyHandler) ListTypes(c *gin.Context) {
	types, err := h.service.ListTypes(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, types, nil)
}

// CreateType godoc
// @Summary Create grade type
// @Tags Vocabulary
// @Accept json
// @Produce json
// @Param payload body service.CreateTypeRequest true "Type payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /grade-types [post]
func (h *VocabularyHandler) CreateType(c *gin.Context) {
	var req service.CreateTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid grade type payload"))
		return
	}

	gt, err := h.service.CreateType(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, gt)
}

// Convert godoc
// @Summary Convert grade value
// @Description Maps a value into another grade system
// @Tags Vocabulary
// @Produce json
// @Param id path string true "Grade value ID"
// @Param target_system_id query string true "Target system ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /grade-values/{id}/convert [get]
func (h *VocabularyHandler) Convert(c *gin.Context) {
	targetSystemID := c.Query("target_system_id")
	if targetSystemID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "target_system_id is required"))
		return
	}

	value, err := h.service.Convert(c.Request.Context(), c.Param("id"), targetSystemID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, value, nil)
}
