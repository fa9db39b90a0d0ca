package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/uniplex/academic-api/internal/service"
	appErrors "github.com/uniplex/academic-api/pkg/errors"
	"github.com/uniplex/academic-api/pkg/response"
)

// ProfileHandler serves role-specific profiles.
type ProfileHandler struct {
	service *service.ProfileService
}

// NewProfileHandler creates a new handler.
func NewProfileHandler(svc *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{service: svc}
}

// MyProfile godoc
// @Summary Get own profile
// @Description Returns the role-specific profile of the authenticated user
// @Tags Profiles
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /profiles/me [get]
func (h *ProfileHandler) MyProfile(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	profile, err := h.service.ForUser(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"role": profile.ProfileRole(), "profile": profile}, nil)
}

// UserProfile godoc
// @Summary Get user profile
// @Description Returns the role-specific profile of a user
// @Tags Profiles
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /profiles/{id} [get]
func (h *ProfileHandler) UserProfile(c *gin.Context) {
	profile, err := h.service.ForUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"role": profile.ProfileRole(), "profile": profile}, nil)
}

// GroupRoster godoc
// @Summary List group students
// @Description Returns the active students of a group
// @Tags Profiles
// @Produce json
// @Param id path string true "Group ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /groups/{id}/students [get]
func (h *ProfileHandler) GroupRoster(c *gin.Context) {
	roster, err := h.service.GroupRoster(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, roster, nil)
}
