package profiles

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"jobassist-backend/internal/shared/server/middleware"
	"jobassist-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the profiles service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches profile routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/profiles", h.createProfile)
	rg.GET("/profiles", h.listProfiles)
	rg.GET("/profiles/:id", h.getProfile)
	rg.PUT("/profiles/:id", h.updateProfile)
	rg.DELETE("/profiles/:id", h.deleteProfile)
}

type profileRequest struct {
	Title   string   `json:"title"`
	Summary string   `json:"summary"`
	Skills  []string `json:"skills"`
}

type profileResponse struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Summary string   `json:"summary"`
	Skills  []string `json:"skills"`
	CVID    *string  `json:"cvId,omitempty"`
}

func toProfileResponse(p Profile) profileResponse {
	skills := p.Skills
	if skills == nil {
		skills = []string{}
	}
	return profileResponse{
		ID:      p.ID,
		Title:   p.Title,
		Summary: p.Summary,
		Skills:  skills,
		CVID:    p.CVID,
	}
}

func (h *Handler) createProfile(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	profile, err := h.Svc.Create(c.Request.Context(), userID, req.Title, req.Summary, req.Skills)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "title is required", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create profile", nil)
		}
		return
	}

	respond.Created(c, toProfileResponse(profile))
}

func (h *Handler) listProfiles(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	list, err := h.Svc.ListMine(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list profiles", nil)
		return
	}

	out := make([]profileResponse, 0, len(list))
	for _, p := range list {
		out = append(out, toProfileResponse(p))
	}
	respond.JSON(c, http.StatusOK, out)
}

func (h *Handler) getProfile(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	profileID := c.Param("id")

	profile, err := h.Svc.GetOwned(c.Request.Context(), userID, profileID)
	if err != nil {
		h.respondProfileError(c, err, "failed to load profile")
		return
	}
	respond.JSON(c, http.StatusOK, toProfileResponse(profile))
}

func (h *Handler) updateProfile(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	profileID := c.Param("id")

	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	profile, err := h.Svc.Update(c.Request.Context(), userID, profileID, req.Title, req.Summary, req.Skills)
	if err != nil {
		h.respondProfileError(c, err, "failed to update profile")
		return
	}
	respond.JSON(c, http.StatusOK, toProfileResponse(profile))
}

func (h *Handler) deleteProfile(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	profileID := c.Param("id")

	if err := h.Svc.Delete(c.Request.Context(), userID, profileID); err != nil {
		h.respondProfileError(c, err, "failed to delete profile")
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) respondProfileError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "profile not found", nil)
	case errors.Is(err, ErrUnauthorized):
		respond.Error(c, http.StatusForbidden, "forbidden", "profile not owned by user", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid profile input", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}
