package cvs

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"jobassist-backend/internal/profiles"
	"jobassist-backend/internal/shared/server/middleware"
	"jobassist-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the CV service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches CV routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/cv/upload", h.uploadCV)
	rg.GET("/cv/profile/:profileId", h.cvForProfile)
	rg.GET("/cv/:id", h.getCV)
	rg.GET("/cv/:id/download", h.downloadCV)
	rg.PUT("/cv/:id", h.replaceCV)
	rg.DELETE("/cv/:id", h.deleteCV)
}

type cvResponse struct {
	ID          string `json:"id"`
	FileName    string `json:"fileName"`
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
	SizeBytes   int64  `json:"sizeBytes"`
	UploadedAt  string `json:"uploadedAt"`
	TextPreview string `json:"textPreview,omitempty"`
}

func toCVResponse(cv CV, preview string) cvResponse {
	return cvResponse{
		ID:          cv.ID,
		FileName:    cv.FileName,
		URL:         cv.URL,
		ContentType: cv.ContentType,
		SizeBytes:   cv.SizeBytes,
		UploadedAt:  cv.UploadedAt.Format("2006-01-02T15:04:05Z07:00"),
		TextPreview: preview,
	}
}

func (h *Handler) uploadCV(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	profileID := c.PostForm("profileId")
	if profileID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "profileId is required", nil)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "failed to read file", nil)
		return
	}
	defer file.Close()

	result, err := h.Svc.Upload(c.Request.Context(),
		userID,
		profileID,
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		h.respondCVError(c, err, "failed to upload cv")
		return
	}
	respond.Created(c, toCVResponse(result.CV, result.TextPreview))
}

func (h *Handler) getCV(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	cv, err := h.Svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.respondCVError(c, err, "failed to load cv")
		return
	}
	respond.JSON(c, http.StatusOK, toCVResponse(cv, ""))
}

func (h *Handler) cvForProfile(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	cv, err := h.Svc.ForProfile(c.Request.Context(), userID, c.Param("profileId"))
	if err != nil {
		h.respondCVError(c, err, "failed to load cv")
		return
	}
	respond.JSON(c, http.StatusOK, toCVResponse(cv, ""))
}

func (h *Handler) downloadCV(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	cv, body, err := h.Svc.Download(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.respondCVError(c, err, "failed to download cv")
		return
	}
	defer body.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", cv.FileName))
	c.DataFromReader(http.StatusOK, cv.SizeBytes, cv.ContentType, body, nil)
}

func (h *Handler) replaceCV(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "failed to read file", nil)
		return
	}
	defer file.Close()

	result, err := h.Svc.Replace(c.Request.Context(),
		userID,
		c.Param("id"),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		h.respondCVError(c, err, "failed to replace cv")
		return
	}
	respond.JSON(c, http.StatusOK, toCVResponse(result.CV, result.TextPreview))
}

func (h *Handler) deleteCV(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	if err := h.Svc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.respondCVError(c, err, "failed to delete cv")
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) respondCVError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrInvalidFile):
		respond.Error(c, http.StatusBadRequest, "invalid_file", err.Error(), nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "cv not found", nil)
	case errors.Is(err, profiles.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "profile not found", nil)
	case errors.Is(err, ErrUnauthorized):
		respond.Error(c, http.StatusForbidden, "forbidden", "cv not owned by user", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}
