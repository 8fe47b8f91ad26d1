package applications

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"jobassist-backend/internal/cvs"
	"jobassist-backend/internal/mail"
	"jobassist-backend/internal/profiles"
	"jobassist-backend/internal/shared/server/middleware"
	"jobassist-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the applications service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches job-application routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/job-applications/send", h.send)
	rg.GET("/job-applications/me", h.listMine)
	rg.PATCH("/job-applications/:id/status", h.updateStatus)
}

type sendRequest struct {
	ProfileID string `json:"profileId"`
	JobEmail  string `json:"jobEmail"`
	JobTitle  string `json:"jobTitle"`
	Company   string `json:"company"`
	Subject   string `json:"subject"`
	BodyText  string `json:"bodyText"`
}

func (h *Handler) send(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if req.ProfileID == "" || req.JobEmail == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "profileId and jobEmail are required", nil)
		return
	}

	app, err := h.Svc.Send(c.Request.Context(), userID, SendRequest{
		ProfileID: req.ProfileID,
		JobEmail:  req.JobEmail,
		JobTitle:  req.JobTitle,
		Company:   req.Company,
		Subject:   req.Subject,
		BodyText:  req.BodyText,
	})
	if err != nil {
		h.respondSendError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, app)
}

func (h *Handler) listMine(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	list, err := h.Svc.ListMine(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list applications", nil)
		return
	}
	if list == nil {
		list = []Application{}
	}
	respond.JSON(c, http.StatusOK, list)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) updateStatus(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	status, err := ParseStatus(req.Status)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unknown status value", nil)
		return
	}

	app, err := h.Svc.UpdateStatus(c.Request.Context(), userID, c.Param("id"), status)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "application not found", nil)
		case errors.Is(err, ErrUnauthorized):
			respond.Error(c, http.StatusForbidden, "forbidden", "application not owned by user", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update status", nil)
		}
		return
	}
	respond.JSON(c, http.StatusOK, app)
}

func (h *Handler) respondSendError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, profiles.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "profile not found", nil)
	case errors.Is(err, ErrUnauthorized):
		respond.Error(c, http.StatusForbidden, "forbidden", "profile not owned by user", nil)
	case errors.Is(err, ErrCVNotFound), errors.Is(err, cvs.ErrNotFound):
		respond.Error(c, http.StatusBadRequest, "cv_not_found", "profile has no cv attached", nil)
	case errors.Is(err, ErrProviderRequired):
		respond.Error(c, http.StatusBadRequest, "provider_required", "connect an email provider before sending", nil)
	case errors.Is(err, mail.ErrTokenRefreshed):
		respond.Error(c, http.StatusBadGateway, "token_refreshed_retry", "email access was refreshed, retry the send", nil)
	case errors.Is(err, ErrCannotSendMail):
		respond.Error(c, http.StatusBadGateway, "cannot_send_mail", "failed to deliver the application email", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to send application", nil)
	}
}
