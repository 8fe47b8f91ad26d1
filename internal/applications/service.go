package applications

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"jobassist-backend/internal/cvs"
	"jobassist-backend/internal/mail"
	"jobassist-backend/internal/profiles"
	"jobassist-backend/internal/shared/metrics"
	"jobassist-backend/internal/shared/telemetry"
	"jobassist-backend/internal/users"
)

var (
	// ErrUnauthorized is returned when the profile in the request belongs to
	// someone else.
	ErrUnauthorized = errors.New("profile not owned by user")
	// ErrCVNotFound is returned when the profile has no CV attached; the
	// pipeline refuses to send without one.
	ErrCVNotFound = errors.New("profile has no cv attached")
	// ErrProviderRequired is returned when no mail provider can send for the
	// user, typically because they never connected their email account.
	ErrProviderRequired = errors.New("email provider connection required")
	// ErrCannotSendMail wraps delivery failures after the pipeline committed
	// to sending.
	ErrCannotSendMail = errors.New("cannot send mail")
)

// MailGateway is the slice of the delivery gateway the pipeline needs.
type MailGateway interface {
	CanSend(user users.User) bool
	Send(ctx context.Context, user users.User, msg mail.Message) error
}

// SendRequest carries the caller's input to the send pipeline.
type SendRequest struct {
	ProfileID string
	JobEmail  string
	JobTitle  string
	Company   string
	Subject   string
	BodyText  string
}

// Service orchestrates the job-application send pipeline and the later
// status updates.
type Service struct {
	Repo     Repo
	Users    *users.Service
	Profiles profiles.Repo
	CVs      *cvs.Service
	Gateway  MailGateway

	now func() time.Time
}

func NewService(repo Repo, userSvc *users.Service, profileRepo profiles.Repo, cvSvc *cvs.Service, gateway MailGateway) *Service {
	return &Service{
		Repo:     repo,
		Users:    userSvc,
		Profiles: profileRepo,
		CVs:      cvSvc,
		Gateway:  gateway,
		now:      time.Now,
	}
}

// Send runs the whole pipeline in order: ownership and CV checks, capability
// check, CV download, message assembly, delivery, persistence. A delivery
// failure still persists the row with FAILED_TO_SEND so the attempt is
// auditable, then surfaces ErrCannotSendMail.
func (s *Service) Send(ctx context.Context, userID string, req SendRequest) (Application, error) {
	profile, err := s.Profiles.GetByID(ctx, req.ProfileID)
	if err != nil {
		return Application{}, err
	}
	if profile.UserID != userID {
		return Application{}, ErrUnauthorized
	}
	if profile.CVID == nil {
		return Application{}, ErrCVNotFound
	}

	user, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return Application{}, err
	}
	if !s.Gateway.CanSend(user) {
		return Application{}, ErrProviderRequired
	}

	cv, body, err := s.CVs.Download(ctx, userID, *profile.CVID)
	if err != nil {
		return Application{}, fmt.Errorf("download cv: %w", err)
	}
	cvBytes, err := io.ReadAll(body)
	body.Close()
	if err != nil {
		return Application{}, fmt.Errorf("read cv: %w", err)
	}

	msg := mail.Message{
		FromName: user.FullName,
		From:     user.Email,
		To:       req.JobEmail,
		Subject:  req.Subject,
		Body:     NormalizeBody(req.BodyText),
		Attachment: &mail.Attachment{
			FileName:    cv.FileName,
			ContentType: cv.ContentType,
			Data:        cvBytes,
		},
	}

	app := Application{
		ID:        uuid.NewString(),
		UserID:    userID,
		ProfileID: profile.ID,
		CVID:      cv.ID,
		Company:   req.Company,
		JobEmail:  req.JobEmail,
		JobTitle:  req.JobTitle,
		Subject:   req.Subject,
		Status:    StatusSent,
		SentAt:    s.now().UTC(),
	}

	sendStart := time.Now()
	if err := s.Gateway.Send(ctx, user, msg); err != nil {
		metrics.IncMailSendFailed()
		app.Status = StatusFailedToSend
		if saveErr := s.Repo.Create(ctx, app); saveErr != nil {
			telemetry.Error("application.failed_send_not_recorded", map[string]any{
				"application_id": app.ID,
				"err":            saveErr.Error(),
			})
		}
		telemetry.Error("application.send_failed", map[string]any{
			"application_id": app.ID,
			"profile_id":     profile.ID,
			"err":            err.Error(),
		})
		return Application{}, fmt.Errorf("%w: %w", ErrCannotSendMail, err)
	}

	metrics.IncMailSent()
	metrics.ObserveMailSendDurationMs(float64(time.Since(sendStart).Milliseconds()))

	if err := s.Repo.Create(ctx, app); err != nil {
		return Application{}, err
	}
	telemetry.Info("application.sent", map[string]any{
		"application_id": app.ID,
		"profile_id":     profile.ID,
		"company":        app.Company,
	})
	return app, nil
}

// ListMine returns the caller's applications, most recent first.
func (s *Service) ListMine(ctx context.Context, userID string) ([]Application, error) {
	return s.Repo.ListByUser(ctx, userID)
}

// UpdateStatus overwrites an application's status. Any status can move to any
// other status.
func (s *Service) UpdateStatus(ctx context.Context, userID, appID string, status Status) (Application, error) {
	app, err := s.Repo.GetByID(ctx, appID)
	if err != nil {
		return Application{}, err
	}
	if app.UserID != userID {
		return Application{}, ErrUnauthorized
	}
	if err := s.Repo.UpdateStatus(ctx, appID, status); err != nil {
		return Application{}, err
	}
	app.Status = status
	return app, nil
}

// NormalizeBody converts literal backslash escape sequences left over from
// upstream JSON generation into real line breaks.
func NormalizeBody(raw string) string {
	return strings.NewReplacer(`\r\n`, "\r\n", `\n`, "\n", `\r`, "\r").Replace(raw)
}
