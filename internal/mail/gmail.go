package mail

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"jobassist-backend/internal/shared/telemetry"
	"jobassist-backend/internal/users"
)

// GmailProvider sends through the Gmail API as the user, using their stored
// OAuth access token. Expired or revoked tokens trigger one reactive refresh;
// the message is not resent automatically, the caller is asked to retry.
type GmailProvider struct {
	Credentials *CredentialManager

	// sendRaw is swappable in tests; the default talks to the Gmail API.
	sendRaw func(ctx context.Context, accessToken, raw string) error
}

func NewGmailProvider(credentials *CredentialManager) *GmailProvider {
	p := &GmailProvider{Credentials: credentials}
	p.sendRaw = p.sendViaAPI
	return p
}

func (p *GmailProvider) SupportsAuthMethod(method users.AuthMethod) bool {
	return method == users.AuthGoogle
}

func (p *GmailProvider) CanSend(user users.User) bool {
	return user.AuthMethod == users.AuthGoogle && user.AccessToken != "" && user.RefreshToken != ""
}

func (p *GmailProvider) Send(ctx context.Context, user users.User, msg Message) error {
	payload, err := BuildMIME(msg)
	if err != nil {
		return fmt.Errorf("%w: build mime: %v", ErrDeliveryFailed, err)
	}
	raw := EncodeRaw(payload)

	user = p.Credentials.Credential(ctx, user)

	err = p.sendRaw(ctx, user.AccessToken, raw)
	if err == nil {
		return nil
	}
	if !isAuthError(err) {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	telemetry.Info("mail.gmail.token_rejected", map[string]any{
		"user_id": user.ID,
	})
	if _, refreshErr := p.Credentials.Refresh(ctx, user); refreshErr != nil {
		return refreshErr
	}
	return fmt.Errorf("%w: %v", ErrTokenRefreshed, err)
}

func (p *GmailProvider) sendViaAPI(ctx context.Context, accessToken, raw string) error {
	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	svc, err := gmail.NewService(ctx, option.WithTokenSource(source))
	if err != nil {
		return err
	}
	_, err = svc.Users.Messages.Send("me", &gmail.Message{Raw: raw}).Context(ctx).Do()
	return err
}

// isAuthError matches responses that mean the access token is expired or
// revoked rather than a transport or quota problem.
func isAuthError(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusUnauthorized
	}
	var tokenErr *oauth2.RetrieveError
	return errors.As(err, &tokenErr)
}
