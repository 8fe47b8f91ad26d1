package applications_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"

	"jobassist-backend/internal/applications"
	"jobassist-backend/internal/bootstrap"
	"jobassist-backend/internal/mail"
	"jobassist-backend/internal/shared/auth"
	"jobassist-backend/internal/shared/config"
	"jobassist-backend/internal/users"
)

type stubGateway struct {
	canSend bool
	sendErr error
	sent    int
}

func (g *stubGateway) CanSend(users.User) bool { return g.canSend }

func (g *stubGateway) Send(context.Context, users.User, mail.Message) error {
	if g.sendErr != nil {
		return g.sendErr
	}
	g.sent++
	return nil
}

type fixture struct {
	app     *bootstrap.App
	router  *gin.Engine
	gateway *stubGateway
	bearer  string
}

// newFixture boots the app with memory repos, swaps the mail gateway for a
// stub, and seeds a google user with a profile and an attached CV.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	app, err := bootstrap.Build(config.Config{
		Port:            "0",
		Env:             "dev",
		CORSAllowOrigin: []string{"http://localhost:5173"},
		ObjectStoreType: "local",
		LocalStoreDir:   t.TempDir(),
	})
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}

	gateway := &stubGateway{canSend: true}
	app.ApplicationsService.Gateway = gateway

	if err := app.UsersRepo.Upsert(context.Background(), users.User{
		ID:           "u1",
		Email:        "u1@example.com",
		FullName:     "Test User",
		AuthMethod:   users.AuthGoogle,
		AccessToken:  "access",
		RefreshToken: "refresh",
	}); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	token, err := auth.SignJWT("u1", "u1@example.com", "Test User")
	if err != nil {
		t.Fatalf("sign jwt: %v", err)
	}

	return &fixture{app: app, router: app.Router, gateway: gateway, bearer: "Bearer " + token}
}

func (f *fixture) profileWithCV(t *testing.T) string {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/profiles", bytes.NewBufferString(`{"title":"Backend Engineer"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", f.bearer)
	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("create profile: expected 201, got %d", resp.Code)
	}
	var profile struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		t.Fatalf("decode profile: %v", err)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writer.WriteField("profileId", profile.ID); err != nil {
		t.Fatalf("write profileId: %v", err)
	}
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="cv.pdf"`)
	header.Set("Content-Type", "application/pdf")
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("create file part: %v", err)
	}
	if _, err := part.Write([]byte("%PDF-1.4 cv")); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	reqUp := httptest.NewRequest(http.MethodPost, "/api/v1/cv/upload", body)
	reqUp.Header.Set("Content-Type", writer.FormDataContentType())
	reqUp.Header.Set("Authorization", f.bearer)
	respUp := httptest.NewRecorder()
	f.router.ServeHTTP(respUp, reqUp)
	if respUp.Code != http.StatusCreated {
		t.Fatalf("upload cv: expected 201, got %d: %s", respUp.Code, respUp.Body.String())
	}

	return profile.ID
}

func (f *fixture) send(t *testing.T, payload map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/job-applications/send", bytes.NewBuffer(raw))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", f.bearer)
	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, req)
	return resp
}

func TestSendEndpointHappyPath(t *testing.T) {
	f := newFixture(t)
	profileID := f.profileWithCV(t)

	resp := f.send(t, map[string]any{
		"profileId": profileID,
		"jobEmail":  "hr@acme.test",
		"jobTitle":  "Backend Engineer",
		"company":   "Acme",
		"subject":   "Application",
		"bodyText":  `Dear team,\nSee attached CV.`,
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var app struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&app); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if app.Status != "SENT" {
		t.Fatalf("expected SENT, got %s", app.Status)
	}
	if f.gateway.sent != 1 {
		t.Fatalf("expected one gateway send, got %d", f.gateway.sent)
	}

	// the application shows up in the caller's list
	reqList := httptest.NewRequest(http.MethodGet, "/api/v1/job-applications/me", nil)
	reqList.Header.Set("Authorization", f.bearer)
	respList := httptest.NewRecorder()
	f.router.ServeHTTP(respList, reqList)
	if respList.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", respList.Code)
	}
	var list []map[string]any
	if err := json.NewDecoder(respList.Body).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected one application, got %d", len(list))
	}
}

func TestSendEndpointWithoutCV(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/profiles", bytes.NewBufferString(`{"title":"No CV"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", f.bearer)
	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, req)
	var profile struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		t.Fatalf("decode profile: %v", err)
	}

	respSend := f.send(t, map[string]any{"profileId": profile.ID, "jobEmail": "hr@acme.test"})
	if respSend.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without cv, got %d", respSend.Code)
	}
	if f.gateway.sent != 0 {
		t.Fatal("gateway must not be called when the profile has no cv")
	}
}

func TestSendEndpointDeliveryFailure(t *testing.T) {
	f := newFixture(t)
	profileID := f.profileWithCV(t)
	f.gateway.sendErr = errors.New("smtp on fire")

	resp := f.send(t, map[string]any{"profileId": profileID, "jobEmail": "hr@acme.test"})
	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 on delivery failure, got %d", resp.Code)
	}

	// the failed attempt is recorded
	list, err := f.app.ApplicationsRepo.ListByUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("list applications: %v", err)
	}
	if len(list) != 1 || list[0].Status != applications.StatusFailedToSend {
		t.Fatalf("expected one FAILED_TO_SEND row, got %+v", list)
	}
}

func TestStatusUpdateEndpoint(t *testing.T) {
	f := newFixture(t)
	profileID := f.profileWithCV(t)

	resp := f.send(t, map[string]any{"profileId": profileID, "jobEmail": "hr@acme.test"})
	if resp.Code != http.StatusOK {
		t.Fatalf("send: expected 200, got %d", resp.Code)
	}
	var app struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&app); err != nil {
		t.Fatalf("decode send response: %v", err)
	}

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/job-applications/"+app.ID+"/status", bytes.NewBufferString(`{"status":"INTERVIEW"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", f.bearer)
	respPatch := httptest.NewRecorder()
	f.router.ServeHTTP(respPatch, req)
	if respPatch.Code != http.StatusOK {
		t.Fatalf("patch: expected 200, got %d: %s", respPatch.Code, respPatch.Body.String())
	}
	var updated struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(respPatch.Body).Decode(&updated); err != nil {
		t.Fatalf("decode patch response: %v", err)
	}
	if updated.Status != "INTERVIEW" {
		t.Fatalf("expected INTERVIEW, got %s", updated.Status)
	}
}
