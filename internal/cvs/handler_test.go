package cvs_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"

	"jobassist-backend/internal/bootstrap"
	"jobassist-backend/internal/shared/auth"
	"jobassist-backend/internal/shared/config"
)

func buildTestApp(t *testing.T) *bootstrap.App {
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
	return app
}

func bearerFor(t *testing.T, userID string) string {
	t.Helper()
	token, err := auth.SignJWT(userID, userID+"@example.com", "Test User")
	if err != nil {
		t.Fatalf("sign jwt: %v", err)
	}
	return "Bearer " + token
}

func createProfile(t *testing.T, router *gin.Engine, bearer string) string {
	t.Helper()
	body := bytes.NewBufferString(`{"title":"Backend Engineer"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/profiles", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("create profile: expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	return created.ID
}

func multipartUpload(t *testing.T, fields map[string]string, fileName, contentType string, fileBytes []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("create file part: %v", err)
	}
	if _, err := part.Write(fileBytes); err != nil {
		t.Fatalf("write file part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func TestCVUploadDownloadDeleteFlow(t *testing.T) {
	app := buildTestApp(t)
	router := app.Router
	bearer := bearerFor(t, "u1")
	profileID := createProfile(t, router, bearer)

	body, contentType := multipartUpload(t, map[string]string{"profileId": profileID}, "resume.pdf", "application/pdf", []byte("%PDF-1.4 test"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cv/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", bearer)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("upload: expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var uploaded struct {
		ID       string `json:"id"`
		FileName string `json:"fileName"`
		URL      string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}
	if uploaded.ID == "" || uploaded.URL == "" {
		t.Fatalf("expected id and url, got %+v", uploaded)
	}

	// the profile now points at the uploaded CV
	reqGet := httptest.NewRequest(http.MethodGet, "/api/v1/cv/profile/"+profileID, nil)
	reqGet.Header.Set("Authorization", bearer)
	respGet := httptest.NewRecorder()
	router.ServeHTTP(respGet, reqGet)
	if respGet.Code != http.StatusOK {
		t.Fatalf("cv for profile: expected 200, got %d", respGet.Code)
	}

	reqDl := httptest.NewRequest(http.MethodGet, "/api/v1/cv/"+uploaded.ID+"/download", nil)
	reqDl.Header.Set("Authorization", bearer)
	respDl := httptest.NewRecorder()
	router.ServeHTTP(respDl, reqDl)
	if respDl.Code != http.StatusOK {
		t.Fatalf("download: expected 200, got %d", respDl.Code)
	}
	data, err := io.ReadAll(respDl.Body)
	if err != nil {
		t.Fatalf("read download body: %v", err)
	}
	if string(data) != "%PDF-1.4 test" {
		t.Fatalf("download bytes mismatch: %q", data)
	}

	reqDel := httptest.NewRequest(http.MethodDelete, "/api/v1/cv/"+uploaded.ID, nil)
	reqDel.Header.Set("Authorization", bearer)
	respDel := httptest.NewRecorder()
	router.ServeHTTP(respDel, reqDel)
	if respDel.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d: %s", respDel.Code, respDel.Body.String())
	}

	// the profile reference is detached by the delete
	reqGet2 := httptest.NewRequest(http.MethodGet, "/api/v1/cv/profile/"+profileID, nil)
	reqGet2.Header.Set("Authorization", bearer)
	respGet2 := httptest.NewRecorder()
	router.ServeHTTP(respGet2, reqGet2)
	if respGet2.Code != http.StatusNotFound {
		t.Fatalf("cv for profile after delete: expected 404, got %d", respGet2.Code)
	}
}

func TestCVUploadRejectsBadContentType(t *testing.T) {
	app := buildTestApp(t)
	router := app.Router
	bearer := bearerFor(t, "u1")
	profileID := createProfile(t, router, bearer)

	body, contentType := multipartUpload(t, map[string]string{"profileId": profileID}, "resume.txt", "text/plain", []byte("plain text"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cv/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", bearer)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for text/plain upload, got %d", resp.Code)
	}
}

func TestCVUploadRequiresProfileID(t *testing.T) {
	app := buildTestApp(t)
	router := app.Router
	bearer := bearerFor(t, "u1")

	body, contentType := multipartUpload(t, nil, "resume.pdf", "application/pdf", []byte("%PDF"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cv/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", bearer)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without profileId, got %d", resp.Code)
	}
}
