package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/epms/epms/internal/config"
	"github.com/epms/epms/internal/handlers"
	"github.com/epms/epms/internal/middleware"
	"github.com/epms/epms/internal/models"
	"github.com/epms/epms/internal/storage"
	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// setupApp wires a full application against an in-memory SQLite database
// and a throwaway upload directory
func setupApp(t *testing.T) (*fiber.App, *gorm.DB, *storage.FileStore) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Patient{}, &models.Report{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	files, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create file store: %v", err)
	}

	cfg := &config.Config{
		BaseURL:   "http://clinic.test",
		UploadDir: files.BasePath(),
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
	})
	handlers.Register(app, handlers.Deps{
		DB:       db,
		Files:    files,
		Sessions: middleware.NewSessionStore(),
		Cfg:      cfg,
	})

	return app, db, files
}

// jsonRequest builds a JSON request, attaching the session cookie when given
func jsonRequest(t *testing.T, method, target string, body interface{}, cookie *http.Cookie) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return req
}

// login registers an account, authenticates, and returns the session cookie
func login(t *testing.T, app *fiber.App) *http.Cookie {
	t.Helper()

	creds := map[string]string{
		"username": "nurse1",
		"email":    "nurse1@clinic.test",
		"password": "s3cret!pass",
	}

	resp, err := app.Test(jsonRequest(t, "POST", "/register", creds, nil))
	if err != nil {
		t.Fatalf("Failed to execute register request: %v", err)
	}
	if resp.StatusCode != 201 {
		t.Fatalf("Expected status 201 from register, got %d", resp.StatusCode)
	}

	resp, err = app.Test(jsonRequest(t, "POST", "/login", creds, nil))
	if err != nil {
		t.Fatalf("Failed to execute login request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("Expected status 200 from login, got %d", resp.StatusCode)
	}

	for _, c := range resp.Cookies() {
		if c.Name == "epms_session" {
			return c
		}
	}
	t.Fatal("Expected a session cookie after login")
	return nil
}

// TestAuthGateRedirects tests that anonymous callers never reach protected routes
func TestAuthGateRedirects(t *testing.T) {
	app, _, _ := setupApp(t)

	protected := []struct {
		method string
		target string
	}{
		{"GET", "/"},
		{"GET", "/patients"},
		{"POST", "/add_patient"},
		{"GET", "/patient/1"},
		{"POST", "/delete_patient/1"},
		{"POST", "/upload_report/1"},
		{"GET", "/uploads/somefile.pdf"},
		{"GET", "/export/patients.xlsx"},
	}

	for _, p := range protected {
		req := httptest.NewRequest(p.method, p.target, nil)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("Failed to execute request: %v", err)
		}
		if resp.StatusCode != 302 {
			t.Errorf("%s %s: expected status 302, got %d", p.method, p.target, resp.StatusCode)
		}
		if loc := resp.Header.Get("Location"); loc != "/login" {
			t.Errorf("%s %s: expected redirect to /login, got %q", p.method, p.target, loc)
		}
	}
}

// TestRegisterLoginLogout tests the full session lifecycle
func TestRegisterLoginLogout(t *testing.T) {
	app, _, _ := setupApp(t)

	cookie := login(t, app)

	// The session cookie unlocks protected routes
	req := httptest.NewRequest("GET", "/patients", nil)
	req.AddCookie(cookie)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("Expected status 200 with session, got %d", resp.StatusCode)
	}

	// Logout destroys the session
	req = httptest.NewRequest("GET", "/logout", nil)
	req.AddCookie(cookie)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 302 {
		t.Errorf("Expected status 302 from logout, got %d", resp.StatusCode)
	}

	// The old cookie no longer works
	req = httptest.NewRequest("GET", "/patients", nil)
	req.AddCookie(cookie)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 302 {
		t.Errorf("Expected status 302 after logout, got %d", resp.StatusCode)
	}
}

// TestRegisterDuplicateUsername tests the conflict response
func TestRegisterDuplicateUsername(t *testing.T) {
	app, _, _ := setupApp(t)

	creds := map[string]string{
		"username": "nurse1",
		"email":    "nurse1@clinic.test",
		"password": "pass",
	}

	resp, err := app.Test(jsonRequest(t, "POST", "/register", creds, nil))
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 201 {
		t.Fatalf("Expected status 201, got %d", resp.StatusCode)
	}

	creds["email"] = "other@clinic.test"
	resp, err = app.Test(jsonRequest(t, "POST", "/register", creds, nil))
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 409 {
		t.Errorf("Expected status 409, got %d", resp.StatusCode)
	}
}

// TestErrorEnvelope tests that handler errors reach the global error handler
// and render the JSON envelope with status, type, and url
func TestErrorEnvelope(t *testing.T) {
	app, _, _ := setupApp(t)
	cookie := login(t, app)

	// Not found
	req := httptest.NewRequest("GET", "/patient/999", nil)
	req.AddCookie(cookie)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 404 {
		t.Fatalf("Expected status 404, got %d", resp.StatusCode)
	}

	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body["status"] != float64(404) || body["ok"] != false {
		t.Errorf("Unexpected envelope: %v", body)
	}
	if body["type"] != "not_found" {
		t.Errorf("Expected type not_found, got %v", body["type"])
	}
	if body["url"] != "/patient/999" {
		t.Errorf("Expected request url in envelope, got %v", body["url"])
	}

	// Validation
	resp, err = app.Test(jsonRequest(t, "POST", "/add_patient", map[string]interface{}{
		"name": "Eve",
		"age":  "not-a-number",
	}, cookie))
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 400 {
		t.Fatalf("Expected status 400, got %d", resp.StatusCode)
	}
	body = nil
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body["type"] != "validation" {
		t.Errorf("Expected type validation, got %v", body["type"])
	}

	// Invalid credentials carry the auth type and a uniform message
	resp, err = app.Test(jsonRequest(t, "POST", "/login", map[string]string{
		"username": "nurse1",
		"password": "wrong",
	}, nil))
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 401 {
		t.Fatalf("Expected status 401, got %d", resp.StatusCode)
	}
	body = nil
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body["type"] != "auth" || body["message"] != "Invalid credentials" {
		t.Errorf("Unexpected auth error envelope: %v", body)
	}
}

// TestLoginBadCredentials tests that bad passwords and unknown users both get 401
func TestLoginBadCredentials(t *testing.T) {
	app, _, _ := setupApp(t)

	resp, err := app.Test(jsonRequest(t, "POST", "/register", map[string]string{
		"username": "nurse1",
		"email":    "nurse1@clinic.test",
		"password": "correct",
	}, nil))
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 201 {
		t.Fatalf("Expected status 201, got %d", resp.StatusCode)
	}

	attempts := []map[string]string{
		{"username": "nurse1", "password": "wrong"},
		{"username": "ghost", "password": "whatever"},
	}
	for _, body := range attempts {
		resp, err := app.Test(jsonRequest(t, "POST", "/login", body, nil))
		if err != nil {
			t.Fatalf("Failed to execute request: %v", err)
		}
		if resp.StatusCode != 401 {
			t.Errorf("Expected status 401 for %v, got %d", body["username"], resp.StatusCode)
		}
	}
}
