package helpers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

// JSONRequest builds a JSON request, attaching the session cookie when given
func JSONRequest(t *testing.T, method, target string, body interface{}, cookie *http.Cookie) *http.Request {
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

// Login authenticates an existing account and returns the session cookie
func Login(t *testing.T, app *fiber.App, username, password string) *http.Cookie {
	t.Helper()

	resp, err := app.Test(JSONRequest(t, "POST", "/login", map[string]string{
		"username": username,
		"password": password,
	}, nil))
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

// RegisterAccount creates a staff account through the HTTP surface
func RegisterAccount(t *testing.T, app *fiber.App, username, email, password string) {
	t.Helper()

	resp, err := app.Test(JSONRequest(t, "POST", "/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}, nil))
	if err != nil {
		t.Fatalf("Failed to execute register request: %v", err)
	}
	if resp.StatusCode != 201 {
		t.Fatalf("Expected status 201 from register, got %d", resp.StatusCode)
	}
}
