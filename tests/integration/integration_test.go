package integration_test

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/epms/epms/internal/database"
	"github.com/epms/epms/internal/services"
	"github.com/epms/epms/tests/helpers"
	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

// TestWithPostgreSQL exercises the whole service against a real PostgreSQL
// container: bootstrap, auth, patient CRUD, attachments, and export
func TestWithPostgreSQL(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	cfg := helpers.StartPostgres(t)

	// Wait for database to be ready
	time.Sleep(2 * time.Second)

	db, err := database.Connect(cfg)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	if err := services.EnsureDefaultAdmin(db, cfg.AdminPassword); err != nil {
		t.Fatalf("Failed to bootstrap admin: %v", err)
	}

	app := helpers.BuildApp(t, db, cfg)
	cookie := helpers.Login(t, app, "admin", cfg.AdminPassword)

	t.Run("AdminBootstrapIsIdempotent", func(t *testing.T) {
		if err := services.EnsureDefaultAdmin(db, cfg.AdminPassword); err != nil {
			t.Fatalf("Repeated bootstrap failed: %v", err)
		}
	})

	t.Run("PatientRoundTrip", func(t *testing.T) {
		resp, err := app.Test(helpers.JSONRequest(t, "POST", "/add_patient", map[string]interface{}{
			"patient_id": "PAT1",
			"name":       "Alice",
			"age":        30,
			"gender":     "F",
			"ailment":    "flu",
		}, cookie))
		if err != nil {
			t.Fatalf("Failed to execute request: %v", err)
		}
		helpers.AssertStatus(t, resp, 201)

		// Duplicate external id is rejected by the same path on a real DB
		resp, err = app.Test(helpers.JSONRequest(t, "POST", "/add_patient", map[string]interface{}{
			"patient_id": "PAT1",
			"name":       "Mallory",
		}, cookie))
		if err != nil {
			t.Fatalf("Failed to execute request: %v", err)
		}
		helpers.AssertStatus(t, resp, 409)

		req := httptest.NewRequest("GET", "/patients?q=alice", nil)
		req.AddCookie(cookie)
		resp, err = app.Test(req)
		if err != nil {
			t.Fatalf("Failed to execute request: %v", err)
		}
		helpers.AssertStatus(t, resp, 200)

		var roster map[string]interface{}
		helpers.ParseJSON(t, resp, &roster)
		if len(roster["patients"].([]interface{})) != 1 {
			t.Errorf("Expected 1 roster match, got %v", roster["patients"])
		}

		// The public page serves the record without a session
		resp, err = app.Test(httptest.NewRequest("GET", "/public/patient/1", nil))
		if err != nil {
			t.Fatalf("Failed to execute request: %v", err)
		}
		helpers.AssertStatus(t, resp, 200)
	})

	t.Run("ReportAttachment", func(t *testing.T) {
		content := []byte("%PDF-1.4 integration body")
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		part, err := w.CreateFormFile("report", "scan.pdf")
		if err != nil {
			t.Fatalf("Failed to create form file: %v", err)
		}
		if _, err := part.Write(content); err != nil {
			t.Fatalf("Failed to write form file: %v", err)
		}
		w.Close()

		req := httptest.NewRequest("POST", "/upload_report/1", &buf)
		req.Header.Set("Content-Type", w.FormDataContentType())
		req.AddCookie(cookie)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("Failed to execute request: %v", err)
		}
		helpers.AssertStatus(t, resp, 201)

		var report map[string]interface{}
		helpers.ParseJSON(t, resp, &report)
		filename, _ := report["filename"].(string)
		if filename == "" {
			t.Fatal("Expected stored filename in upload response")
		}

		req = httptest.NewRequest("GET", "/uploads/"+filename, nil)
		req.AddCookie(cookie)
		resp, err = app.Test(req)
		if err != nil {
			t.Fatalf("Failed to execute request: %v", err)
		}
		helpers.AssertStatus(t, resp, 200)
		got, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Fatalf("Failed to read download: %v", err)
		}
		if !bytes.Equal(got, content) {
			t.Error("Downloaded bytes do not match the upload")
		}
	})

	t.Run("Export", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/export/patients.xlsx", nil)
		req.AddCookie(cookie)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("Failed to execute request: %v", err)
		}
		helpers.AssertStatus(t, resp, 200)
		if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "patients.xlsx") {
			t.Errorf("Expected attachment disposition, got %q", cd)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Fatalf("Failed to read body: %v", err)
		}
		f, err := excelize.OpenReader(bytes.NewReader(body))
		if err != nil {
			t.Fatalf("Failed to open exported workbook: %v", err)
		}
		defer f.Close()

		rows, err := f.GetRows("Patients")
		if err != nil {
			t.Fatalf("Failed to read sheet: %v", err)
		}
		if len(rows) < 2 {
			t.Errorf("Expected header plus data rows, got %d rows", len(rows))
		}
	})

	t.Run("CascadeDelete", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/delete_patient/1", nil)
		req.AddCookie(cookie)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("Failed to execute request: %v", err)
		}
		helpers.AssertStatus(t, resp, 200)

		// Reports went with the patient
		reports, err := services.ListReports(db, 1)
		if err != nil {
			t.Fatalf("Failed to list reports: %v", err)
		}
		if len(reports) != 0 {
			t.Errorf("Expected 0 reports after cascade, got %d", len(reports))
		}
	})

	t.Run("AuthGate", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/patients", nil))
		if err != nil {
			t.Fatalf("Failed to execute request: %v", err)
		}
		if resp.StatusCode != fiber.StatusFound {
			t.Errorf("Expected status 302 for anonymous caller, got %d", resp.StatusCode)
		}
	})
}

// TestHealthCheck tests the health probe against a real database
func TestHealthCheck(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	cfg := helpers.StartPostgres(t)

	time.Sleep(2 * time.Second)

	db, err := database.Connect(cfg)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	result := services.HealthCheck(cfg, db)

	if result.Database != "ok" {
		t.Errorf("Expected database to be ok, got: %s", result.Database)
	}
	if result.Uploads != "ok" {
		t.Errorf("Expected uploads to be ok, got: %s", result.Uploads)
	}
	if result.Status != "healthy" {
		t.Errorf("Expected status to be healthy, got: %s", result.Status)
	}
}
