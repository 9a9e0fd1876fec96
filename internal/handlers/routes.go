package handlers

import (
	"github.com/epms/epms/internal/config"
	"github.com/epms/epms/internal/middleware"
	"github.com/epms/epms/internal/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"gorm.io/gorm"
)

// Deps carries the shared dependencies handed to every handler.
type Deps struct {
	DB       *gorm.DB
	Files    *storage.FileStore
	Sessions *session.Store
	Cfg      *config.Config
}

// Register mounts all application routes. Login, register, the public
// patient view, and the health probe are reachable anonymously; everything
// else sits behind the auth gate.
func Register(app *fiber.App, d Deps) {
	authHandler := &AuthHandler{DB: d.DB, Sessions: d.Sessions}
	patientHandler := &PatientHandler{DB: d.DB, Files: d.Files, Cfg: d.Cfg}
	reportHandler := &ReportHandler{DB: d.DB, Files: d.Files}
	exportHandler := &ExportHandler{DB: d.DB}
	healthHandler := &HealthHandler{DB: d.DB, Cfg: d.Cfg}

	auth := middleware.AuthRequired(d.Sessions)

	// Anonymous entry points
	app.Get("/register", authHandler.RegisterForm)
	app.Post("/register", authHandler.Register)
	app.Get("/login", authHandler.LoginForm)
	app.Post("/login", authHandler.Login)
	app.Get("/public/patient/:id", patientHandler.PublicViewPatient)
	app.Get("/health", healthHandler.Health)

	// Protected routes
	app.Get("/logout", auth, authHandler.Logout)
	app.Get("/", auth, patientHandler.Dashboard)
	app.Get("/patients", auth, patientHandler.ListPatients)
	app.Get("/add_patient", auth, patientHandler.NewPatientForm)
	app.Post("/add_patient", auth, patientHandler.CreatePatient)
	app.Get("/patient/:id", auth, patientHandler.ViewPatient)
	app.Get("/edit_patient/:id", auth, patientHandler.EditPatientForm)
	app.Post("/edit_patient/:id", auth, patientHandler.UpdatePatient)
	app.Post("/delete_patient/:id", auth, patientHandler.DeletePatient)
	app.Post("/upload_report/:patientId", auth, reportHandler.UploadReport)
	app.Post("/delete_report/:id", auth, reportHandler.DeleteReport)
	app.Get("/uploads/:filename", auth, reportHandler.ServeUpload)
	app.Get("/report_view/:id", auth, reportHandler.ViewReport)
	app.Get("/export/patients.xlsx", auth, exportHandler.ExportPatients)
}
