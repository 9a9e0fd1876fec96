package handlers

import (
	"encoding/base64"
	"fmt"

	"github.com/epms/epms/internal/config"
	"github.com/epms/epms/internal/services"
	"github.com/epms/epms/internal/storage"
	"github.com/epms/epms/internal/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// PatientHandler handles the dashboard and patient CRUD routes
type PatientHandler struct {
	DB    *gorm.DB
	Files *storage.FileStore
	Cfg   *config.Config
}

// Dashboard handles GET /
// @Summary Dashboard summary
// @Description Total patient count, gender breakdown, and latest records
// @Tags Patients
// @Produce json
// @Success 200 {object} services.DashboardStats
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router / [get]
func (h *PatientHandler) Dashboard(c *fiber.Ctx) error {
	stats, err := services.GetDashboardStats(h.DB)
	if err != nil {
		return serviceError(err, "dashboard")
	}
	return utils.SuccessResponse(c, stats, fiber.StatusOK)
}

// ListPatients handles GET /patients?q=
// @Summary Filtered patient roster
// @Tags Patients
// @Produce json
// @Param q query string false "Substring matched against patient id, name, or ailment"
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /patients [get]
func (h *PatientHandler) ListPatients(c *fiber.Ctx) error {
	q := c.Query("q")

	patients, err := services.ListPatients(h.DB, q)
	if err != nil {
		return serviceError(err, "listPatients")
	}

	return utils.SuccessResponse(c, fiber.Map{
		"patients": patients,
		"q":        q,
	}, fiber.StatusOK)
}

// NewPatientForm handles GET /add_patient
// @Summary Patient entry point
// @Tags Patients
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /add_patient [get]
func (h *PatientHandler) NewPatientForm(c *fiber.Ctx) error {
	return utils.SuccessResponse(c, fiber.Map{
		"ok":     true,
		"fields": []string{"patient_id", "name", "age", "gender", "ailment", "contact", "address"},
	}, fiber.StatusOK)
}

// CreatePatient handles POST /add_patient
// @Summary Create a patient record
// @Tags Patients
// @Accept json
// @Produce json
// @Param body body services.PatientInput true "Patient fields"
// @Success 201 {object} models.Patient
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /add_patient [post]
func (h *PatientHandler) CreatePatient(c *fiber.Ctx) error {
	in, err := parsePatientInput(c)
	if err != nil {
		return serviceError(err, "createPatient")
	}

	patient, err := services.CreatePatient(h.DB, in)
	if err != nil {
		return serviceError(err, "createPatient")
	}

	return utils.SuccessResponse(c, patient, fiber.StatusCreated)
}

// ViewPatient handles GET /patient/:id
// @Summary Patient detail with access code
// @Description Patient record, its reports, and a QR access code for the public page
// @Tags Patients
// @Produce json
// @Param id path int true "Patient ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /patient/{id} [get]
func (h *PatientHandler) ViewPatient(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return serviceError(err, "viewPatient")
	}

	patient, err := services.GetPatient(h.DB, id)
	if err != nil {
		return serviceError(err, "viewPatient")
	}

	reports, err := services.ListReports(h.DB, patient.ID)
	if err != nil {
		return serviceError(err, "viewPatient")
	}

	code, err := services.GenerateAccessCode(h.Cfg.BaseURL, patient.ID)
	if err != nil {
		return serviceError(err, "viewPatient")
	}

	return utils.SuccessResponse(c, fiber.Map{
		"patient":     patient,
		"reports":     reports,
		"public_url":  services.PublicPatientURL(h.Cfg.BaseURL, patient.ID),
		"access_code": "data:image/png;base64," + base64.StdEncoding.EncodeToString(code),
	}, fiber.StatusOK)
}

// PublicViewPatient handles GET /public/patient/:id
// @Summary Read-only public patient detail
// @Tags Patients
// @Produce json
// @Param id path int true "Patient ID"
// @Success 200 {object} models.Patient
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /public/patient/{id} [get]
func (h *PatientHandler) PublicViewPatient(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return serviceError(err, "publicViewPatient")
	}

	patient, err := services.GetPatient(h.DB, id)
	if err != nil {
		return serviceError(err, "publicViewPatient")
	}

	return utils.SuccessResponse(c, patient, fiber.StatusOK)
}

// EditPatientForm handles GET /edit_patient/:id
// @Summary Patient edit entry point
// @Tags Patients
// @Produce json
// @Param id path int true "Patient ID"
// @Success 200 {object} models.Patient
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /edit_patient/{id} [get]
func (h *PatientHandler) EditPatientForm(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return serviceError(err, "editPatient")
	}

	patient, err := services.GetPatient(h.DB, id)
	if err != nil {
		return serviceError(err, "editPatient")
	}

	return utils.SuccessResponse(c, patient, fiber.StatusOK)
}

// UpdatePatient handles POST /edit_patient/:id
// @Summary Update a patient record
// @Description Full replace of the editable fields; the external patient id never changes
// @Tags Patients
// @Accept json
// @Produce json
// @Param id path int true "Patient ID"
// @Param body body services.PatientInput true "Patient fields"
// @Success 200 {object} models.Patient
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /edit_patient/{id} [post]
func (h *PatientHandler) UpdatePatient(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return serviceError(err, "updatePatient")
	}

	in, err := parsePatientInput(c)
	if err != nil {
		return serviceError(err, "updatePatient")
	}

	patient, err := services.UpdatePatient(h.DB, id, in)
	if err != nil {
		return serviceError(err, "updatePatient")
	}

	return utils.SuccessResponse(c, patient, fiber.StatusOK)
}

// DeletePatient handles POST /delete_patient/:id
// @Summary Delete a patient and its reports
// @Description Cascades to all report rows and their backing files
// @Tags Patients
// @Produce json
// @Param id path int true "Patient ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /delete_patient/{id} [post]
func (h *PatientHandler) DeletePatient(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return serviceError(err, "deletePatient")
	}

	if err := services.DeletePatient(h.DB, h.Files, id); err != nil {
		return serviceError(err, "deletePatient")
	}

	return utils.OkResponse(c, fmt.Sprintf("Patient %d deleted", id))
}
