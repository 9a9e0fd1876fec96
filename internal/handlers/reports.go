package handlers

import (
	"fmt"

	"github.com/epms/epms/internal/services"
	"github.com/epms/epms/internal/storage"
	"github.com/epms/epms/internal/types"
	"github.com/epms/epms/internal/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ReportHandler handles report uploads, downloads, and deletion
type ReportHandler struct {
	DB    *gorm.DB
	Files *storage.FileStore
}

// UploadReport handles POST /upload_report/:patientId
// @Summary Attach a report file to a patient
// @Description Accepts pdf, png, jpg, or jpeg in the multipart field "report"
// @Tags Reports
// @Accept mpfd
// @Produce json
// @Param patientId path int true "Patient ID"
// @Param report formData file true "Report file"
// @Success 201 {object} models.Report
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /upload_report/{patientId} [post]
func (h *ReportHandler) UploadReport(c *fiber.Ctx) error {
	patientID, err := parseID(c, "patientId")
	if err != nil {
		return serviceError(err, "uploadReport")
	}

	fh, err := c.FormFile("report")
	if err != nil {
		return serviceError(services.ErrNoFile, "uploadReport")
	}

	report, err := services.UploadReport(h.DB, h.Files, patientID, fh)
	if err != nil {
		return serviceError(err, "uploadReport")
	}

	return utils.SuccessResponse(c, report, fiber.StatusCreated)
}

// DeleteReport handles POST /delete_report/:id
// @Summary Remove a report and its file
// @Tags Reports
// @Produce json
// @Param id path int true "Report ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /delete_report/{id} [post]
func (h *ReportHandler) DeleteReport(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return serviceError(err, "deleteReport")
	}

	if err := services.DeleteReport(h.DB, h.Files, id); err != nil {
		return serviceError(err, "deleteReport")
	}

	return utils.OkResponse(c, fmt.Sprintf("Report %d deleted", id))
}

// ServeUpload handles GET /uploads/:filename
// @Summary Stream a stored report file
// @Tags Reports
// @Produce octet-stream
// @Param filename path string true "Stored filename"
// @Success 200 {file} binary
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /uploads/{filename} [get]
func (h *ReportHandler) ServeUpload(c *fiber.Ctx) error {
	path, err := h.Files.Resolve(c.Params("filename"))
	if err != nil {
		return &types.AppError{Code: fiber.StatusNotFound, Message: "File not found", Type: "not_found"}
	}
	return c.SendFile(path)
}

// ViewReport handles GET /report_view/:id
// @Summary Report metadata
// @Tags Reports
// @Produce json
// @Param id path int true "Report ID"
// @Success 200 {object} models.Report
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /report_view/{id} [get]
func (h *ReportHandler) ViewReport(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return serviceError(err, "viewReport")
	}

	report, err := services.GetReport(h.DB, id)
	if err != nil {
		return serviceError(err, "viewReport")
	}

	return utils.SuccessResponse(c, report, fiber.StatusOK)
}
