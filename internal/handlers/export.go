package handlers

import (
	"github.com/epms/epms/internal/services"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ExportHandler handles the roster spreadsheet export
type ExportHandler struct {
	DB *gorm.DB
}

// ExportPatients handles GET /export/patients.xlsx
// @Summary Export the patient roster as a spreadsheet
// @Tags Export
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /export/patients.xlsx [get]
func (h *ExportHandler) ExportPatients(c *fiber.Ctx) error {
	buf, err := services.ExportRoster(h.DB)
	if err != nil {
		return serviceError(err, "exportPatients")
	}

	c.Set(fiber.HeaderContentDisposition, `attachment; filename=patients.xlsx`)
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	return c.Send(buf.Bytes())
}
