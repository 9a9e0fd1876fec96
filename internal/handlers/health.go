package handlers

import (
	"github.com/epms/epms/internal/config"
	"github.com/epms/epms/internal/services"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// HealthHandler handles the liveness probe
type HealthHandler struct {
	DB  *gorm.DB
	Cfg *config.Config
}

// Health handles GET /health
// @Summary Service health probe
// @Tags Health
// @Produce json
// @Success 200 {object} services.HealthCheckResult
// @Failure 503 {object} services.HealthCheckResult
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	result := services.HealthCheck(h.Cfg, h.DB)
	status := fiber.StatusOK
	if result.Status != "healthy" {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(result)
}
