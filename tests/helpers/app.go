package helpers

import (
	"testing"

	"github.com/epms/epms/internal/config"
	"github.com/epms/epms/internal/handlers"
	"github.com/epms/epms/internal/middleware"
	"github.com/epms/epms/internal/storage"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// BuildApp wires a full application around an existing database connection,
// mirroring the server wiring minus the process-global middleware
func BuildApp(t *testing.T, db *gorm.DB, cfg *config.Config) *fiber.App {
	t.Helper()

	files, err := storage.NewFileStore(cfg.UploadDir)
	if err != nil {
		t.Fatalf("Failed to create file store: %v", err)
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

	return app
}
