package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/encryptcookie"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/joho/godotenv"

	"github.com/epms/epms/internal/config"
	"github.com/epms/epms/internal/database"
	"github.com/epms/epms/internal/handlers"
	"github.com/epms/epms/internal/middleware"
	"github.com/epms/epms/internal/services"
	"github.com/epms/epms/internal/storage"
	"github.com/epms/epms/internal/utils"

	_ "github.com/epms/epms/docs/api" // Swagger docs
)

// @title EPMS API
// @version 1.0.0
// @description Clinic patient record service: patients, report files, access codes, roster export

// @contact.name API Support

// @license.name MIT

// @host localhost:3000
// @BasePath /
// @schemes http https

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name epms_session

func main() {
	// Load optional .env before reading configuration
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Bootstrap the default admin account if no admin exists yet.
	// Deployments must override ADMIN_PASSWORD.
	if err := services.EnsureDefaultAdmin(db, cfg.AdminPassword); err != nil {
		log.Fatalf("Failed to bootstrap admin account: %v", err)
	}

	// Prepare upload storage
	files, err := storage.NewFileStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to prepare upload storage: %v", err)
	}

	// Server-side sessions
	sessions := middleware.NewSessionStore()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())
	app.Use(encryptcookie.New(encryptcookie.Config{
		Key: middleware.CookieKey(cfg.SessionSecret),
	}))

	// Prometheus metrics
	prometheus := fiberprometheus.New("epms")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Application routes
	handlers.Register(app, handlers.Deps{
		DB:       db,
		Files:    files,
		Sessions: sessions,
		Cfg:      cfg,
	})

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return utils.NotFoundResponse(c, "[404] Resource Not Found")
	})

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	log.Printf("Starting server on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Println("Server stopped")
}
