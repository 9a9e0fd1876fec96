package config

import (
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port string

	// Public base URL used when building absolute links (access codes)
	BaseURL string

	// Database configuration
	DBType            string // postgres, mysql, sqlserver, or sqlite
	DBHost            string
	DBPort            string
	DBDatabase        string // for sqlite this is the database file path
	DBUser            string
	DBPassword        string
	DBConnectionLimit int

	// Session configuration
	SessionSecret string

	// Upload storage
	UploadDir string

	// AdminPassword is the password for the bootstrapped admin account.
	// The default exists for first-run convenience only; deployments must
	// override ADMIN_PASSWORD (or change the account after first login).
	AdminPassword string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:              getEnv("PORT", "3000"),
		BaseURL:           getEnv("BASE_URL", "http://localhost:3000"),
		DBType:            getEnv("DB_TYPE", "sqlite"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "5432"),
		DBDatabase:        getEnv("DB_DATABASE", "patients.db"),
		DBUser:            getEnv("DB_USER", ""),
		DBPassword:        getEnv("DB_PASSWORD", ""),
		DBConnectionLimit: getEnvAsInt("DB_CONNECTION_LIMIT", 5),
		SessionSecret:     getEnv("EPMS_SECRET", "dev-secret-key"),
		UploadDir:         getEnv("UPLOAD_DIR", "uploads"),
		AdminPassword:     getEnv("ADMIN_PASSWORD", "admin123"),
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
