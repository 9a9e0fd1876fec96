package helpers

import (
	"context"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/epms/epms/internal/config"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// StartPostgres runs a throwaway PostgreSQL container and returns a config
// pointed at it. The container is terminated when the test finishes.
func StartPostgres(t *testing.T) *config.Config {
	t.Helper()

	ctx := context.Background()

	tcpPort, err := nat.NewPort("tcp", "5432")
	if err != nil {
		t.Fatalf("Failed to create DB port: %v", err)
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{string(tcpPort)},
			Env: map[string]string{
				"POSTGRES_PASSWORD": "testpass",
				"POSTGRES_USER":     "testuser",
				"POSTGRES_DB":       "testdb",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, tcpPort)
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	return &config.Config{
		DBType:            "postgres",
		DBHost:            host,
		DBPort:            port.Port(),
		DBDatabase:        "testdb",
		DBUser:            "testuser",
		DBPassword:        "testpass",
		DBConnectionLimit: 5,
		BaseURL:           "http://clinic.test",
		AdminPassword:     "admin123",
		UploadDir:         t.TempDir(),
	}
}
