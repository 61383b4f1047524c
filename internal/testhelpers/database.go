package testhelpers

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/famnudger/fam/backend/config"
	"github.com/famnudger/fam/backend/internal/database"
	"github.com/famnudger/fam/backend/internal/logger"
)

const (
	testDBUser     = "postgres"
	testDBPassword = "postpass"
	testDBName     = "fam"
)

// SetupSQLite returns a migrated sqlite database in the test's temp dir.
func SetupSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := &config.Config{DBDriver: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "fam.db")}
	db, err := database.New(cfg, logger.Nop())
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })

	if err := database.RunMigrations(db, logger.Nop()); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return db
}

// SetupTestDatabase starts a pgvector postgres container and returns a
// migrated connection. Skips when docker is not available.
func SetupTestDatabase(t *testing.T) *gorm.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-based test in short mode")
	}
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not installed, skipping container-based test")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "pgvector/pgvector:pg16",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     testDBUser,
				"POSTGRES_PASSWORD": testDBPassword,
				"POSTGRES_DB":       testDBName,
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				wait.ForSQL("5432/tcp", "postgres", func(host string, port nat.Port) string {
					return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
						testDBUser, testDBPassword, host, port.Port(), testDBName)
				}),
			).WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start container: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := container.Terminate(ctx); err != nil {
			t.Errorf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	mappedPort, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("failed to get container port: %v", err)
	}

	cfg := &config.Config{
		DBDriver:   "postgres",
		DBHost:     host,
		DBPort:     mappedPort.Port(),
		DBUser:     testDBUser,
		DBPassword: testDBPassword,
		DBName:     testDBName,
		DBSSLMode:  "disable",
	}
	db, err := database.New(cfg, logger.Nop())
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })

	if err := database.RunMigrations(db, logger.Nop()); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}
