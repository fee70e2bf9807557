//go:build integration

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/retroconnect/idverify/internal/admin"
	"github.com/retroconnect/idverify/internal/database"
)

var testDB *pgxpool.Pool

func TestMain(m *testing.M) {
	os.Exit(runWithDatabase(m))
}

func runWithDatabase(m *testing.M) int {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "idverify_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		fmt.Printf("Failed to start container: %v\n", err)
		return 1
	}
	defer func() {
		if err := container.Terminate(ctx); err != nil {
			fmt.Printf("Failed to terminate container: %v\n", err)
		}
	}()

	host, _ := container.Host(ctx)
	port, _ := container.MappedPort(ctx, "5432")
	dsn := fmt.Sprintf("postgres://test:test@%s:%s/idverify_test?sslmode=disable", host, port.Port())

	sqlDB, err := database.OpenSQL(ctx, dsn)
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		return 1
	}
	migrator, err := database.NewMigrator(sqlDB, "idverify_test")
	if err != nil {
		fmt.Printf("Failed to create migrator: %v\n", err)
		return 1
	}
	if err := migrator.Up(); err != nil {
		fmt.Printf("Failed to run migrations: %v\n", err)
		return 1
	}
	_ = migrator.Close()

	testDB, err = database.NewPool(ctx, database.DefaultPoolConfig(dsn))
	if err != nil {
		fmt.Printf("Failed to connect to database: %v\n", err)
		return 1
	}
	defer testDB.Close()

	return m.Run()
}

func newIntegrationRouter(t *testing.T) *Router {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := NewRouter(logger, &Dependencies{
		DB:           testDB,
		Verifier:     stubVerifier{},
		Moderation:   stubModeration{},
		Submitter:    stubSubmitter{},
		Tokens:       admin.NewJWTService(testSecret, "idverify", time.Hour),
		RateLimitMax: 10,
	})
	router.Setup()
	t.Cleanup(func() { _ = router.Shutdown() })
	return router
}

func TestIntegration_ReadyEndpoint(t *testing.T) {
	router := newIntegrationRouter(t)

	resp, err := router.App().Test(httptest.NewRequest("GET", "/ready", nil), -1)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}

	if resp.StatusCode != 200 {
		t.Errorf("Status = %d, want 200", resp.StatusCode)
	}
}

func TestIntegration_NotFoundReturns404(t *testing.T) {
	router := newIntegrationRouter(t)

	resp, err := router.App().Test(httptest.NewRequest("GET", "/nonexistent", nil), -1)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}

	if resp.StatusCode != 404 {
		t.Errorf("Status = %d, want 404", resp.StatusCode)
	}
}

func TestIntegration_VerificationMetricsOnEmptyTable(t *testing.T) {
	router := newIntegrationRouter(t)

	token, err := admin.NewJWTService(testSecret, "idverify", time.Hour).
		GenerateToken(uuid.New(), "mod@example.com", admin.RoleModerator)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	req := httptest.NewRequest("GET", "/v1/admin/metrics/verifications?granularity=week", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := router.App().Test(req, -1)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("Status = %d, want 200", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var result struct {
		Data struct {
			Total int64 `json:"total"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if result.Data.Total != 0 {
		t.Errorf("total = %d, want 0", result.Data.Total)
	}
}

func TestIntegration_SchemaTables(t *testing.T) {
	ctx := context.Background()

	for _, table := range []string{"users", "verification_attempts"} {
		var exists bool
		err := testDB.QueryRow(ctx, "SELECT to_regclass($1) IS NOT NULL", "public."+table).Scan(&exists)
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if !exists {
			t.Errorf("table %s missing after migrations", table)
		}
	}
}
