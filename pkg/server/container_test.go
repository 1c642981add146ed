package server

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"kvops-api/internal/config"
	"kvops-api/internal/router"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "container_test_*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	return &config.Config{
		Environment: "test",
		Port:        "0",
		LogLevel:    "warn",
		Store: config.StoreConfig{
			Backend:    config.BackendSQLite,
			SQLitePath: filepath.Join(tempDir, "kvops.db"),
		},
	}
}

func TestNewContainer_SQLiteBackend(t *testing.T) {
	cfg := testConfig(t)

	container, err := NewContainer(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewContainer() failed: %v", err)
	}
	defer container.Close()

	if container.Store == nil {
		t.Error("container.Store is nil")
	}
	if container.Router == nil {
		t.Error("container.Router is nil")
	}

	// The wired router serves the full catalogue end to end
	result, err := container.Router.Handle(context.Background(), &router.Request{Operation: router.OpPing})
	if err != nil {
		t.Fatalf("Handle(ping) failed: %v", err)
	}
	if result != router.PingResponse {
		t.Errorf("ping result = %v, want %q", result, router.PingResponse)
	}
}

func TestNewContainer_UnknownBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Backend = "cassandra"

	if _, err := NewContainer(context.Background(), cfg); err == nil {
		t.Fatal("NewContainer() succeeded with unknown backend, want error")
	}
}

func TestContainerClose(t *testing.T) {
	cfg := testConfig(t)

	container, err := NewContainer(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewContainer() failed: %v", err)
	}

	if err := container.Close(); err != nil {
		t.Errorf("Close() failed: %v", err)
	}
}
