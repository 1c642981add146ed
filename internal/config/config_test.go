package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "8081" {
		t.Errorf("Port = %q, want %q", cfg.Port, "8081")
	}
	if cfg.Store.Backend != BackendSQLite {
		t.Errorf("Store.Backend = %q, want %q", cfg.Store.Backend, BackendSQLite)
	}
	if len(cfg.Store.KeyAttributes) != 1 || cfg.Store.KeyAttributes[0] != "id" {
		t.Errorf("Store.KeyAttributes = %v, want [id]", cfg.Store.KeyAttributes)
	}
	if cfg.Auth.Enabled {
		t.Error("Auth.Enabled = true, want false by default")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("STORE_BACKEND", BackendDynamo)
	t.Setenv("DYNAMO_ENDPOINT", "http://localhost:8000")
	t.Setenv("PORT", "9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Store.Backend != BackendDynamo {
		t.Errorf("Store.Backend = %q, want %q", cfg.Store.Backend, BackendDynamo)
	}
	if cfg.Store.Endpoint != "http://localhost:8000" {
		t.Errorf("Store.Endpoint = %q", cfg.Store.Endpoint)
	}
	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want %q", cfg.Port, "9090")
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("TEST_STRING", "value")
	t.Setenv("TEST_INT", "42")
	t.Setenv("TEST_BOOL", "true")

	if got := GetEnv("TEST_STRING", "fallback"); got != "value" {
		t.Errorf("GetEnv() = %q", got)
	}
	if got := GetEnv("TEST_UNSET", "fallback"); got != "fallback" {
		t.Errorf("GetEnv() fallback = %q", got)
	}
	if got := GetEnvAsInt("TEST_INT", 0); got != 42 {
		t.Errorf("GetEnvAsInt() = %d", got)
	}
	if got := GetEnvAsInt("TEST_UNSET", 7); got != 7 {
		t.Errorf("GetEnvAsInt() fallback = %d", got)
	}
	if got := GetEnvAsBool("TEST_BOOL", false); !got {
		t.Error("GetEnvAsBool() = false, want true")
	}
}
