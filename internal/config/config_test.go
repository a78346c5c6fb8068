package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// clearEnv unsets every variable this package reads, restoring them
// when the test finishes.
func clearEnv(t *testing.T) {
	t.Helper()
	envVars := []string{
		"CONFIG_FILE", "STORE_ID", "STORE_BACKEND_URL", "STORE_DOMAIN",
		"STORE_NAME", "STORE_API_KEY", "STORE_API_SECRET", "STORE_COLLECTIONS",
		"STORE_CHROME_TLS", "ENVIRONMENT", "PORT", "LOG_LEVEL",
		"MIN_CLIENT_VERSION", "GCP_PROJECT", "GATEWAY_BASE_URL",
	}
	for _, k := range envVars {
		if v, ok := os.LookupEnv(k); ok {
			t.Setenv(k, v) // registers restore
		}
		os.Unsetenv(k)
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)

	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("STORE_ID", "test-store")
	t.Setenv("STORE_BACKEND_URL", "https://shop.example.com")
	t.Setenv("STORE_API_KEY", "ck_test123")
	t.Setenv("STORE_API_SECRET", "cs_test456")
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("MIN_CLIENT_VERSION", "2.0.0")
	t.Setenv("STORE_COLLECTIONS", "wishlist, saved-for-later")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Port = %s, want 9090", cfg.Port)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %s, want debug", cfg.LogLevel)
	}
	if cfg.StoreID != "test-store" {
		t.Errorf("StoreID = %s, want test-store", cfg.StoreID)
	}
	if cfg.MinClientVersion != "2.0.0" {
		t.Errorf("MinClientVersion = %s, want 2.0.0", cfg.MinClientVersion)
	}

	if cfg.Store.BackendURL != "https://shop.example.com" {
		t.Errorf("BackendURL = %s", cfg.Store.BackendURL)
	}
	if cfg.Store.APIKey != "ck_test123" {
		t.Errorf("APIKey = %s, want ck_test123", cfg.Store.APIKey)
	}

	// Derived domain
	if cfg.Store.StoreDomain != "shop.example.com" {
		t.Errorf("StoreDomain = %s, want shop.example.com", cfg.Store.StoreDomain)
	}

	// Collection list parsed and trimmed
	if len(cfg.Store.Collections) != 2 {
		t.Fatalf("Collections = %v, want 2 entries", cfg.Store.Collections)
	}
	if cfg.Store.Collections[1] != "saved-for-later" {
		t.Errorf("Collections[1] = %s, want saved-for-later", cfg.Store.Collections[1])
	}
}

func TestLoadMissingStoreID(t *testing.T) {
	clearEnv(t)

	_, err := Load(context.Background())
	if err == nil {
		t.Error("Expected error for missing STORE_ID")
	}
}

func TestLoadMissingRequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		unset   string
		wantErr string
	}{
		{"missing backend_url", "STORE_BACKEND_URL", "backend_url is required"},
		{"missing api_key", "STORE_API_KEY", "api_key is required"},
		{"missing api_secret", "STORE_API_SECRET", "api_secret is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("ENVIRONMENT", "development")
			t.Setenv("STORE_ID", "test")
			t.Setenv("STORE_BACKEND_URL", "https://shop.example.com")
			t.Setenv("STORE_API_KEY", "key")
			t.Setenv("STORE_API_SECRET", "secret")
			os.Unsetenv(tt.unset)

			_, err := Load(context.Background())
			if err == nil {
				t.Fatalf("Load() succeeded, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want contains %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)

	content := `{
		"port": "9191",
		"store_id": "file-store",
		"min_client_version": "1.2.0",
		"store": {
			"backend_url": "https://files.example.com",
			"store_name": "File Store",
			"api_key": "ck_file",
			"api_secret": "cs_file",
			"collections": ["wishlist", "favorites"],
			"chrome_tls": true
		}
	}`
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Port != "9191" {
		t.Errorf("Port = %s, want 9191", cfg.Port)
	}
	if cfg.Environment != "development" {
		t.Errorf("Environment = %s, want development default", cfg.Environment)
	}
	if cfg.StoreID != "file-store" {
		t.Errorf("StoreID = %s, want file-store", cfg.StoreID)
	}
	if cfg.MinClientVersion != "1.2.0" {
		t.Errorf("MinClientVersion = %s, want 1.2.0", cfg.MinClientVersion)
	}
	if !cfg.Store.ChromeTLS {
		t.Error("ChromeTLS should be true")
	}
	if cfg.Store.StoreDomain != "files.example.com" {
		t.Errorf("StoreDomain = %s, want files.example.com", cfg.Store.StoreDomain)
	}
	if len(cfg.Store.Collections) != 2 {
		t.Errorf("Collections = %v, want 2 entries", cfg.Store.Collections)
	}
}

func TestLoadFromFileMissingStoreID(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"store": {"backend_url": "https://x.example.com", "api_key": "k", "api_secret": "s"}}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)

	_, err := Load(context.Background())
	if err == nil || !strings.Contains(err.Error(), "store_id is required") {
		t.Errorf("error = %v, want store_id is required", err)
	}
}

func TestDefaultCollections(t *testing.T) {
	clearEnv(t)

	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("STORE_ID", "test")
	t.Setenv("STORE_BACKEND_URL", "https://shop.example.com")
	t.Setenv("STORE_API_KEY", "key")
	t.Setenv("STORE_API_SECRET", "secret")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if len(cfg.Store.Collections) != 1 || cfg.Store.Collections[0] != "wishlist" {
		t.Errorf("Collections = %v, want [wishlist]", cfg.Store.Collections)
	}
}

func TestGatewayBaseURL(t *testing.T) {
	clearEnv(t)

	cfg := &Config{Port: "8080"}
	if got := cfg.GatewayBaseURL(); got != "http://localhost:8080" {
		t.Errorf("GatewayBaseURL() = %s, want localhost default", got)
	}

	t.Setenv("GATEWAY_BASE_URL", "https://gateway.example.com/")
	if got := cfg.GatewayBaseURL(); got != "https://gateway.example.com" {
		t.Errorf("GatewayBaseURL() = %s, want trailing slash trimmed", got)
	}
}
