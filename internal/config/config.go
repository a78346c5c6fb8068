// Package config handles loading and validation of service configuration.
// Supports both development (env vars, optional .env file) and production
// (Secret Manager) modes.
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/joho/godotenv"
)

// Config holds all service configuration.
// Environment determines whether secrets load from env vars (development)
// or Secret Manager (production).
type Config struct {
	// Server settings
	Port        string
	Environment string // "development" or "production"
	LogLevel    string // "debug", "info", "warn", "error"

	// GCP settings (required in production)
	GCPProject string
	StoreID    string

	// Minimum Shop-Client app version admitted by the gateway.
	// Empty disables the version gate.
	MinClientVersion string

	// Store-specific configuration (loaded from secrets)
	Store StoreConfig
}

// StoreConfig contains backend-store-specific settings.
// In production, this is loaded from Secret Manager as JSON.
// In development, loaded from individual env vars or CONFIG_FILE.
type StoreConfig struct {
	BackendURL  string   `json:"backend_url"`
	StoreDomain string   `json:"store_domain"` // Derived from BackendURL if not set
	StoreName   string   `json:"store_name,omitempty"`
	APIKey      string   `json:"api_key"`
	APISecret   string   `json:"api_secret"`
	Collections []string `json:"collections,omitempty"` // Defaults to ["wishlist"]

	// Present a Chrome TLS fingerprint to the backend. Needed when the
	// store sits behind a CDN that rate-limits Go's default TLS stack.
	ChromeTLS bool `json:"chrome_tls,omitempty"`
}

// Load reads configuration from file, environment, or Secret Manager.
// Priority: CONFIG_FILE (if set) → ENV vars / Secret Manager.
// Validates all required fields and returns an error if any are missing.
func Load(ctx context.Context) (*Config, error) {
	// If CONFIG_FILE is set, load everything from the JSON file
	if configPath := os.Getenv("CONFIG_FILE"); configPath != "" {
		return loadFromFile(configPath)
	}

	cfg := &Config{
		Port:             envOrDefault("PORT", "8080"),
		Environment:      envOrDefault("ENVIRONMENT", "development"),
		LogLevel:         envOrDefault("LOG_LEVEL", "info"),
		GCPProject:       os.Getenv("GCP_PROJECT"),
		StoreID:          os.Getenv("STORE_ID"),
		MinClientVersion: os.Getenv("MIN_CLIENT_VERSION"),
	}

	// StoreID required in all environments
	if cfg.StoreID == "" {
		return nil, fmt.Errorf("STORE_ID environment variable required")
	}

	// Load store config based on environment
	var err error
	if cfg.Environment == "production" {
		if cfg.GCPProject == "" {
			return nil, fmt.Errorf("GCP_PROJECT required in production environment")
		}
		err = cfg.loadFromSecretManager(ctx)
	} else {
		err = cfg.loadFromEnv()
	}
	if err != nil {
		return nil, fmt.Errorf("loading store config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile reads all configuration from a JSON file.
// Used for local development to avoid multiple ENV vars.
func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var fileConfig struct {
		Port             string      `json:"port"`
		Environment      string      `json:"environment"`
		LogLevel         string      `json:"log_level"`
		StoreID          string      `json:"store_id"`
		MinClientVersion string      `json:"min_client_version"`
		Store            StoreConfig `json:"store"`
	}

	if err := json.Unmarshal(data, &fileConfig); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg := &Config{
		Port:             withDefault(fileConfig.Port, "8080"),
		Environment:      withDefault(fileConfig.Environment, "development"),
		LogLevel:         withDefault(fileConfig.LogLevel, "info"),
		StoreID:          fileConfig.StoreID,
		MinClientVersion: fileConfig.MinClientVersion,
		Store:            fileConfig.Store,
	}

	if cfg.StoreID == "" {
		return nil, fmt.Errorf("store_id is required")
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// withDefault returns val if non-empty, otherwise defaultVal.
func withDefault(val, defaultVal string) string {
	if val != "" {
		return val
	}
	return defaultVal
}

// loadFromSecretManager fetches store config from GCP Secret Manager.
// Secret name format: projects/{project}/secrets/{store_id}/versions/latest
func (c *Config) loadFromSecretManager(ctx context.Context) error {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("creating secret manager client: %w", err)
	}
	defer client.Close()

	secretName := fmt.Sprintf("projects/%s/secrets/%s/versions/latest",
		c.GCPProject, c.StoreID)

	result, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: secretName,
	})
	if err != nil {
		return fmt.Errorf("accessing secret %s: %w", secretName, err)
	}

	if err := json.Unmarshal(result.Payload.Data, &c.Store); err != nil {
		return fmt.Errorf("parsing secret JSON: %w", err)
	}

	return nil
}

// loadFromEnv reads store config from individual environment variables.
// Used in development mode for local testing. A .env file in the working
// directory is loaded first if present; real env vars win over it.
func (c *Config) loadFromEnv() error {
	// godotenv does not overwrite variables already set in the env
	_ = godotenv.Load()

	c.Store = StoreConfig{
		BackendURL:  os.Getenv("STORE_BACKEND_URL"),
		StoreDomain: os.Getenv("STORE_DOMAIN"),
		StoreName:   os.Getenv("STORE_NAME"),
		APIKey:      os.Getenv("STORE_API_KEY"),
		APISecret:   os.Getenv("STORE_API_SECRET"),
		ChromeTLS:   os.Getenv("STORE_CHROME_TLS") == "true",
	}

	if collections := os.Getenv("STORE_COLLECTIONS"); collections != "" {
		for _, key := range strings.Split(collections, ",") {
			if key = strings.TrimSpace(key); key != "" {
				c.Store.Collections = append(c.Store.Collections, key)
			}
		}
	}

	// .env may also carry the version gate
	if c.MinClientVersion == "" {
		c.MinClientVersion = os.Getenv("MIN_CLIENT_VERSION")
	}

	return nil
}

// applyDefaults fills derived and defaulted fields after loading.
func (c *Config) applyDefaults() {
	if c.Store.StoreDomain == "" && c.Store.BackendURL != "" {
		c.Store.StoreDomain = extractDomain(c.Store.BackendURL)
	}
	if len(c.Store.Collections) == 0 {
		c.Store.Collections = []string{"wishlist"}
	}
}

// validate checks that all required configuration fields are present.
func (c *Config) validate() error {
	if c.Store.BackendURL == "" {
		return fmt.Errorf("backend_url is required")
	}
	if c.Store.APIKey == "" {
		return fmt.Errorf("api_key is required")
	}
	if c.Store.APISecret == "" {
		return fmt.Errorf("api_secret is required")
	}

	// Validate backend URL is well-formed
	if _, err := url.Parse(c.Store.BackendURL); err != nil {
		return fmt.Errorf("invalid backend_url: %w", err)
	}

	return nil
}

// GatewayBaseURL returns the externally visible base URL of this gateway,
// used in the discovery profile to advertise transport endpoints.
// In production set GATEWAY_BASE_URL; defaults to localhost for dev.
func (c *Config) GatewayBaseURL() string {
	if base := os.Getenv("GATEWAY_BASE_URL"); base != "" {
		return strings.TrimSuffix(base, "/")
	}
	return fmt.Sprintf("http://localhost:%s", c.Port)
}

// extractDomain parses the domain from a URL string.
func extractDomain(backendURL string) string {
	u, err := url.Parse(backendURL)
	if err != nil {
		// Fallback: strip protocol prefix manually
		domain := strings.TrimPrefix(backendURL, "https://")
		domain = strings.TrimPrefix(domain, "http://")
		return strings.Split(domain, "/")[0]
	}
	return u.Host
}

// envOrDefault returns the environment variable value or the default if not set.
func envOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
