// Package storeapi implements the adapter.Adapter interface against the
// store backend's Admin API (products, pricing rules, collections).
package storeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"storefront-gateway/internal/model"
	"storefront-gateway/internal/transport"
)

const apiBasePath = "/api"

// userAgent identifies this client to the backend.
// Required: the backend's CDN rate-limits requests without a User-Agent.
const userAgent = "Storefront-Gateway/1.0"

// Config holds backend connection settings.
type Config struct {
	// BackendURL is the base URL of the store backend, e.g. "https://store.example.com".
	BackendURL string

	// APIKey and APISecret authenticate Admin API requests (Basic Auth).
	APIKey    string
	APISecret string

	// StoreDomain and StoreName feed the discovery profile.
	StoreDomain string
	StoreName   string

	// GatewayBaseURL is this gateway's public base URL, advertised in
	// the discovery profile as the service endpoint.
	GatewayBaseURL string

	// Collections lists the collection keys this store exposes.
	Collections []string

	// ChromeTLS routes requests through the browser-fingerprint
	// transport. Needed when the backend sits behind a CDN that
	// blocks non-browser TLS handshakes.
	ChromeTLS bool

	// Logger for client operations. Defaults to slog.Default().
	Logger *slog.Logger
}

// Client talks to the store backend. Implements adapter.Adapter.
type Client struct {
	backendURL string
	apiKey     string
	apiSecret  string
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a backend client.
func New(cfg Config) (*Client, error) {
	if cfg.BackendURL == "" {
		return nil, fmt.Errorf("backend URL is required")
	}
	if cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("API credentials are required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	if cfg.ChromeTLS {
		httpClient.Transport = transport.NewChromeTransport(30 * time.Second)
	}

	return &Client{
		backendURL: strings.TrimSuffix(cfg.BackendURL, "/"),
		apiKey:     cfg.APIKey,
		apiSecret:  cfg.APISecret,
		cfg:        cfg,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// GetProfile returns the discovery profile. The profile is assembled
// from config; no backend round trip is needed.
func (c *Client) GetProfile(ctx context.Context) (*model.DiscoveryProfile, error) {
	collections := c.cfg.Collections
	if len(collections) == 0 {
		collections = []string{"wishlist"}
	}

	return &model.DiscoveryProfile{
		Version:     "2026-01-11",
		StoreDomain: c.cfg.StoreDomain,
		StoreName:   c.cfg.StoreName,
		Services: map[string][]model.Service{
			"storefront": {
				{Version: "2026-01-11", Transport: "rest", Endpoint: c.cfg.GatewayBaseURL},
				{Version: "2026-01-11", Transport: "mcp", Endpoint: c.cfg.GatewayBaseURL + "/mcp"},
			},
		},
		Collections: collections,
	}, nil
}

// GetProduct retrieves one product by ID.
func (c *Client) GetProduct(ctx context.Context, productID string) (*model.Product, error) {
	if productID == "" {
		return nil, model.NewValidationError("product_id", "must not be empty")
	}

	var ap apiProduct
	path := "/products/" + url.PathEscape(productID)
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &ap); err != nil {
		return nil, err
	}

	return transformProduct(&ap), nil
}

// ListRules fetches the published pricing rules. Malformed rules are
// dropped with a warning; pricing degrades rather than fails.
func (c *Client) ListRules(ctx context.Context) ([]model.PricingRule, error) {
	var list apiRuleList
	if err := c.doRequest(ctx, http.MethodGet, "/pricing-rules", nil, &list); err != nil {
		return nil, err
	}

	rules, dropped := transformRules(list.Rules)
	if dropped > 0 {
		c.logger.Warn("dropped malformed pricing rules",
			"dropped", dropped,
			"kept", len(rules))
	}

	return rules, nil
}

// ListMembers returns the item IDs in a collection.
func (c *Client) ListMembers(ctx context.Context, collectionKey string) ([]string, error) {
	if collectionKey == "" {
		return nil, model.NewValidationError("collection", "must not be empty")
	}

	var ac apiCollection
	path := "/collections/" + url.PathEscape(collectionKey)
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &ac); err != nil {
		return nil, err
	}

	return transformCollection(&ac).ItemIDs, nil
}

// AddMember inserts an item into a collection. The backend treats
// repeated adds as no-ops, so the call is idempotent.
func (c *Client) AddMember(ctx context.Context, collectionKey, itemID string) error {
	if collectionKey == "" {
		return model.NewValidationError("collection", "must not be empty")
	}
	if itemID == "" {
		return model.NewValidationError("item_id", "must not be empty")
	}

	path := "/collections/" + url.PathEscape(collectionKey) + "/items"
	return c.doRequest(ctx, http.MethodPost, path, apiMemberRequest{ID: itemID}, nil)
}

// RemoveMember deletes an item from a collection.
func (c *Client) RemoveMember(ctx context.Context, collectionKey, itemID string) error {
	if collectionKey == "" {
		return model.NewValidationError("collection", "must not be empty")
	}
	if itemID == "" {
		return model.NewValidationError("item_id", "must not be empty")
	}

	path := "/collections/" + url.PathEscape(collectionKey) + "/items/" + url.PathEscape(itemID)
	return c.doRequest(ctx, http.MethodDelete, path, nil, nil)
}

// doRequest performs one Admin API request and decodes the response
// into out (skipped when out is nil).
func (c *Client) doRequest(ctx context.Context, method, path string, body, out interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.backendURL+apiBasePath+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.NewUpstreamError("store backend", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return c.parseErrorResponse(resp.StatusCode, respBody)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("parsing response: %w", err)
		}
	}

	return nil
}

// setHeaders sets common headers. The Admin API uses Basic Auth.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.SetBasicAuth(c.apiKey, c.apiSecret)
}

// parseErrorResponse converts a backend error to an APIError.
func (c *Client) parseErrorResponse(statusCode int, body []byte) error {
	var apiErr apiErrorResponse
	json.Unmarshal(body, &apiErr) // Best effort parse

	switch statusCode {
	case http.StatusNotFound:
		return model.NewNotFoundError("resource")
	case http.StatusUnauthorized, http.StatusForbidden:
		return model.NewUnauthorizedError("store backend authentication failed")
	case http.StatusBadRequest:
		msg := apiErr.Message
		if msg == "" {
			msg = "invalid request"
		}
		return model.NewValidationError("request", msg)
	case http.StatusTooManyRequests:
		return model.NewRateLimitError("store backend")
	default:
		return model.NewUpstreamError("store backend",
			fmt.Errorf("status %d: %s - %s", statusCode, apiErr.Code, apiErr.Message))
	}
}
