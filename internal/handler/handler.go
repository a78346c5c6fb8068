// Package handler provides HTTP handlers for the storefront gateway API.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"storefront-gateway/internal/adapter"
	"storefront-gateway/internal/model"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	adapter adapter.Adapter
	logger  *slog.Logger
}

// New creates a new Handler with the given adapter and logger.
func New(a adapter.Adapter, logger *slog.Logger) *Handler {
	return &Handler{
		adapter: a,
		logger:  logger,
	}
}

// RegisterRoutes registers all HTTP routes with the given ServeMux.
// Uses Go 1.22+ method routing patterns.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Discovery endpoint
	mux.HandleFunc("GET /.well-known/storefront", h.handleWellKnown)

	// REST transport - pricing
	mux.HandleFunc("GET /products/{id}/price", h.handlePriceQuote)

	// REST transport - collections
	mux.HandleFunc("GET /collections/{key}", h.handleGetCollection)
	mux.HandleFunc("POST /collections/{key}/items/{id}", h.handleAddItem)
	mux.HandleFunc("DELETE /collections/{key}/items/{id}", h.handleRemoveItem)

	// MCP transport - JSON-RPC endpoint using official MCP SDK
	mux.Handle("/mcp", h.NewMCPHandler())

	// Health check
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("GET /healthz", h.handleHealth)
}

// === Response Helpers ===

// writeJSON sends a JSON response with the given status code.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// writeError sends an error response, extracting status/code from APIError if present.
// Uses errors.As() to unwrap error chains (e.g., fmt.Errorf wrapping).
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError

	if errors.As(err, &apiErr) {
		// Found APIError in error chain - use it
	} else {
		// Wrap unexpected errors
		apiErr = &model.APIError{
			Code:       "INTERNAL_ERROR",
			Message:    "an internal error occurred",
			StatusCode: http.StatusInternalServerError,
		}
		h.logger.Error("internal error", slog.String("error", err.Error()))
	}

	h.writeJSON(w, apiErr.StatusCode, errorResponse{
		Error: errorBody{
			Code:    apiErr.Code,
			Message: apiErr.Message,
		},
	})
}

// errorResponse is the JSON structure for error responses.
type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MaxRequestBodySize limits JSON request bodies to 1MB to prevent DoS.
const MaxRequestBodySize = 1 << 20 // 1MB
