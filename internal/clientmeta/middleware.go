package clientmeta

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
)

// contextKey is a private type for context values set by this package.
type contextKey struct{}

// clientInfoKey stores the parsed ClientInfo in the request context.
var clientInfoKey = contextKey{}

// Middleware creates HTTP middleware that identifies the calling app.
// Parses the Shop-Client header, enforces the minimum supported version,
// and stores the ClientInfo in the request context for handlers.
//
// The header is required on all requests except exempt paths. Requests
// without it are rejected with 400; versions below the minimum with 426.
func Middleware(minVersion string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Discovery, health, and MCP don't carry the header: discovery
			// must work before a client knows what to send, health checks
			// are infrastructure, and MCP callers identify in-band.
			if isExemptPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get(ShopClientHeader)
			if header == "" {
				writeClientError(w, http.StatusBadRequest, "shop_client_required",
					"Shop-Client header is required for all requests")
				return
			}

			info, err := ParseShopClientHeader(header)
			if err != nil {
				logger.Warn("invalid Shop-Client header",
					slog.String("header", header),
					slog.String("error", err.Error()))
				writeClientError(w, http.StatusBadRequest, "shop_client_invalid",
					"Invalid Shop-Client header: "+err.Error())
				return
			}

			if !MeetsMinimum(info.Version, minVersion) {
				logger.Info("client below minimum version",
					slog.String("app", info.App),
					slog.String("version", info.Version),
					slog.String("minimum", minVersion))
				writeClientError(w, http.StatusUpgradeRequired, "app_upgrade_required",
					"App version "+info.Version+" is no longer supported; minimum is "+minVersion)
				return
			}

			reqCtx := context.WithValue(r.Context(), clientInfoKey, info)
			next.ServeHTTP(w, r.WithContext(reqCtx))
		})
	}
}

// isExemptPath returns true for paths that don't require the Shop-Client header.
func isExemptPath(path string) bool {
	switch {
	case path == "/.well-known/storefront":
		return true
	case path == "/health" || path == "/healthz":
		return true
	case path == "/mcp":
		return true
	default:
		return false
	}
}

// writeClientError writes the standard error envelope.
func writeClientError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}{}
	resp.Error.Code = code
	resp.Error.Message = message

	json.NewEncoder(w).Encode(resp)
}

// FromContext retrieves the ClientInfo stored by Middleware.
// Returns nil if the request came through an exempt path.
func FromContext(ctx context.Context) *ClientInfo {
	v := ctx.Value(clientInfoKey)
	if v == nil {
		return nil
	}
	return v.(*ClientInfo)
}
