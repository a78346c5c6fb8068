package handler

import (
	"net/http"
	"time"

	"storefront-gateway/internal/model"
	"storefront-gateway/internal/pricing"
)

// handlePriceQuote resolves the current price for a product.
// GET /products/{id}/price?as_of=RFC3339
//
// The as_of parameter pins resolution to an instant; it defaults to now.
// Rules are fetched fresh from the backend on every request - the gateway
// holds no rule state.
func (h *Handler) handlePriceQuote(w http.ResponseWriter, r *http.Request) {
	productID := r.PathValue("id")

	asOf := time.Now()
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.writeError(w, model.NewValidationError("as_of", "must be an RFC 3339 timestamp"))
			return
		}
		asOf = parsed
	}

	product, err := h.adapter.GetProduct(r.Context(), productID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	rules, err := h.adapter.ListRules(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, pricing.Quote(product, rules, asOf))
}
