package storeapi

// Wire types for the store backend's Admin API.
//
// The backend serializes prices as decimal strings and pricing rule
// scopes as loosely-typed objects, so every shape here is backend-owned
// and converted to canonical model types in transform.go.

// apiProduct is a product as returned by GET /api/products/{id}.
type apiProduct struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	CategoryID string `json:"category_id"`
	Price      string `json:"price"` // decimal string, e.g. "24.99"
	Currency   string `json:"currency"`
}

// apiRule is one entry of GET /api/pricing-rules.
//
// Scope comes back as {"type": "items"|"categories", "ids": [...]}.
// Older backends emit "products" for the type; transform.go accepts both.
type apiRule struct {
	ID         string       `json:"id"`
	Percent    float64      `json:"percent"`
	Enabled    *bool        `json:"enabled"` // absent means enabled
	Scope      apiRuleScope `json:"scope"`
	ValidFrom  string       `json:"valid_from"`  // RFC 3339 or YYYY-MM-DD, "" = unbounded
	ValidUntil string       `json:"valid_until"` // same formats
}

type apiRuleScope struct {
	Type string   `json:"type"`
	IDs  []string `json:"ids"`
}

// apiRuleList wraps the pricing rules response.
type apiRuleList struct {
	Rules []apiRule `json:"rules"`
}

// apiCollection is the response of GET /api/collections/{key}.
type apiCollection struct {
	Key     string   `json:"key"`
	ItemIDs []string `json:"item_ids"`
}

// apiMemberRequest is the body for POST /api/collections/{key}/items.
type apiMemberRequest struct {
	ID string `json:"id"`
}

// apiErrorResponse is the backend's error envelope.
type apiErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
