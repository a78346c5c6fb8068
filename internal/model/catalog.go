// Package model defines canonical data structures shared by the gateway,
// the backend adapters, and the client-side pricing/membership logic.
package model

import "time"

// === Catalog Types ===

// Product is the canonical product shape used for pricing.
// Price is in minor currency units (cents), per the money conventions
// in money.go.
type Product struct {
	ID         string `json:"id"`
	CategoryID string `json:"category_id,omitempty"`
	Name       string `json:"name,omitempty"`
	Price      int64  `json:"price"`
	Currency   string `json:"currency,omitempty"`
}

// ScopeKind discriminates the two pricing rule scope variants.
type ScopeKind string

const (
	// ScopeItems targets an explicit set of product IDs.
	ScopeItems ScopeKind = "items"

	// ScopeCategories targets every product in a set of categories.
	ScopeCategories ScopeKind = "categories"
)

// RuleScope is the tagged variant describing which products a rule covers.
// A zero-value scope (empty Kind) covers nothing; rules carrying one are
// treated as malformed and skipped during resolution.
type RuleScope struct {
	Kind ScopeKind           `json:"kind"`
	IDs  map[string]struct{} `json:"-"`
}

// NewItemScope builds a scope covering the given product IDs.
func NewItemScope(itemIDs ...string) RuleScope {
	return RuleScope{Kind: ScopeItems, IDs: idSet(itemIDs)}
}

// NewCategoryScope builds a scope covering the given category IDs.
func NewCategoryScope(categoryIDs ...string) RuleScope {
	return RuleScope{Kind: ScopeCategories, IDs: idSet(categoryIDs)}
}

// Valid reports whether the scope can be evaluated at all.
func (s RuleScope) Valid() bool {
	switch s.Kind {
	case ScopeItems, ScopeCategories:
		return s.IDs != nil
	default:
		return false
	}
}

// Matches reports whether the scope covers the given product.
// An invalid scope matches nothing.
func (s RuleScope) Matches(p *Product) bool {
	if p == nil || !s.Valid() {
		return false
	}
	switch s.Kind {
	case ScopeItems:
		_, ok := s.IDs[p.ID]
		return ok
	case ScopeCategories:
		_, ok := s.IDs[p.CategoryID]
		return ok
	default:
		return false
	}
}

func idSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id != "" {
			set[id] = struct{}{}
		}
	}
	return set
}

// PricingRule is a backend-defined, time-bounded discount.
// Rules are fetched read-only per session and never mutated locally.
type PricingRule struct {
	ID       string    `json:"id"`
	Percent  float64   `json:"percent"`
	Disabled bool      `json:"disabled,omitempty"`
	Scope    RuleScope `json:"scope"`

	// Validity window, inclusive on both ends. A nil bound is unbounded
	// on that side. Day-level granularity: ValidFrom counts from the
	// start of its day, ValidUntil through the end of its day.
	ValidFrom  *time.Time `json:"valid_from,omitempty"`
	ValidUntil *time.Time `json:"valid_until,omitempty"`
}

// PriceQuote is the resolved price for one product at one instant.
// This is the primary response type for price operations.
type PriceQuote struct {
	ProductID       string  `json:"product_id"`
	Currency        string  `json:"currency,omitempty"`
	OriginalPrice   int64   `json:"original_price"`
	DiscountPercent float64 `json:"discount_percent"`
	FinalPrice      int64   `json:"final_price"`
	DiscountLabel   string  `json:"discount_label,omitempty"`
	RuleID          string  `json:"rule_id,omitempty"`
}

// === Collection Types ===

// Collection is a named set of item IDs associated with a shopper,
// e.g. a wishlist or a "saved for later" list.
type Collection struct {
	Key     string   `json:"key"`
	ItemIDs []string `json:"item_ids"`
}

// === Discovery Types ===

// DiscoveryProfile is served at /.well-known/storefront so clients can
// locate transports and learn the store identity before calling in.
type DiscoveryProfile struct {
	Version     string               `json:"version"`
	StoreDomain string               `json:"store_domain,omitempty"`
	StoreName   string               `json:"store_name,omitempty"`
	Services    map[string][]Service `json:"services,omitempty"`
	Collections []string             `json:"collections,omitempty"`
}

// Service represents a transport binding advertised in the discovery profile.
type Service struct {
	Version   string `json:"version"`
	Transport string `json:"transport"` // "rest" or "mcp"
	Endpoint  string `json:"endpoint,omitempty"`
}
