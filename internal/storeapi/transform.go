package storeapi

import (
	"time"

	"storefront-gateway/internal/model"
)

// transformProduct converts a backend product to the canonical shape.
// The backend sends decimal-string prices; canonical prices are minor units.
func transformProduct(ap *apiProduct) *model.Product {
	return &model.Product{
		ID:         ap.ID,
		CategoryID: ap.CategoryID,
		Name:       ap.Name,
		Price:      model.ParseCents(ap.Price),
		Currency:   ap.Currency,
	}
}

// transformRules converts backend pricing rules to canonical rules.
// Malformed entries (missing ID, unknown scope type, unparseable dates)
// are dropped rather than failing the whole list; a single bad rule must
// never take pricing down. Returns the dropped count for logging.
func transformRules(apiRules []apiRule) ([]model.PricingRule, int) {
	rules := make([]model.PricingRule, 0, len(apiRules))
	dropped := 0

	for i := range apiRules {
		rule, ok := transformRule(&apiRules[i])
		if !ok {
			dropped++
			continue
		}
		rules = append(rules, rule)
	}

	return rules, dropped
}

func transformRule(ar *apiRule) (model.PricingRule, bool) {
	if ar.ID == "" {
		return model.PricingRule{}, false
	}

	scope, ok := transformScope(ar.Scope)
	if !ok {
		return model.PricingRule{}, false
	}

	validFrom, ok := parseRuleDate(ar.ValidFrom)
	if !ok {
		return model.PricingRule{}, false
	}
	validUntil, ok := parseRuleDate(ar.ValidUntil)
	if !ok {
		return model.PricingRule{}, false
	}

	return model.PricingRule{
		ID:         ar.ID,
		Percent:    ar.Percent,
		Disabled:   ar.Enabled != nil && !*ar.Enabled,
		Scope:      scope,
		ValidFrom:  validFrom,
		ValidUntil: validUntil,
	}, true
}

func transformScope(as apiRuleScope) (model.RuleScope, bool) {
	switch as.Type {
	case "items", "products":
		return model.NewItemScope(as.IDs...), true
	case "categories":
		return model.NewCategoryScope(as.IDs...), true
	default:
		return model.RuleScope{}, false
	}
}

// parseRuleDate parses a rule validity bound. The backend emits either
// full RFC 3339 timestamps or bare dates; an empty string is an open bound.
func parseRuleDate(s string) (*time.Time, bool) {
	if s == "" {
		return nil, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return &t, true
	}
	return nil, false
}

// transformCollection converts a backend collection response.
func transformCollection(ac *apiCollection) *model.Collection {
	items := ac.ItemIDs
	if items == nil {
		items = []string{}
	}
	return &model.Collection{Key: ac.Key, ItemIDs: items}
}
