// Package pricing resolves the best applicable discount for a product
// from a set of time-bounded pricing rules. All functions are pure; the
// caller fetches rules (once per session) and passes them in.
package pricing

import (
	"fmt"
	"math"
	"time"

	"storefront-gateway/internal/model"
)

// Resolve returns the highest discount percentage among the rules that
// apply to the product at the given instant, or 0 if none applies.
//
// A rule is skipped when it is disabled, carries a non-positive percent,
// has a scope that cannot be evaluated, falls outside its validity
// window, or does not cover the product. A single bad rule never aborts
// the scan; the remaining rules are still considered.
//
// When several rules apply, the maximum percent wins. Order is otherwise
// irrelevant since only the numeric maximum matters.
func Resolve(product *model.Product, rules []model.PricingRule, asOf time.Time) float64 {
	_, percent := ResolveRule(product, rules, asOf)
	return percent
}

// ResolveRule is Resolve plus the ID of the winning rule.
// Returns ("", 0) when no rule applies. Ties keep the first-encountered
// maximum.
func ResolveRule(product *model.Product, rules []model.PricingRule, asOf time.Time) (string, float64) {
	if product == nil || len(rules) == 0 {
		return "", 0
	}

	bestID := ""
	best := 0.0
	for _, rule := range rules {
		if rule.Disabled || rule.Percent <= 0 {
			continue
		}
		if !activeAt(&rule, asOf) {
			continue
		}
		if !rule.Scope.Matches(product) {
			continue
		}
		if rule.Percent > best {
			bestID = rule.ID
			best = rule.Percent
		}
	}
	return bestID, best
}

// activeAt reports whether asOf falls inside the rule's validity window.
// Both bounds are inclusive at day granularity: ValidFrom counts from the
// start of its day, ValidUntil through the end of its day. A nil bound is
// unbounded on that side. Normalization uses asOf's location, matching
// how the bounds were entered store-local.
func activeAt(rule *model.PricingRule, asOf time.Time) bool {
	day := startOfDay(asOf)
	if rule.ValidFrom != nil && day.Before(startOfDay(rule.ValidFrom.In(asOf.Location()))) {
		return false
	}
	if rule.ValidUntil != nil && asOf.After(endOfDay(rule.ValidUntil.In(asOf.Location()))) {
		return false
	}
	return true
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999_000_000, t.Location())
}

// ApplyDiscount returns the price after taking percent off, in minor
// units. A non-positive percent leaves the price unchanged. Rounds to
// the nearest cent.
func ApplyDiscount(price int64, percent float64) int64 {
	if percent <= 0 {
		return price
	}
	return price - int64(math.Round(float64(price)*percent/100))
}

// FormatLabel renders a discount percent as a short badge label.
// Returns "" for a non-positive percent, else e.g. "-25%".
// Fractional percents round to the nearest integer for display.
func FormatLabel(percent float64) string {
	if percent <= 0 {
		return ""
	}
	return fmt.Sprintf("-%d%%", int(math.Round(percent)))
}

// Quote assembles a full price quote for the product: original price,
// winning discount, final price, and display label.
func Quote(product *model.Product, rules []model.PricingRule, asOf time.Time) *model.PriceQuote {
	if product == nil {
		return nil
	}
	ruleID, percent := ResolveRule(product, rules, asOf)
	return &model.PriceQuote{
		ProductID:       product.ID,
		Currency:        product.Currency,
		OriginalPrice:   product.Price,
		DiscountPercent: percent,
		FinalPrice:      ApplyDiscount(product.Price, percent),
		DiscountLabel:   FormatLabel(percent),
		RuleID:          ruleID,
	}
}
