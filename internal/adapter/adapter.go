// Package adapter defines the interface to the remote commerce backend.
// Adapters translate backend-specific APIs into the canonical model.
package adapter

import (
	"context"

	"storefront-gateway/internal/model"
)

// Adapter abstracts the commerce backend behind a unified interface.
// The gateway is stateless; every call goes to the backend.
//
// All methods return canonical model types ready for API serialization.
// Backend-specific error handling is encapsulated within each
// implementation, surfacing as model.APIError values.
type Adapter interface {
	// GetProfile returns the discovery profile for this store.
	// Served by the /.well-known/storefront endpoint.
	GetProfile(ctx context.Context) (*model.DiscoveryProfile, error)

	// GetProduct retrieves one product by ID.
	GetProduct(ctx context.Context, productID string) (*model.Product, error)

	// ListRules returns the currently published pricing rules.
	// Fetched once per screen session by callers; rules are read-only.
	ListRules(ctx context.Context) ([]model.PricingRule, error)

	// ListMembers returns the member IDs of a collection.
	ListMembers(ctx context.Context, collectionKey string) ([]string, error)

	// AddMember inserts an item into a collection. Idempotent.
	AddMember(ctx context.Context, collectionKey, itemID string) error

	// RemoveMember deletes an item from a collection.
	RemoveMember(ctx context.Context, collectionKey, itemID string) error
}

// Mock implements Adapter for testing.
// Each method can be configured via function fields.
type Mock struct {
	GetProfileFunc   func(ctx context.Context) (*model.DiscoveryProfile, error)
	GetProductFunc   func(ctx context.Context, productID string) (*model.Product, error)
	ListRulesFunc    func(ctx context.Context) ([]model.PricingRule, error)
	ListMembersFunc  func(ctx context.Context, collectionKey string) ([]string, error)
	AddMemberFunc    func(ctx context.Context, collectionKey, itemID string) error
	RemoveMemberFunc func(ctx context.Context, collectionKey, itemID string) error
}

// GetProfile calls the configured GetProfileFunc or returns a default profile.
func (m *Mock) GetProfile(ctx context.Context) (*model.DiscoveryProfile, error) {
	if m.GetProfileFunc != nil {
		return m.GetProfileFunc(ctx)
	}
	return &model.DiscoveryProfile{Version: "2026-01-11", StoreName: "mock store"}, nil
}

// GetProduct calls the configured GetProductFunc or returns a not-found error.
func (m *Mock) GetProduct(ctx context.Context, productID string) (*model.Product, error) {
	if m.GetProductFunc != nil {
		return m.GetProductFunc(ctx, productID)
	}
	return nil, model.NewNotFoundError("product")
}

// ListRules calls the configured ListRulesFunc or returns no rules.
func (m *Mock) ListRules(ctx context.Context) ([]model.PricingRule, error) {
	if m.ListRulesFunc != nil {
		return m.ListRulesFunc(ctx)
	}
	return []model.PricingRule{}, nil
}

// ListMembers calls the configured ListMembersFunc or returns an empty set.
func (m *Mock) ListMembers(ctx context.Context, collectionKey string) ([]string, error) {
	if m.ListMembersFunc != nil {
		return m.ListMembersFunc(ctx, collectionKey)
	}
	return []string{}, nil
}

// AddMember calls the configured AddMemberFunc or succeeds.
func (m *Mock) AddMember(ctx context.Context, collectionKey, itemID string) error {
	if m.AddMemberFunc != nil {
		return m.AddMemberFunc(ctx, collectionKey, itemID)
	}
	return nil
}

// RemoveMember calls the configured RemoveMemberFunc or succeeds.
func (m *Mock) RemoveMember(ctx context.Context, collectionKey, itemID string) error {
	if m.RemoveMemberFunc != nil {
		return m.RemoveMemberFunc(ctx, collectionKey, itemID)
	}
	return nil
}
