// Package membership keeps a shopper-facing view of a server-backed item
// collection (wishlist, saved-for-later) in sync with the backend while
// applying toggles optimistically, so callers can render membership
// immediately and reconcile once the authoritative set arrives.
package membership

import "context"

// Service is the backend port for collection membership operations.
// Implementations talk to the commerce backend; failures surface as
// ordinary errors and trigger rollback in the Reconciler.
type Service interface {
	// Add inserts an item into the collection (idempotent on the backend).
	Add(ctx context.Context, collection, itemID string) error

	// Remove deletes an item from the collection.
	Remove(ctx context.Context, collection, itemID string) error

	// Fetch returns the authoritative member set.
	Fetch(ctx context.Context, collection string) ([]string, error)
}

// MockService implements Service for testing.
// Each method can be configured via function fields; unset methods
// succeed (Fetch returns an empty set).
type MockService struct {
	AddFunc    func(ctx context.Context, collection, itemID string) error
	RemoveFunc func(ctx context.Context, collection, itemID string) error
	FetchFunc  func(ctx context.Context, collection string) ([]string, error)
}

// Add calls the configured AddFunc or succeeds.
func (m *MockService) Add(ctx context.Context, collection, itemID string) error {
	if m.AddFunc != nil {
		return m.AddFunc(ctx, collection, itemID)
	}
	return nil
}

// Remove calls the configured RemoveFunc or succeeds.
func (m *MockService) Remove(ctx context.Context, collection, itemID string) error {
	if m.RemoveFunc != nil {
		return m.RemoveFunc(ctx, collection, itemID)
	}
	return nil
}

// Fetch calls the configured FetchFunc or returns an empty set.
func (m *MockService) Fetch(ctx context.Context, collection string) ([]string, error) {
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, collection)
	}
	return []string{}, nil
}
