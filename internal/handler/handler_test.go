package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront-gateway/internal/adapter"
	"storefront-gateway/internal/model"
)

func testHandler(mock *adapter.Mock) (*Handler, *http.ServeMux) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(mock, logger)
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return h, mux
}

func getErrorCode(body []byte) string {
	var resp errorResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return ""
	}
	return resp.Error.Code
}

func TestHandleHealth(t *testing.T) {
	_, mux := testHandler(&adapter.Mock{})

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp healthResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Status != "ok" {
		t.Errorf("Status = %s, want ok", resp.Status)
	}
}

func TestHandleWellKnown(t *testing.T) {
	mock := &adapter.Mock{
		GetProfileFunc: func(ctx context.Context) (*model.DiscoveryProfile, error) {
			return &model.DiscoveryProfile{
				Version:     "2026-01-11",
				StoreName:   "Example Store",
				Collections: []string{"wishlist"},
			}, nil
		},
	}

	_, mux := testHandler(mock)

	req := httptest.NewRequest("GET", "/.well-known/storefront", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Status = %d, want %d", w.Code, http.StatusOK)
	}

	var profile model.DiscoveryProfile
	json.NewDecoder(w.Body).Decode(&profile)
	if profile.StoreName != "Example Store" {
		t.Errorf("StoreName = %s, want Example Store", profile.StoreName)
	}
}

func TestHandlePriceQuote(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	mock := &adapter.Mock{
		GetProductFunc: func(ctx context.Context, productID string) (*model.Product, error) {
			if productID != "p1" {
				t.Errorf("productID = %q, want p1", productID)
			}
			return &model.Product{ID: "p1", CategoryID: "footwear", Price: 10000, Currency: "USD"}, nil
		},
		ListRulesFunc: func(ctx context.Context) ([]model.PricingRule, error) {
			return []model.PricingRule{
				{ID: "spring", Percent: 20, Scope: model.NewItemScope("p1"), ValidFrom: &from, ValidUntil: &until},
			}, nil
		},
	}

	_, mux := testHandler(mock)

	req := httptest.NewRequest("GET", "/products/p1/price?as_of=2026-03-15T12:00:00Z", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var quote model.PriceQuote
	json.NewDecoder(w.Body).Decode(&quote)
	if quote.FinalPrice != 8000 {
		t.Errorf("FinalPrice = %d, want 8000", quote.FinalPrice)
	}
	if quote.DiscountLabel != "-20%" {
		t.Errorf("DiscountLabel = %q, want -20%%", quote.DiscountLabel)
	}
	if quote.RuleID != "spring" {
		t.Errorf("RuleID = %q, want spring", quote.RuleID)
	}
}

func TestHandlePriceQuoteOutsideWindow(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	mock := &adapter.Mock{
		GetProductFunc: func(ctx context.Context, productID string) (*model.Product, error) {
			return &model.Product{ID: "p1", Price: 10000, Currency: "USD"}, nil
		},
		ListRulesFunc: func(ctx context.Context) ([]model.PricingRule, error) {
			return []model.PricingRule{
				{ID: "spring", Percent: 20, Scope: model.NewItemScope("p1"), ValidFrom: &from, ValidUntil: &until},
			}, nil
		},
	}

	_, mux := testHandler(mock)

	req := httptest.NewRequest("GET", "/products/p1/price?as_of=2026-04-01T00:00:00Z", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	var quote model.PriceQuote
	json.NewDecoder(w.Body).Decode(&quote)
	if quote.FinalPrice != 10000 {
		t.Errorf("FinalPrice = %d, want full price 10000", quote.FinalPrice)
	}
	if quote.DiscountPercent != 0 {
		t.Errorf("DiscountPercent = %v, want 0", quote.DiscountPercent)
	}
}

func TestHandlePriceQuoteBadAsOf(t *testing.T) {
	_, mux := testHandler(&adapter.Mock{})

	req := httptest.NewRequest("GET", "/products/p1/price?as_of=tomorrow", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if code := getErrorCode(w.Body.Bytes()); code != "VALIDATION_ERROR" {
		t.Errorf("error code = %q, want VALIDATION_ERROR", code)
	}
}

func TestHandlePriceQuoteProductNotFound(t *testing.T) {
	mock := &adapter.Mock{
		GetProductFunc: func(ctx context.Context, productID string) (*model.Product, error) {
			return nil, model.NewNotFoundError("product")
		},
	}

	_, mux := testHandler(mock)

	req := httptest.NewRequest("GET", "/products/missing/price", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Status = %d, want %d", w.Code, http.StatusNotFound)
	}
	if code := getErrorCode(w.Body.Bytes()); code != "NOT_FOUND" {
		t.Errorf("error code = %q, want NOT_FOUND", code)
	}
}

func TestHandleGetCollection(t *testing.T) {
	mock := &adapter.Mock{
		ListMembersFunc: func(ctx context.Context, collectionKey string) ([]string, error) {
			if collectionKey != "wishlist" {
				t.Errorf("collectionKey = %q, want wishlist", collectionKey)
			}
			return []string{"p1", "p2"}, nil
		},
	}

	_, mux := testHandler(mock)

	req := httptest.NewRequest("GET", "/collections/wishlist", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
	}

	var coll model.Collection
	json.NewDecoder(w.Body).Decode(&coll)
	if coll.Key != "wishlist" || len(coll.ItemIDs) != 2 {
		t.Errorf("collection = %+v, want wishlist with 2 items", coll)
	}
}

func TestHandleAddItem(t *testing.T) {
	called := false
	mock := &adapter.Mock{
		AddMemberFunc: func(ctx context.Context, collectionKey, itemID string) error {
			called = true
			if collectionKey != "wishlist" || itemID != "p9" {
				t.Errorf("AddMember(%q, %q), want wishlist/p9", collectionKey, itemID)
			}
			return nil
		},
	}

	_, mux := testHandler(mock)

	req := httptest.NewRequest("POST", "/collections/wishlist/items/p9", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if !called {
		t.Fatal("AddMember was not called")
	}
	if w.Code != http.StatusCreated {
		t.Errorf("Status = %d, want %d", w.Code, http.StatusCreated)
	}

	var resp memberResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if !resp.Member {
		t.Error("Member = false, want true")
	}
}

func TestHandleRemoveItem(t *testing.T) {
	mock := &adapter.Mock{
		RemoveMemberFunc: func(ctx context.Context, collectionKey, itemID string) error {
			if collectionKey != "wishlist" || itemID != "p9" {
				t.Errorf("RemoveMember(%q, %q), want wishlist/p9", collectionKey, itemID)
			}
			return nil
		},
	}

	_, mux := testHandler(mock)

	req := httptest.NewRequest("DELETE", "/collections/wishlist/items/p9", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp memberResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Member {
		t.Error("Member = true, want false")
	}
}

func TestHandleAddItemUpstreamError(t *testing.T) {
	mock := &adapter.Mock{
		AddMemberFunc: func(ctx context.Context, collectionKey, itemID string) error {
			return model.NewUpstreamError("store backend", context.DeadlineExceeded)
		},
	}

	_, mux := testHandler(mock)

	req := httptest.NewRequest("POST", "/collections/wishlist/items/p9", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Errorf("Status = %d, want %d", w.Code, http.StatusBadGateway)
	}
	if code := getErrorCode(w.Body.Bytes()); code != "UPSTREAM_ERROR" {
		t.Errorf("error code = %q, want UPSTREAM_ERROR", code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	_, mux := testHandler(&adapter.Mock{})

	req := httptest.NewRequest("PUT", "/collections/wishlist", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Status = %d, want %d", w.Code, http.StatusMethodNotAllowed)
	}
}
