package membership

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// =============================================================================
// OPTIMISTIC TOGGLE STATE MACHINE
// =============================================================================
//
// Each item ID moves through: Idle → Pending → {Settled | RolledBack}.
//
//   Idle:       ID not pending; membership reflects the server set,
//               possibly overridden by a not-yet-reconciled optimistic
//               entry from an earlier toggle.
//   Pending:    A toggle flipped the optimistic bit and the backend call
//               is in flight. A second Toggle for the same ID is a
//               silent no-op; this is the per-key mutual exclusion.
//   Settled:    Backend confirmed. The optimistic entry stays until a
//               later SetServer shows the server caught up, which avoids
//               a visible flicker if a stale background refresh lands
//               between settle and catch-up.
//   RolledBack: Backend failed. The optimistic entry reverts to its
//               pre-toggle value and the failure surfaces to the caller.
//
// SetServer never clears an optimistic entry while its ID is pending,
// so a slow refresh cannot clobber intent the server hasn't seen yet.
//
// Toggles on different IDs are independent and may be in flight
// simultaneously; only same-ID toggles are serialized.
// =============================================================================

// Reconciler owns the membership state for one collection. It must not
// be shared across collections; create one instance per logical
// collection (wishlist, saved-for-later, etc.).
//
// The guard state (pending check + optimistic flip) is updated under a
// single mutex acquisition before the backend call is issued, so there
// is no check/use window between the duplicate-toggle test and the flip.
type Reconciler struct {
	svc        Service
	collection string

	mu         sync.Mutex
	server     map[string]struct{}
	optimistic map[string]bool // item ID → locally intended membership
	pending    map[string]struct{}
	closed     bool
}

// New creates a Reconciler for the named collection. The local state
// starts empty; call Refresh or SetServer to seed the server set.
func New(svc Service, collection string) *Reconciler {
	return &Reconciler{
		svc:        svc,
		collection: collection,
		server:     make(map[string]struct{}),
		optimistic: make(map[string]bool),
		pending:    make(map[string]struct{}),
	}
}

// Toggle flips the item's membership, optimistically first, then against
// the backend. Returns (true, nil) once the backend confirms.
//
// A toggle for an ID that is already pending is a silent no-op and
// returns (false, nil). A backend failure rolls the optimistic flip back
// and returns (false, err). After Close, Toggle is a no-op.
func (r *Reconciler) Toggle(ctx context.Context, itemID string) (bool, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return false, nil
	}
	if _, inFlight := r.pending[itemID]; inFlight {
		r.mu.Unlock()
		return false, nil
	}

	wasMember := r.effectiveLocked(itemID)
	prev, hadIntent := r.optimistic[itemID]

	// Optimistic write: visible to Membership() before the call resolves.
	r.optimistic[itemID] = !wasMember
	r.pending[itemID] = struct{}{}
	r.mu.Unlock()

	var err error
	if wasMember {
		err = r.svc.Remove(ctx, r.collection, itemID)
	} else {
		err = r.svc.Add(ctx, r.collection, itemID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		// Instance torn down while the call was in flight; its state is
		// discarded, so the completion must not touch it.
		return false, nil
	}

	delete(r.pending, itemID)

	if err != nil {
		// RolledBack: restore the pre-toggle intent.
		if hadIntent {
			r.optimistic[itemID] = prev
		} else {
			delete(r.optimistic, itemID)
		}
		return false, fmt.Errorf("toggling %q in %s: %w", itemID, r.collection, err)
	}

	// Settled: keep the optimistic entry until SetServer confirms.
	return true, nil
}

// Membership returns the effective member set (server state with
// optimistic intent applied), sorted for deterministic rendering.
func (r *Reconciler) Membership() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.server)+len(r.optimistic))
	for id := range r.server {
		if want, overridden := r.optimistic[id]; !overridden || want {
			ids = append(ids, id)
		}
	}
	for id, want := range r.optimistic {
		if _, onServer := r.server[id]; !onServer && want {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Contains reports effective membership for a single item.
func (r *Reconciler) Contains(itemID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.effectiveLocked(itemID)
}

// Pending reports whether a toggle for the item is in flight.
func (r *Reconciler) Pending(itemID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.pending[itemID]
	return ok
}

// SetServer replaces the authoritative set wholesale, then reconciles:
// optimistic entries the server now agrees with are cleared, except for
// IDs with a toggle still pending.
func (r *Reconciler) SetServer(itemIDs []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}

	r.server = make(map[string]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		r.server[id] = struct{}{}
	}

	for id, want := range r.optimistic {
		if _, inFlight := r.pending[id]; inFlight {
			continue
		}
		_, onServer := r.server[id]
		if onServer == want {
			delete(r.optimistic, id)
		}
	}
}

// Refresh fetches the authoritative set and applies it via SetServer.
func (r *Reconciler) Refresh(ctx context.Context) error {
	ids, err := r.svc.Fetch(ctx, r.collection)
	if err != nil {
		return fmt.Errorf("refreshing %s: %w", r.collection, err)
	}
	r.SetServer(ids)
	return nil
}

// Close discards the instance. In-flight toggle completions and later
// SetServer calls become no-ops.
func (r *Reconciler) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
}

// effectiveLocked computes membership with the optimistic override
// applied. Caller must hold mu.
func (r *Reconciler) effectiveLocked(itemID string) bool {
	if want, ok := r.optimistic[itemID]; ok {
		return want
	}
	_, ok := r.server[itemID]
	return ok
}
