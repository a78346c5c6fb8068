package handler

import (
	"net/http"

	"storefront-gateway/internal/model"
)

// handleGetCollection returns the member IDs of a collection.
// GET /collections/{key}
func (h *Handler) handleGetCollection(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	members, err := h.adapter.ListMembers(r.Context(), key)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, model.Collection{Key: key, ItemIDs: members})
}

// handleAddItem inserts an item into a collection. Idempotent: adding an
// existing member succeeds without change.
// POST /collections/{key}/items/{id}
func (h *Handler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	itemID := r.PathValue("id")

	if err := h.adapter.AddMember(r.Context(), key, itemID); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, memberResponse{Collection: key, ItemID: itemID, Member: true})
}

// handleRemoveItem deletes an item from a collection.
// DELETE /collections/{key}/items/{id}
func (h *Handler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	itemID := r.PathValue("id")

	if err := h.adapter.RemoveMember(r.Context(), key, itemID); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, memberResponse{Collection: key, ItemID: itemID, Member: false})
}

// memberResponse confirms the outcome of a membership mutation.
type memberResponse struct {
	Collection string `json:"collection"`
	ItemID     string `json:"item_id"`
	Member     bool   `json:"member"`
}
