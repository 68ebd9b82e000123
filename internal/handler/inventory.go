package handler

import (
	"encoding/json"
	"net/http"

	"mc-bridge-api/internal/model"
	"mc-bridge-api/internal/repository"
	"mc-bridge-api/pkg/apierror"
	"mc-bridge-api/pkg/response"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// InventoryHandler handles player inventory sync endpoints.
type InventoryHandler struct {
	inventory repository.InventoryRepository
}

// NewInventoryHandler creates a new inventory handler.
func NewInventoryHandler(inventory repository.InventoryRepository) *InventoryHandler {
	return &InventoryHandler{inventory: inventory}
}

// GetInventory handles GET /api/mc/inventory/{mc_uuid}.
func (h *InventoryHandler) GetInventory(w http.ResponseWriter, r *http.Request) {
	mcUUID := chi.URLParam(r, "mc_uuid")

	items, err := h.inventory.GetItems(r.Context(), mcUUID)
	if err != nil {
		logrus.WithError(err).Error("failed to get inventory")
		response.Error(w, apierror.InternalError(""))
		return
	}

	if items == nil {
		items = []model.InventoryItem{}
	}
	response.OK(w, items)
}

type putInventoryItem struct {
	ItemID   string          `json:"item_id"`
	ItemName string          `json:"item_name"`
	Quantity *int64          `json:"quantity"`
	Metadata json.RawMessage `json:"metadata"`
}

type putInventoryRequest struct {
	Items *[]putInventoryItem `json:"items"`
}

// PutInventory handles PUT /api/mc/inventory/{mc_uuid} - full replacement
// of a player's item set in one atomic batch.
func (h *InventoryHandler) PutInventory(w http.ResponseWriter, r *http.Request) {
	mcUUID := chi.URLParam(r, "mc_uuid")

	var req putInventoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("Invalid JSON body"))
		return
	}
	if req.Items == nil {
		response.Error(w, apierror.BadRequest("items must be an array"))
		return
	}

	items := make([]model.InventoryItem, 0, len(*req.Items))
	for _, item := range *req.Items {
		if item.ItemID == "" {
			response.Error(w, apierror.BadRequest("Missing item_id"))
			return
		}
		quantity := int64(1)
		if item.Quantity != nil {
			quantity = *item.Quantity
		}
		name := item.ItemName
		if name == "" {
			name = item.ItemID
		}
		items = append(items, model.InventoryItem{
			ItemID:   item.ItemID,
			ItemName: name,
			Quantity: quantity,
			Metadata: item.Metadata,
		})
	}

	if err := h.inventory.ReplaceAll(r.Context(), mcUUID, items); err != nil {
		logrus.WithError(err).Error("failed to replace inventory")
		response.Error(w, apierror.InternalError(""))
		return
	}

	response.OK(w, map[string]int{"count": len(items)})
}

type patchItemRequest struct {
	Quantity *int64          `json:"quantity"`
	ItemName string          `json:"item_name"`
	Metadata json.RawMessage `json:"metadata"`
}

// PatchInventoryItem handles PATCH /api/mc/inventory/{mc_uuid}/{item_id}.
// A quantity of zero or below deletes the item instead of storing it.
func (h *InventoryHandler) PatchInventoryItem(w http.ResponseWriter, r *http.Request) {
	mcUUID := chi.URLParam(r, "mc_uuid")
	itemID := chi.URLParam(r, "item_id")

	var req patchItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("Invalid JSON body"))
		return
	}
	if req.Quantity == nil {
		response.Error(w, apierror.BadRequest("Missing quantity"))
		return
	}

	name := req.ItemName
	if name == "" {
		name = itemID
	}

	deleted, err := h.inventory.PatchItem(r.Context(), mcUUID, model.InventoryItem{
		ItemID:   itemID,
		ItemName: name,
		Quantity: *req.Quantity,
		Metadata: req.Metadata,
	})
	if err != nil {
		logrus.WithError(err).Error("failed to patch inventory item")
		response.Error(w, apierror.InternalError(""))
		return
	}

	if deleted {
		response.OK(w, map[string]bool{"deleted": true})
		return
	}
	response.Success(w)
}
