package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/faultmesh/faultmesh/internal/api/models"
	"github.com/faultmesh/faultmesh/internal/api/response"
	"github.com/faultmesh/faultmesh/internal/inventory"
)

// InventoryHandler exposes the inventory endpoints.
type InventoryHandler struct {
	service *inventory.Service
	log     zerolog.Logger
}

// NewInventoryHandler creates a new InventoryHandler.
func NewInventoryHandler(service *inventory.Service, log zerolog.Logger) *InventoryHandler {
	return &InventoryHandler{service: service, log: log}
}

// List handles GET /inventory.
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if products == nil {
		products = []inventory.Product{}
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"items": products})
}

// Get handles GET /inventory/{itemID}.
func (h *InventoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")

	product, err := h.service.Get(r.Context(), itemID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, product)
}

// Reserve handles POST /inventory/reserve.
func (h *InventoryHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	var input models.ReserveRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	result, err := h.service.Reserve(r.Context(), input.ItemID, input.Quantity)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, map[string]any{
		"success":           true,
		"item_id":           result.ItemID,
		"reserved_quantity": result.Reserved,
		"remaining_stock":   result.Remaining,
	})
}

// Restock handles POST /inventory/restock.
func (h *InventoryHandler) Restock(w http.ResponseWriter, r *http.Request) {
	var input models.RestockRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	result, err := h.service.AddStock(r.Context(), input.ItemID, input.Quantity)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, map[string]any{
		"success":      true,
		"item_id":      result.ItemID,
		"new_quantity": result.NewTotal,
	})
}

func (h *InventoryHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, inventory.ErrItemNotFound):
		response.NotFound(w, r, err.Error())
	case errors.Is(err, inventory.ErrInsufficientStock),
		errors.Is(err, inventory.ErrInvalidQuantity):
		response.BadRequest(w, r, err.Error(), nil)
	case errors.Is(err, inventory.ErrDatabaseUnavailable):
		response.ServiceUnavailable(w, r, err.Error())
	default:
		h.log.Error().Err(err).Msg("inventory operation failed")
		response.ServiceUnavailable(w, r, "database error")
	}
}
