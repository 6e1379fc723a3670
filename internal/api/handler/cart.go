package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/faultmesh/faultmesh/internal/api/models"
	"github.com/faultmesh/faultmesh/internal/api/response"
	"github.com/faultmesh/faultmesh/internal/cart"
	"github.com/faultmesh/faultmesh/internal/orders"
)

// CartHandler exposes the cart, product and order endpoints.
type CartHandler struct {
	service *cart.Service
	log     zerolog.Logger
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *cart.Service, log zerolog.Logger) *CartHandler {
	return &CartHandler{service: service, log: log}
}

// Products handles GET /products.
func (h *CartHandler) Products(w http.ResponseWriter, r *http.Request) {
	products := h.service.Products(r.Context())
	response.JSON(w, r, http.StatusOK, map[string]any{"products": products})
}

// Get handles GET /cart/{userID}.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	result, err := h.service.Get(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, result)
}

// Add handles POST /cart/add.
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	var input models.AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if input.UserID == "" || input.ItemID == "" {
		response.BadRequest(w, r, "user_id and item_id are required", nil)
		return
	}

	result, err := h.service.Add(r.Context(), &input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, result)
}

// RemoveItem handles DELETE /cart/{userID}/item/{itemID}.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	itemID := chi.URLParam(r, "itemID")

	result, err := h.service.Remove(r.Context(), userID, itemID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, result)
}

// Clear handles DELETE /cart/{userID}.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	if err := h.service.Clear(r.Context(), userID); err != nil {
		h.writeError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, map[string]any{
		"success": true,
		"message": "cart cleared",
	})
}

// Checkout handles POST /cart/checkout.
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var input models.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if input.UserID == "" {
		response.BadRequest(w, r, "user_id is required", nil)
		return
	}

	result, err := h.service.Checkout(r.Context(), input.UserID, input.PaymentMethod)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, result)
}

// Orders handles GET /orders/{userID}.
func (h *CartHandler) Orders(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	result, err := h.service.Orders(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if result == nil {
		result = []orders.Order{}
	}
	response.JSON(w, r, http.StatusOK, map[string]any{
		"user_id": userID,
		"orders":  result,
	})
}

func (h *CartHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, cart.ErrProductNotFound):
		response.NotFound(w, r, err.Error())
	case errors.Is(err, cart.ErrCacheUnavailable):
		response.ServiceUnavailable(w, r, err.Error())
	case errors.Is(err, cart.ErrDatabaseUnavailable):
		response.ServiceUnavailable(w, r, err.Error())
	default:
		h.log.Error().Err(err).Msg("cart operation failed")
		response.InternalError(w, r, "cart operation failed")
	}
}
