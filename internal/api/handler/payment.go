package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/faultmesh/faultmesh/internal/api/models"
	"github.com/faultmesh/faultmesh/internal/api/response"
	"github.com/faultmesh/faultmesh/internal/payment"
)

// PaymentHandler exposes the payment endpoints.
type PaymentHandler struct {
	service *payment.Service
	log     zerolog.Logger
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(service *payment.Service, log zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{service: service, log: log}
}

// Process handles POST /payment/process. Business failures (rejected
// or refused payments) are 200 responses with success=false; only an
// unreachable inventory service maps to an error status.
func (h *PaymentHandler) Process(w http.ResponseWriter, r *http.Request) {
	var input models.PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	result, err := h.service.Process(r.Context(), &input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, result)
}

// Refund handles POST /payment/refund.
func (h *PaymentHandler) Refund(w http.ResponseWriter, r *http.Request) {
	var input models.RefundRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	result, err := h.service.Refund(r.Context(), input.PaymentID, input.Amount)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, result)
}

func (h *PaymentHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, payment.ErrInvalidRequest):
		response.BadRequest(w, r, err.Error(), nil)
	case errors.Is(err, payment.ErrInventoryUnavailable):
		response.ServiceUnavailable(w, r, "inventory service unavailable")
	default:
		h.log.Error().Err(err).Msg("payment operation failed")
		response.InternalError(w, r, "payment processing failed")
	}
}
