package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dougajmcdonald/mates-rates/internal/service"
	"github.com/dougajmcdonald/mates-rates/pkg/httputil"
	"github.com/dougajmcdonald/mates-rates/pkg/middleware"
	"github.com/dougajmcdonald/mates-rates/pkg/validator"
)

// OfferHandler handles HTTP requests for offer negotiation.
type OfferHandler struct {
	offers *service.OfferService
	logger *slog.Logger
}

// NewOfferHandler creates a new offer HTTP handler.
func NewOfferHandler(offers *service.OfferService, logger *slog.Logger) *OfferHandler {
	return &OfferHandler{offers: offers, logger: logger}
}

// MakeOfferRequest is the JSON request body for making an offer.
type MakeOfferRequest struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

// SetStatusRequest is the JSON request body for deciding on an offer.
type SetStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=accepted declined"`
}

// MakeOffer handles POST /api/v1/listings/{id}/offers
func (h *OfferHandler) MakeOffer(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req MakeOfferRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	offer, err := h.offers.MakeOffer(r.Context(), middleware.UserIDFromContext(r.Context()),
		chi.URLParam(r, "id"), &service.MakeOfferInput{Amount: req.Amount})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: offer})
}

// Incoming handles GET /api/v1/offers/incoming
func (h *OfferHandler) Incoming(w http.ResponseWriter, r *http.Request) {
	offers, err := h.offers.Incoming(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: offers})
}

// Outgoing handles GET /api/v1/offers/outgoing
func (h *OfferHandler) Outgoing(w http.ResponseWriter, r *http.Request) {
	offers, err := h.offers.Outgoing(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: offers})
}

// SetStatus handles PATCH /api/v1/offers/{id}/status
func (h *OfferHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req SetStatusRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	offer, err := h.offers.SetStatus(r.Context(), middleware.UserIDFromContext(r.Context()),
		chi.URLParam(r, "id"), req.Status)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: offer})
}
