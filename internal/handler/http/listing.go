package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dougajmcdonald/mates-rates/internal/domain"
	"github.com/dougajmcdonald/mates-rates/internal/service"
	"github.com/dougajmcdonald/mates-rates/pkg/httputil"
	"github.com/dougajmcdonald/mates-rates/pkg/middleware"
	"github.com/dougajmcdonald/mates-rates/pkg/validator"
)

// ListingHandler handles HTTP requests for listings.
type ListingHandler struct {
	listings *service.ListingService
	logger   *slog.Logger
}

// NewListingHandler creates a new listing HTTP handler.
func NewListingHandler(listings *service.ListingService, logger *slog.Logger) *ListingHandler {
	return &ListingHandler{listings: listings, logger: logger}
}

// CreateListingRequest is the JSON request body for creating a listing.
type CreateListingRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=140"`
	Description string `json:"description" validate:"max=2000"`
	Price       int64  `json:"price" validate:"required,gt=0"`
	Currency    string `json:"currency" validate:"omitempty,len=3"`
	ImageURL    string `json:"image_url" validate:"omitempty,url"`
}

// UpdateListingRequest is the JSON request body for updating a listing.
// Omitted fields are left unchanged; status may only move to closed.
type UpdateListingRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=3,max=140"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Price       *int64  `json:"price" validate:"omitempty,gt=0"`
	ImageURL    *string `json:"image_url" validate:"omitempty,url"`
	Status      *string `json:"status" validate:"omitempty,oneof=closed"`
}

// CreateListing handles POST /api/v1/listings
func (h *ListingHandler) CreateListing(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateListingRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	listing, err := h.listings.CreateListing(r.Context(), middleware.UserIDFromContext(r.Context()), &service.CreateListingInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Currency:    req.Currency,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: listing})
}

// ListFeed handles GET /api/v1/listings
func (h *ListingHandler) ListFeed(w http.ResponseWriter, r *http.Request) {
	listings, err := h.listings.ListFeed(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: listings})
}

// GetListing handles GET /api/v1/listings/{id}
func (h *ListingHandler) GetListing(w http.ResponseWriter, r *http.Request) {
	listing, err := h.listings.GetListing(r.Context(), middleware.UserIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: listing})
}

// UpdateListing handles PATCH /api/v1/listings/{id}
func (h *ListingHandler) UpdateListing(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req UpdateListingRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	ctx := r.Context()
	callerID := middleware.UserIDFromContext(ctx)
	listingID := chi.URLParam(r, "id")

	listing, err := h.listings.UpdateListing(ctx, callerID, listingID, &service.UpdateListingInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if req.Status != nil && *req.Status == domain.ListingStatusClosed {
		listing, err = h.listings.CloseListing(ctx, callerID, listingID)
		if err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: listing})
}
