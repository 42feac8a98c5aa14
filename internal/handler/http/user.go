package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dougajmcdonald/mates-rates/internal/service"
	"github.com/dougajmcdonald/mates-rates/pkg/httputil"
	"github.com/dougajmcdonald/mates-rates/pkg/middleware"
)

// UserHandler handles HTTP requests for member accounts and the mates view.
type UserHandler struct {
	users    *service.UserService
	social   *service.SocialService
	listings *service.ListingService
	logger   *slog.Logger
}

// NewUserHandler creates a new user HTTP handler.
func NewUserHandler(
	users *service.UserService,
	social *service.SocialService,
	listings *service.ListingService,
	logger *slog.Logger,
) *UserHandler {
	return &UserHandler{
		users:    users,
		social:   social,
		listings: listings,
		logger:   logger,
	}
}

// SyncUser handles POST /api/v1/users/sync. The profile comes from the
// verified identity token, not the request body, so a client cannot sync
// someone else's account.
func (h *UserHandler) SyncUser(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())

	user, err := h.users.SyncUser(r.Context(), &service.SyncUserInput{
		ID:        identity.UserID,
		Email:     identity.Email,
		Name:      identity.Name,
		AvatarURL: identity.AvatarURL,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: user})
}

// ListMates handles GET /api/v1/users/me/mates
func (h *UserHandler) ListMates(w http.ResponseWriter, r *http.Request) {
	mates, err := h.social.ListMates(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: mates})
}

// ListUserListings handles GET /api/v1/users/{id}/listings
func (h *UserHandler) ListUserListings(w http.ResponseWriter, r *http.Request) {
	ownerID := chi.URLParam(r, "id")

	listings, err := h.listings.ListOwnedBy(r.Context(), ownerID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: listings})
}
