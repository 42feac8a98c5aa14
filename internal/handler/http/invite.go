package http

import (
	"log/slog"
	"net/http"

	"github.com/dougajmcdonald/mates-rates/internal/service"
	"github.com/dougajmcdonald/mates-rates/pkg/httputil"
	"github.com/dougajmcdonald/mates-rates/pkg/middleware"
	"github.com/dougajmcdonald/mates-rates/pkg/validator"
)

// InviteHandler handles HTTP requests for the invite flow.
type InviteHandler struct {
	social *service.SocialService
	logger *slog.Logger
}

// NewInviteHandler creates a new invite HTTP handler.
func NewInviteHandler(social *service.SocialService, logger *slog.Logger) *InviteHandler {
	return &InviteHandler{social: social, logger: logger}
}

// AcceptInviteRequest is the JSON request body for redeeming an invite.
type AcceptInviteRequest struct {
	Token string `json:"token" validate:"required"`
}

// ShareResponse carries a freshly issued invite token.
type ShareResponse struct {
	Token string `json:"token"`
}

// Share handles POST /api/v1/share
func (h *InviteHandler) Share(w http.ResponseWriter, r *http.Request) {
	token, err := h.social.CreateInvite(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: ShareResponse{Token: token}})
}

// AcceptInvite handles POST /api/v1/accept-invite
func (h *InviteHandler) AcceptInvite(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req AcceptInviteRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	if err := h.social.RedeemInvite(r.Context(), middleware.UserIDFromContext(r.Context()), req.Token); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
