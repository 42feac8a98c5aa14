package http

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dougajmcdonald/mates-rates/internal/provider/stripe"
	"github.com/dougajmcdonald/mates-rates/internal/service"
	"github.com/dougajmcdonald/mates-rates/pkg/httputil"
	"github.com/dougajmcdonald/mates-rates/pkg/middleware"
	"github.com/dougajmcdonald/mates-rates/pkg/validator"
)

// PaymentHandler handles HTTP requests for settlement.
type PaymentHandler struct {
	payments      *service.PaymentService
	webhookSecret string
	logger        *slog.Logger
}

// NewPaymentHandler creates a new payment HTTP handler. webhookSecret guards
// the processor confirmation endpoint; when empty, webhooks are rejected.
func NewPaymentHandler(payments *service.PaymentService, webhookSecret string, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{
		payments:      payments,
		webhookSecret: webhookSecret,
		logger:        logger,
	}
}

// CreateIntentRequest is the JSON request body for initializing a payment.
type CreateIntentRequest struct {
	OfferID string `json:"offer_id" validate:"required,uuid"`
}

// OnboardResponse carries the hosted onboarding URL.
type OnboardResponse struct {
	URL string `json:"url"`
}

// Onboard handles POST /api/v1/payments/onboard
func (h *PaymentHandler) Onboard(w http.ResponseWriter, r *http.Request) {
	url, err := h.payments.CreateOnboardingLink(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: OnboardResponse{URL: url}})
}

// CreateIntent handles POST /api/v1/payments/create-intent
func (h *PaymentHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateIntentRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	intent, err := h.payments.InitializePayment(r.Context(), middleware.UserIDFromContext(r.Context()), req.OfferID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: intent})
}

// Webhook handles POST /api/v1/payments/webhook. The payload is trusted only
// after its HMAC signature checks out against the endpoint secret. Unhandled
// event types are acknowledged so the processor stops retrying them.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "unreadable payload"},
		})
		return
	}

	if h.webhookSecret == "" {
		h.logger.WarnContext(r.Context(), "webhook received but no webhook secret configured")
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	sig := r.Header.Get("Stripe-Signature")
	if err := stripe.VerifyWebhookSignature(payload, sig, h.webhookSecret, stripe.DefaultWebhookTolerance, time.Now()); err != nil {
		h.logger.WarnContext(r.Context(), "webhook signature rejected", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	event, err := stripe.ParseWebhookEvent(payload)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if event.Type != "payment_intent.succeeded" {
		w.WriteHeader(http.StatusOK)
		return
	}

	pi, err := event.PaymentIntent()
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if err := h.payments.ConfirmPayment(r.Context(), pi.ID); err != nil {
		// A retryable failure: the processor will redeliver.
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusOK)
}
