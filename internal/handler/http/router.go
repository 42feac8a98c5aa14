package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dougajmcdonald/mates-rates/internal/service"
	"github.com/dougajmcdonald/mates-rates/pkg/health"
	"github.com/dougajmcdonald/mates-rates/pkg/middleware"
)

// Deps bundles the services and infrastructure the router wires together.
type Deps struct {
	Users    *service.UserService
	Social   *service.SocialService
	Listings *service.ListingService
	Offers   *service.OfferService
	Payments *service.PaymentService

	TokenValidator middleware.TokenValidator
	WebhookSecret  string
	Health         *health.Handler
	CORS           middleware.CORSConfig
	Logger         *slog.Logger
}

// NewRouter creates a chi router with all marketplace routes registered.
// Every /api/v1 route requires a bearer identity token except the payment
// webhook, which the processor authenticates with its own signature.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(d.CORS))
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.RequestLogging(d.Logger))
	r.Use(middleware.Tracing("mates-rates"))
	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(middleware.PrometheusMetrics("mates-rates"))

	// Health check endpoints
	r.Get("/health/live", d.Health.LivenessHandler())
	r.Get("/health/ready", d.Health.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	userHandler := NewUserHandler(d.Users, d.Social, d.Listings, d.Logger)
	inviteHandler := NewInviteHandler(d.Social, d.Logger)
	listingHandler := NewListingHandler(d.Listings, d.Logger)
	offerHandler := NewOfferHandler(d.Offers, d.Logger)
	paymentHandler := NewPaymentHandler(d.Payments, d.WebhookSecret, d.Logger)

	// Processor webhook (signature-verified, no bearer token)
	r.Post("/api/v1/payments/webhook", paymentHandler.Webhook)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.Auth(d.TokenValidator))

		r.Post("/users/sync", userHandler.SyncUser)
		r.Get("/users/me/mates", userHandler.ListMates)
		r.Get("/users/{id}/listings", userHandler.ListUserListings)

		r.Post("/share", inviteHandler.Share)
		r.Post("/accept-invite", inviteHandler.AcceptInvite)

		r.Post("/listings", listingHandler.CreateListing)
		r.Get("/listings", listingHandler.ListFeed)
		r.Get("/listings/{id}", listingHandler.GetListing)
		r.Patch("/listings/{id}", listingHandler.UpdateListing)
		r.Post("/listings/{id}/offers", offerHandler.MakeOffer)

		r.Get("/offers/incoming", offerHandler.Incoming)
		r.Get("/offers/outgoing", offerHandler.Outgoing)
		r.Patch("/offers/{id}/status", offerHandler.SetStatus)

		r.Post("/payments/onboard", paymentHandler.Onboard)
		r.Post("/payments/create-intent", paymentHandler.CreateIntent)
	})

	return r
}
