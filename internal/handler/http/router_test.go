package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dougajmcdonald/mates-rates/internal/domain"
	"github.com/dougajmcdonald/mates-rates/internal/event"
	"github.com/dougajmcdonald/mates-rates/internal/invite"
	"github.com/dougajmcdonald/mates-rates/internal/provider"
	"github.com/dougajmcdonald/mates-rates/internal/service"
	"github.com/dougajmcdonald/mates-rates/pkg/health"
	"github.com/dougajmcdonald/mates-rates/pkg/httputil"
	pkgkafka "github.com/dougajmcdonald/mates-rates/pkg/kafka"
	"github.com/dougajmcdonald/mates-rates/pkg/middleware"
)

const testWebhookSecret = "whsec_test"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// --- Mock repositories ---

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Upsert(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) SetPayoutAccount(ctx context.Context, userID, accountID string) error {
	args := m.Called(ctx, userID, accountID)
	return args.Error(0)
}

type mockGraphRepo struct {
	mock.Mock
}

func (m *mockGraphRepo) CreateMateship(ctx context.Context, userID, mateID string) (bool, error) {
	args := m.Called(ctx, userID, mateID)
	return args.Bool(0), args.Error(1)
}

func (m *mockGraphRepo) AreMates(ctx context.Context, userID, otherID string) (bool, error) {
	args := m.Called(ctx, userID, otherID)
	return args.Bool(0), args.Error(1)
}

func (m *mockGraphRepo) ListMates(ctx context.Context, userID string) ([]domain.MateSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MateSummary), args.Error(1)
}

type mockListingRepo struct {
	mock.Mock
}

func (m *mockListingRepo) Create(ctx context.Context, listing *domain.Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}

func (m *mockListingRepo) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}

func (m *mockListingRepo) ListVisible(ctx context.Context, viewerID string) ([]domain.ListingWithOwner, error) {
	args := m.Called(ctx, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ListingWithOwner), args.Error(1)
}

func (m *mockListingRepo) ListOwnedBy(ctx context.Context, ownerID string) ([]domain.Listing, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Listing), args.Error(1)
}

func (m *mockListingRepo) Update(ctx context.Context, listing *domain.Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}

type mockOfferRepo struct {
	mock.Mock
}

func (m *mockOfferRepo) Create(ctx context.Context, offer *domain.Offer) error {
	args := m.Called(ctx, offer)
	return args.Error(0)
}

func (m *mockOfferRepo) GetByID(ctx context.Context, id string) (*domain.Offer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Offer), args.Error(1)
}

func (m *mockOfferRepo) GetForSettlement(ctx context.Context, id string) (*domain.OfferSettlement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OfferSettlement), args.Error(1)
}

func (m *mockOfferRepo) GetByPaymentIntent(ctx context.Context, intentID string) (*domain.Offer, error) {
	args := m.Called(ctx, intentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Offer), args.Error(1)
}

func (m *mockOfferRepo) UpdateStatusFrom(ctx context.Context, id, from, to string) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *mockOfferRepo) SetPaymentIntent(ctx context.Context, id, intentID string) error {
	args := m.Called(ctx, id, intentID)
	return args.Error(0)
}

func (m *mockOfferRepo) ListIncoming(ctx context.Context, sellerID string) ([]domain.OfferWithContext, error) {
	args := m.Called(ctx, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OfferWithContext), args.Error(1)
}

func (m *mockOfferRepo) ListOutgoing(ctx context.Context, buyerID string) ([]domain.OfferWithContext, error) {
	args := m.Called(ctx, buyerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OfferWithContext), args.Error(1)
}

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) Name() string {
	return "mock"
}

func (m *mockProvider) CreateAccount(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

func (m *mockProvider) CreateAccountLink(ctx context.Context, input *provider.AccountLinkInput) (string, error) {
	args := m.Called(ctx, input)
	return args.String(0), args.Error(1)
}

func (m *mockProvider) CreatePaymentIntent(ctx context.Context, input *provider.PaymentIntentInput) (*provider.PaymentIntentResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.PaymentIntentResult), args.Error(1)
}

type capturePublisher struct {
	topics []string
	events []*pkgkafka.Event
}

func (c *capturePublisher) Publish(_ context.Context, topic string, e *pkgkafka.Event) error {
	c.topics = append(c.topics, topic)
	c.events = append(c.events, e)
	return nil
}

// --- Test environment ---

// testEnv wires the full production router over mocked repositories so tests
// cover routing, auth, content negotiation, and error envelopes together.
type testEnv struct {
	users     *mockUserRepo
	graph     *mockGraphRepo
	listings  *mockListingRepo
	offers    *mockOfferRepo
	prov      *mockProvider
	publisher *capturePublisher
	tokens    *invite.Tokens
	router    http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		users:     new(mockUserRepo),
		graph:     new(mockGraphRepo),
		listings:  new(mockListingRepo),
		offers:    new(mockOfferRepo),
		prov:      new(mockProvider),
		publisher: new(capturePublisher),
		tokens:    invite.NewTokens("invite-secret", 7*24*time.Hour),
	}

	logger := testLogger()
	producer := event.NewProducer(env.publisher, logger)

	// Identity tokens in tests are just the caller's user ID.
	validator := func(token string) (*middleware.Identity, error) {
		if token == "" {
			return nil, fmt.Errorf("empty token")
		}
		return &middleware.Identity{
			UserID: token,
			Email:  token + "@example.com",
			Name:   token,
		}, nil
	}

	env.router = NewRouter(Deps{
		Users:          service.NewUserService(env.users, logger),
		Social:         service.NewSocialService(env.graph, env.tokens, nil, producer, logger),
		Listings:       service.NewListingService(env.listings, env.graph, logger),
		Offers:         service.NewOfferService(env.offers, env.listings, env.graph, producer, logger),
		Payments:       service.NewPaymentService(env.offers, env.users, env.prov, producer, logger, "https://app.test/return", "https://app.test/refresh"),
		TokenValidator: validator,
		WebhookSecret:  testWebhookSecret,
		Health:         health.NewHandler(),
		CORS:           middleware.DefaultCORSConfig(),
		Logger:         logger,
	})

	return env
}

// do performs a request as the given user. An empty user sends no bearer token.
func (e *testEnv) do(method, path, asUser string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if asUser != "" {
		req.Header.Set("Authorization", "Bearer "+asUser)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeResp(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	resp := decodeResp(t, rec)
	require.NotNil(t, resp.Error)
	return resp.Error.Code
}

func sampleListing(id, ownerID string) *domain.Listing {
	now := time.Now().UTC()
	return &domain.Listing{
		ID:        id,
		OwnerID:   ownerID,
		Title:     "Road bike",
		Price:     12500,
		Currency:  "gbp",
		Status:    domain.ListingStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
