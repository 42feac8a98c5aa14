package service

import (
	"context"
	"log/slog"
	"os"

	"github.com/stretchr/testify/mock"

	"github.com/dougajmcdonald/mates-rates/internal/domain"
	"github.com/dougajmcdonald/mates-rates/internal/event"
	"github.com/dougajmcdonald/mates-rates/internal/provider"
	pkgkafka "github.com/dougajmcdonald/mates-rates/pkg/kafka"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// --- Mock user repository ---

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

// --- Mock social graph repository ---

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

// --- Mock listing repository ---

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

// --- Mock offer repository ---

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

// --- Mock payment provider ---

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

// --- Capture publisher ---

// capturePublisher records published events instead of hitting Kafka.
type capturePublisher struct {
	events []*pkgkafka.Event
	topics []string
}

func (c *capturePublisher) Publish(_ context.Context, topic string, e *pkgkafka.Event) error {
	c.topics = append(c.topics, topic)
	c.events = append(c.events, e)
	return nil
}

func testProducer(pub *capturePublisher) *event.Producer {
	return event.NewProducer(pub, testLogger())
}
