package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dougajmcdonald/mates-rates/internal/domain"
	pkgkafka "github.com/dougajmcdonald/mates-rates/pkg/kafka"
)

// Kafka topic constants for marketplace domain events.
const (
	TopicMateshipCreated = "marketplace.mateship.created"
	TopicOfferAccepted   = "marketplace.offer.accepted"
	TopicOfferPaid       = "marketplace.offer.paid"
)

// Aggregate type constants.
const (
	AggregateTypeMateship = "mateship"
	AggregateTypeOffer    = "offer"
)

// Source identifier for events originating from the marketplace server.
const Source = "mates-rates"

// MateshipCreatedData is the payload for a mateship.created event.
type MateshipCreatedData struct {
	UserID string `json:"user_id"`
	MateID string `json:"mate_id"`
}

// OfferStatusData is the payload for offer lifecycle events.
type OfferStatusData struct {
	OfferID   string `json:"offer_id"`
	ListingID string `json:"listing_id"`
	BuyerID   string `json:"buyer_id"`
	SellerID  string `json:"seller_id,omitempty"`
	Amount    int64  `json:"amount"`
	Status    string `json:"status"`
}

// Publisher is the subset of the Kafka producer the event layer needs,
// pulled out so service tests can substitute a fake.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes marketplace domain events to Kafka.
type Producer struct {
	kafka  Publisher
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishMateshipCreated publishes a mateship.created event, keyed on the
// inviter so both directions of one redemption land in order.
func (p *Producer) PublishMateshipCreated(ctx context.Context, userID, mateID string) error {
	data := MateshipCreatedData{UserID: userID, MateID: mateID}

	event, err := pkgkafka.NewEvent(TopicMateshipCreated, userID, AggregateTypeMateship, Source, data)
	if err != nil {
		return fmt.Errorf("create mateship.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicMateshipCreated, event); err != nil {
		return fmt.Errorf("publish mateship.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published mateship.created event",
		slog.String("user_id", userID),
		slog.String("mate_id", mateID),
	)

	return nil
}

// PublishOfferAccepted publishes an offer.accepted event.
func (p *Producer) PublishOfferAccepted(ctx context.Context, offer *domain.Offer, sellerID string) error {
	return p.publishOfferEvent(ctx, TopicOfferAccepted, offer, sellerID)
}

// PublishOfferPaid publishes an offer.paid event.
func (p *Producer) PublishOfferPaid(ctx context.Context, offer *domain.Offer, sellerID string) error {
	return p.publishOfferEvent(ctx, TopicOfferPaid, offer, sellerID)
}

func (p *Producer) publishOfferEvent(ctx context.Context, topic string, offer *domain.Offer, sellerID string) error {
	data := OfferStatusData{
		OfferID:   offer.ID,
		ListingID: offer.ListingID,
		BuyerID:   offer.BuyerID,
		SellerID:  sellerID,
		Amount:    offer.Amount,
		Status:    offer.Status,
	}

	event, err := pkgkafka.NewEvent(topic, offer.ID, AggregateTypeOffer, Source, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published offer event",
		slog.String("topic", topic),
		slog.String("offer_id", offer.ID),
	)

	return nil
}
