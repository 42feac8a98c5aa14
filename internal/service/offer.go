package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dougajmcdonald/mates-rates/internal/domain"
	"github.com/dougajmcdonald/mates-rates/internal/event"
	"github.com/dougajmcdonald/mates-rates/internal/repository"
	apperrors "github.com/dougajmcdonald/mates-rates/pkg/errors"
)

// CodeInvalidTransition is the stable error code for a rejected offer status
// change.
const CodeInvalidTransition = "INVALID_TRANSITION"

// OfferService implements the business logic for offer negotiation.
type OfferService struct {
	offers   repository.OfferRepository
	listings repository.ListingRepository
	graph    repository.SocialGraphRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewOfferService creates a new offer service.
func NewOfferService(
	offers repository.OfferRepository,
	listings repository.ListingRepository,
	graph repository.SocialGraphRepository,
	producer *event.Producer,
	logger *slog.Logger,
) *OfferService {
	return &OfferService{
		offers:   offers,
		listings: listings,
		graph:    graph,
		producer: producer,
		logger:   logger,
	}
}

// MakeOfferInput holds the parameters for making an offer.
type MakeOfferInput struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

// MakeOffer creates a pending offer on a listing the buyer can see. Owners
// may bid on their own listings; the gate is visibility, not identity.
func (s *OfferService) MakeOffer(ctx context.Context, buyerID, listingID string, input *MakeOfferInput) (*domain.Offer, error) {
	if input.Amount <= 0 {
		return nil, apperrors.InvalidInput("amount must be greater than zero")
	}

	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("get listing for offer: %w", err)
	}

	if listing.OwnerID != buyerID {
		mates, err := s.graph.AreMates(ctx, buyerID, listing.OwnerID)
		if err != nil {
			return nil, fmt.Errorf("check offer visibility: %w", err)
		}
		if !mates {
			return nil, apperrors.NotFound("listing", listingID)
		}
	}

	if !listing.IsOpen() {
		return nil, apperrors.InvalidState(CodeInvalidTransition, "listing is no longer accepting offers")
	}

	offer := &domain.Offer{
		ID:        uuid.New().String(),
		ListingID: listingID,
		BuyerID:   buyerID,
		Amount:    input.Amount,
		Status:    domain.OfferStatusPending,
	}

	if err := s.offers.Create(ctx, offer); err != nil {
		return nil, fmt.Errorf("create offer: %w", err)
	}

	s.logger.InfoContext(ctx, "offer created",
		slog.String("offer_id", offer.ID),
		slog.String("listing_id", listingID),
		slog.Int64("amount", offer.Amount),
	)

	return offer, nil
}

// SetStatus moves a pending offer to accepted or declined. Only the listing
// owner may decide, and the write is a compare-and-set so two concurrent
// decisions cannot both land.
func (s *OfferService) SetStatus(ctx context.Context, callerID, offerID, target string) (*domain.Offer, error) {
	if target != domain.OfferStatusAccepted && target != domain.OfferStatusDeclined {
		return nil, apperrors.InvalidInput(fmt.Sprintf("status must be %q or %q", domain.OfferStatusAccepted, domain.OfferStatusDeclined))
	}

	settlement, err := s.offers.GetForSettlement(ctx, offerID)
	if err != nil {
		return nil, fmt.Errorf("get offer for decision: %w", err)
	}

	if settlement.SellerID != callerID {
		return nil, apperrors.Forbidden("only the listing owner can decide on an offer")
	}

	if !settlement.CanTransitionTo(target) {
		return nil, apperrors.InvalidState(CodeInvalidTransition,
			fmt.Sprintf("offer cannot move from %q to %q", settlement.Status, target))
	}

	updated, err := s.offers.UpdateStatusFrom(ctx, offerID, domain.OfferStatusPending, target)
	if err != nil {
		return nil, fmt.Errorf("set offer status: %w", err)
	}
	if !updated {
		// Lost a race: the offer left pending between read and write.
		return nil, apperrors.InvalidState(CodeInvalidTransition, "offer is no longer pending")
	}

	offer := &settlement.Offer
	offer.Status = target

	s.logger.InfoContext(ctx, "offer status updated",
		slog.String("offer_id", offerID),
		slog.String("status", target),
	)

	if target == domain.OfferStatusAccepted {
		if err := s.producer.PublishOfferAccepted(ctx, offer, settlement.SellerID); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish offer.accepted event", slog.String("error", err.Error()))
		}
	}

	return offer, nil
}

// Incoming returns offers on the caller's listings, enriched for display.
func (s *OfferService) Incoming(ctx context.Context, sellerID string) ([]domain.OfferWithContext, error) {
	offers, err := s.offers.ListIncoming(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("list incoming offers: %w", err)
	}
	return offers, nil
}

// Outgoing returns offers the caller has made, enriched for display.
func (s *OfferService) Outgoing(ctx context.Context, buyerID string) ([]domain.OfferWithContext, error) {
	offers, err := s.offers.ListOutgoing(ctx, buyerID)
	if err != nil {
		return nil, fmt.Errorf("list outgoing offers: %w", err)
	}
	return offers, nil
}
