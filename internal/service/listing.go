package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dougajmcdonald/mates-rates/internal/domain"
	"github.com/dougajmcdonald/mates-rates/internal/repository"
	apperrors "github.com/dougajmcdonald/mates-rates/pkg/errors"
)

// ListingService implements the business logic for listings and their
// mate-gated visibility.
type ListingService struct {
	listings repository.ListingRepository
	graph    repository.SocialGraphRepository
	logger   *slog.Logger
}

// NewListingService creates a new listing service.
func NewListingService(
	listings repository.ListingRepository,
	graph repository.SocialGraphRepository,
	logger *slog.Logger,
) *ListingService {
	return &ListingService{
		listings: listings,
		graph:    graph,
		logger:   logger,
	}
}

// CreateListingInput holds the parameters for creating a listing.
type CreateListingInput struct {
	Title       string `json:"title" validate:"required,min=3,max=140"`
	Description string `json:"description" validate:"max=2000"`
	Price       int64  `json:"price" validate:"required,gt=0"`
	Currency    string `json:"currency" validate:"omitempty,len=3"`
	ImageURL    string `json:"image_url" validate:"omitempty,url"`
}

// UpdateListingInput holds the updatable listing fields. Nil fields are
// left unchanged.
type UpdateListingInput struct {
	Title       *string `json:"title" validate:"omitempty,min=3,max=140"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Price       *int64  `json:"price" validate:"omitempty,gt=0"`
	ImageURL    *string `json:"image_url" validate:"omitempty,url"`
}

// CreateListing creates an active listing owned by the caller.
func (s *ListingService) CreateListing(ctx context.Context, ownerID string, input *CreateListingInput) (*domain.Listing, error) {
	if input.Title == "" {
		return nil, apperrors.InvalidInput("title is required")
	}
	if input.Price <= 0 {
		return nil, apperrors.InvalidInput("price must be greater than zero")
	}

	currency := input.Currency
	if currency == "" {
		currency = "gbp"
	}

	listing := &domain.Listing{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		Title:       input.Title,
		Description: input.Description,
		Price:       input.Price,
		Currency:    currency,
		ImageURL:    input.ImageURL,
		Status:      domain.ListingStatusActive,
	}

	if err := s.listings.Create(ctx, listing); err != nil {
		return nil, fmt.Errorf("create listing: %w", err)
	}

	s.logger.InfoContext(ctx, "listing created",
		slog.String("listing_id", listing.ID),
		slog.String("owner_id", ownerID),
	)

	return listing, nil
}

// GetListing returns a listing if the viewer owns it or is a mate of the
// owner. Hidden listings are indistinguishable from missing ones.
func (s *ListingService) GetListing(ctx context.Context, viewerID, listingID string) (*domain.Listing, error) {
	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("get listing: %w", err)
	}

	visible, err := s.canView(ctx, viewerID, listing.OwnerID)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, apperrors.NotFound("listing", listingID)
	}

	return listing, nil
}

// ListFeed returns active listings visible to the viewer, newest first.
func (s *ListingService) ListFeed(ctx context.Context, viewerID string) ([]domain.ListingWithOwner, error) {
	listings, err := s.listings.ListVisible(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("list feed: %w", err)
	}
	return listings, nil
}

// ListOwnedBy returns a member's listings. This path is deliberately not
// gated on mateship: profile pages resolve ownership directly.
func (s *ListingService) ListOwnedBy(ctx context.Context, ownerID string) ([]domain.Listing, error) {
	listings, err := s.listings.ListOwnedBy(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list owned listings: %w", err)
	}
	return listings, nil
}

// UpdateListing applies partial updates to a listing the caller owns.
func (s *ListingService) UpdateListing(ctx context.Context, ownerID, listingID string, input *UpdateListingInput) (*domain.Listing, error) {
	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("get listing for update: %w", err)
	}

	if listing.OwnerID != ownerID {
		// Same shape as a missing listing so ownership isn't probeable.
		return nil, apperrors.NotFound("listing", listingID)
	}

	if input.Title != nil {
		listing.Title = *input.Title
	}
	if input.Description != nil {
		listing.Description = *input.Description
	}
	if input.Price != nil {
		if *input.Price <= 0 {
			return nil, apperrors.InvalidInput("price must be greater than zero")
		}
		listing.Price = *input.Price
	}
	if input.ImageURL != nil {
		listing.ImageURL = *input.ImageURL
	}

	if err := s.listings.Update(ctx, listing); err != nil {
		return nil, fmt.Errorf("update listing: %w", err)
	}

	return listing, nil
}

// CloseListing marks a listing as closed so it drops out of feeds.
func (s *ListingService) CloseListing(ctx context.Context, ownerID, listingID string) (*domain.Listing, error) {
	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("get listing for close: %w", err)
	}

	if listing.OwnerID != ownerID {
		return nil, apperrors.NotFound("listing", listingID)
	}

	if listing.Status == domain.ListingStatusClosed {
		return listing, nil
	}

	listing.Status = domain.ListingStatusClosed
	if err := s.listings.Update(ctx, listing); err != nil {
		return nil, fmt.Errorf("close listing: %w", err)
	}

	s.logger.InfoContext(ctx, "listing closed", slog.String("listing_id", listingID))

	return listing, nil
}

func (s *ListingService) canView(ctx context.Context, viewerID, ownerID string) (bool, error) {
	if viewerID == ownerID {
		return true, nil
	}
	mates, err := s.graph.AreMates(ctx, viewerID, ownerID)
	if err != nil {
		return false, fmt.Errorf("check listing visibility: %w", err)
	}
	return mates, nil
}
