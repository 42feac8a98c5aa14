package repository

import (
	"context"

	"github.com/dougajmcdonald/mates-rates/internal/domain"
)

// UserRepository defines the data access contract for marketplace members.
type UserRepository interface {
	// Upsert inserts the user or refreshes the profile fields if the ID is
	// already present. The payout account is never touched by a sync.
	Upsert(ctx context.Context, user *domain.User) error

	GetByID(ctx context.Context, id string) (*domain.User, error)

	// SetPayoutAccount records the connected payout account for a seller.
	SetPayoutAccount(ctx context.Context, userID, accountID string) error
}

// SocialGraphRepository defines the data access contract for mate connections.
type SocialGraphRepository interface {
	// CreateMateship connects two users in both directions inside a single
	// transaction. It is idempotent; the return value reports whether a new
	// connection was made.
	CreateMateship(ctx context.Context, userID, mateID string) (bool, error)

	// AreMates reports whether a connection exists between the two users.
	AreMates(ctx context.Context, userID, otherID string) (bool, error)

	// ListMates returns the user's mates with their active listing counts.
	ListMates(ctx context.Context, userID string) ([]domain.MateSummary, error)
}

// ListingRepository defines the data access contract for listings.
type ListingRepository interface {
	Create(ctx context.Context, listing *domain.Listing) error

	// GetByID returns the listing regardless of viewer. Visibility checks
	// belong to the service layer.
	GetByID(ctx context.Context, id string) (*domain.Listing, error)

	// ListVisible returns active listings the viewer may see: their own and
	// those owned by their mates, newest first.
	ListVisible(ctx context.Context, viewerID string) ([]domain.ListingWithOwner, error)

	// ListOwnedBy returns all of an owner's listings regardless of status.
	ListOwnedBy(ctx context.Context, ownerID string) ([]domain.Listing, error)

	// Update persists listing changes scoped to the owner. Returns not found
	// when the listing does not exist or belongs to someone else.
	Update(ctx context.Context, listing *domain.Listing) error
}

// OfferRepository defines the data access contract for offers.
type OfferRepository interface {
	Create(ctx context.Context, offer *domain.Offer) error

	GetByID(ctx context.Context, id string) (*domain.Offer, error)

	// GetForSettlement returns the offer joined with the seller's identity
	// and payout account, which the settlement preconditions need.
	GetForSettlement(ctx context.Context, id string) (*domain.OfferSettlement, error)

	// GetByPaymentIntent resolves the offer a payment intent was created for.
	GetByPaymentIntent(ctx context.Context, intentID string) (*domain.Offer, error)

	// UpdateStatusFrom performs a compare-and-set status write. It reports
	// false when the offer was not in the expected status, so concurrent
	// transitions lose cleanly instead of overwriting each other.
	UpdateStatusFrom(ctx context.Context, id, from, to string) (bool, error)

	// SetPaymentIntent records the payment intent created for the offer.
	SetPaymentIntent(ctx context.Context, id, intentID string) error

	// ListIncoming returns offers made on the seller's listings.
	ListIncoming(ctx context.Context, sellerID string) ([]domain.OfferWithContext, error)

	// ListOutgoing returns offers the buyer has made.
	ListOutgoing(ctx context.Context, buyerID string) ([]domain.OfferWithContext, error)
}
