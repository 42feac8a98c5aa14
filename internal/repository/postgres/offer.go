package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dougajmcdonald/mates-rates/internal/domain"
	"github.com/dougajmcdonald/mates-rates/pkg/database"
	apperrors "github.com/dougajmcdonald/mates-rates/pkg/errors"
)

// OfferRepository implements repository.OfferRepository using PostgreSQL.
type OfferRepository struct {
	db database.DBTX
}

// NewOfferRepository creates a new PostgreSQL-backed offer repository.
func NewOfferRepository(db database.DBTX) *OfferRepository {
	return &OfferRepository{db: db}
}

const offerColumns = `id, listing_id, buyer_id, amount, status, payment_intent_id, created_at, updated_at`

// Create inserts a new offer.
func (r *OfferRepository) Create(ctx context.Context, o *domain.Offer) error {
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now

	query := `
		INSERT INTO offers (id, listing_id, buyer_id, amount, status, payment_intent_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(ctx, query,
		o.ID,
		o.ListingID,
		o.BuyerID,
		o.Amount,
		o.Status,
		o.PaymentIntentID,
		o.CreatedAt,
		o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert offer: %w", err)
	}

	return nil
}

func (r *OfferRepository) scanOffer(row pgx.Row) (*domain.Offer, error) {
	var o domain.Offer
	err := row.Scan(
		&o.ID,
		&o.ListingID,
		&o.BuyerID,
		&o.Amount,
		&o.Status,
		&o.PaymentIntentID,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// GetByID retrieves an offer by ID.
func (r *OfferRepository) GetByID(ctx context.Context, id string) (*domain.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM offers WHERE id = $1`

	o, err := r.scanOffer(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("offer", id)
		}
		return nil, fmt.Errorf("get offer: %w", err)
	}

	return o, nil
}

// GetForSettlement returns the offer joined with the seller's identity and
// payout account.
func (r *OfferRepository) GetForSettlement(ctx context.Context, id string) (*domain.OfferSettlement, error) {
	query := `
		SELECT o.id, o.listing_id, o.buyer_id, o.amount, o.status, o.payment_intent_id, o.created_at, o.updated_at,
		       l.owner_id, u.payout_account_id, l.title
		FROM offers o
		JOIN listings l ON l.id = o.listing_id
		JOIN users u ON u.id = l.owner_id
		WHERE o.id = $1`

	var s domain.OfferSettlement
	err := r.db.QueryRow(ctx, query, id).Scan(
		&s.ID,
		&s.ListingID,
		&s.BuyerID,
		&s.Amount,
		&s.Status,
		&s.PaymentIntentID,
		&s.CreatedAt,
		&s.UpdatedAt,
		&s.SellerID,
		&s.SellerPayoutAccountID,
		&s.ListingTitle,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("offer", id)
		}
		return nil, fmt.Errorf("get offer for settlement: %w", err)
	}

	return &s, nil
}

// GetByPaymentIntent resolves the offer a payment intent was created for.
func (r *OfferRepository) GetByPaymentIntent(ctx context.Context, intentID string) (*domain.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM offers WHERE payment_intent_id = $1`

	o, err := r.scanOffer(r.db.QueryRow(ctx, query, intentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("offer", intentID)
		}
		return nil, fmt.Errorf("get offer by payment intent: %w", err)
	}

	return o, nil
}

// UpdateStatusFrom performs a compare-and-set status write. Zero rows means
// the offer was no longer in the expected status; the caller decides whether
// that is a rejected transition or a missing offer.
func (r *OfferRepository) UpdateStatusFrom(ctx context.Context, id, from, to string) (bool, error) {
	query := `
		UPDATE offers
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4`

	ct, err := r.db.Exec(ctx, query, to, time.Now().UTC(), id, from)
	if err != nil {
		return false, fmt.Errorf("update offer status: %w", err)
	}

	return ct.RowsAffected() > 0, nil
}

// SetPaymentIntent records the payment intent created for the offer.
func (r *OfferRepository) SetPaymentIntent(ctx context.Context, id, intentID string) error {
	query := `
		UPDATE offers
		SET payment_intent_id = $1, updated_at = $2
		WHERE id = $3`

	ct, err := r.db.Exec(ctx, query, intentID, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set payment intent: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("offer", id)
	}

	return nil
}

const offerContextColumns = `o.id, o.listing_id, o.buyer_id, o.amount, o.status, o.payment_intent_id, o.created_at, o.updated_at,
	       l.title, l.price, l.image_url, l.owner_id`

// ListIncoming returns offers made on the seller's listings, newest first,
// with buyer names for display.
func (r *OfferRepository) ListIncoming(ctx context.Context, sellerID string) ([]domain.OfferWithContext, error) {
	query := `
		SELECT ` + offerContextColumns + `, b.name
		FROM offers o
		JOIN listings l ON l.id = o.listing_id
		JOIN users b ON b.id = o.buyer_id
		WHERE l.owner_id = $1
		ORDER BY o.created_at DESC, o.id DESC`

	rows, err := r.db.Query(ctx, query, sellerID)
	if err != nil {
		return nil, fmt.Errorf("list incoming offers: %w", err)
	}
	defer rows.Close()

	offers := []domain.OfferWithContext{}
	for rows.Next() {
		var o domain.OfferWithContext
		if err := rows.Scan(
			&o.ID,
			&o.ListingID,
			&o.BuyerID,
			&o.Amount,
			&o.Status,
			&o.PaymentIntentID,
			&o.CreatedAt,
			&o.UpdatedAt,
			&o.ListingTitle,
			&o.ListingPrice,
			&o.ListingImageURL,
			&o.SellerID,
			&o.BuyerName,
		); err != nil {
			return nil, fmt.Errorf("scan incoming offer: %w", err)
		}
		offers = append(offers, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate incoming offers: %w", err)
	}

	return offers, nil
}

// ListOutgoing returns offers the buyer has made, newest first, with seller
// names for display.
func (r *OfferRepository) ListOutgoing(ctx context.Context, buyerID string) ([]domain.OfferWithContext, error) {
	query := `
		SELECT ` + offerContextColumns + `, s.name
		FROM offers o
		JOIN listings l ON l.id = o.listing_id
		JOIN users s ON s.id = l.owner_id
		WHERE o.buyer_id = $1
		ORDER BY o.created_at DESC, o.id DESC`

	rows, err := r.db.Query(ctx, query, buyerID)
	if err != nil {
		return nil, fmt.Errorf("list outgoing offers: %w", err)
	}
	defer rows.Close()

	offers := []domain.OfferWithContext{}
	for rows.Next() {
		var o domain.OfferWithContext
		if err := rows.Scan(
			&o.ID,
			&o.ListingID,
			&o.BuyerID,
			&o.Amount,
			&o.Status,
			&o.PaymentIntentID,
			&o.CreatedAt,
			&o.UpdatedAt,
			&o.ListingTitle,
			&o.ListingPrice,
			&o.ListingImageURL,
			&o.SellerID,
			&o.SellerName,
		); err != nil {
			return nil, fmt.Errorf("scan outgoing offer: %w", err)
		}
		offers = append(offers, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outgoing offers: %w", err)
	}

	return offers, nil
}
