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

// ListingRepository implements repository.ListingRepository using PostgreSQL.
type ListingRepository struct {
	db database.DBTX
}

// NewListingRepository creates a new PostgreSQL-backed listing repository.
func NewListingRepository(db database.DBTX) *ListingRepository {
	return &ListingRepository{db: db}
}

const listingColumns = `id, owner_id, title, description, price, currency, image_url, status, created_at, updated_at`

// Create inserts a new listing.
func (r *ListingRepository) Create(ctx context.Context, l *domain.Listing) error {
	now := time.Now().UTC()
	l.CreatedAt = now
	l.UpdatedAt = now

	query := `
		INSERT INTO listings (id, owner_id, title, description, price, currency, image_url, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(ctx, query,
		l.ID,
		l.OwnerID,
		l.Title,
		l.Description,
		l.Price,
		l.Currency,
		l.ImageURL,
		l.Status,
		l.CreatedAt,
		l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert listing: %w", err)
	}

	return nil
}

// GetByID retrieves a listing by ID.
func (r *ListingRepository) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`

	var l domain.Listing
	err := r.db.QueryRow(ctx, query, id).Scan(
		&l.ID,
		&l.OwnerID,
		&l.Title,
		&l.Description,
		&l.Price,
		&l.Currency,
		&l.ImageURL,
		&l.Status,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("listing", id)
		}
		return nil, fmt.Errorf("get listing: %w", err)
	}

	return &l, nil
}

// ListVisible returns active listings the viewer may see: their own plus
// those owned by their mates. A single pass over the listings table with an
// EXISTS against the symmetric mates table; newest first, ID as tiebreak so
// the ordering is total.
func (r *ListingRepository) ListVisible(ctx context.Context, viewerID string) ([]domain.ListingWithOwner, error) {
	query := `
		SELECT l.id, l.owner_id, l.title, l.description, l.price, l.currency, l.image_url, l.status, l.created_at, l.updated_at,
		       u.name, u.avatar_url
		FROM listings l
		JOIN users u ON u.id = l.owner_id
		WHERE l.status = 'active'
		  AND (l.owner_id = $1 OR EXISTS (
			SELECT 1 FROM user_mates um
			WHERE um.user_id = $1 AND um.mate_id = l.owner_id
		  ))
		ORDER BY l.created_at DESC, l.id DESC`

	rows, err := r.db.Query(ctx, query, viewerID)
	if err != nil {
		return nil, fmt.Errorf("list visible listings: %w", err)
	}
	defer rows.Close()

	listings := []domain.ListingWithOwner{}
	for rows.Next() {
		var l domain.ListingWithOwner
		if err := rows.Scan(
			&l.ID,
			&l.OwnerID,
			&l.Title,
			&l.Description,
			&l.Price,
			&l.Currency,
			&l.ImageURL,
			&l.Status,
			&l.CreatedAt,
			&l.UpdatedAt,
			&l.OwnerName,
			&l.OwnerAvatarURL,
		); err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate listings: %w", err)
	}

	return listings, nil
}

// ListOwnedBy returns all of an owner's listings, newest first.
func (r *ListingRepository) ListOwnedBy(ctx context.Context, ownerID string) ([]domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE owner_id = $1 ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list owned listings: %w", err)
	}
	defer rows.Close()

	listings := []domain.Listing{}
	for rows.Next() {
		var l domain.Listing
		if err := rows.Scan(
			&l.ID,
			&l.OwnerID,
			&l.Title,
			&l.Description,
			&l.Price,
			&l.Currency,
			&l.ImageURL,
			&l.Status,
			&l.CreatedAt,
			&l.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate listings: %w", err)
	}

	return listings, nil
}

// Update persists listing changes scoped to the owner.
func (r *ListingRepository) Update(ctx context.Context, l *domain.Listing) error {
	l.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE listings
		SET title = $1, description = $2, price = $3, image_url = $4, status = $5, updated_at = $6
		WHERE id = $7 AND owner_id = $8`

	ct, err := r.db.Exec(ctx, query,
		l.Title,
		l.Description,
		l.Price,
		l.ImageURL,
		l.Status,
		l.UpdatedAt,
		l.ID,
		l.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("update listing: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("listing", l.ID)
	}

	return nil
}
