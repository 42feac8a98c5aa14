package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/dougajmcdonald/mates-rates/internal/domain"
	"github.com/dougajmcdonald/mates-rates/pkg/database"
)

// SocialGraphRepository implements repository.SocialGraphRepository using
// PostgreSQL. Connections are stored symmetrically: one row per direction,
// written in the same transaction.
type SocialGraphRepository struct {
	db database.DBTX
}

// NewSocialGraphRepository creates a new PostgreSQL-backed social graph repository.
func NewSocialGraphRepository(db database.DBTX) *SocialGraphRepository {
	return &SocialGraphRepository{db: db}
}

// CreateMateship connects two users in both directions. ON CONFLICT DO
// NOTHING makes redeeming the same invite twice a no-op rather than an error.
func (r *SocialGraphRepository) CreateMateship(ctx context.Context, userID, mateID string) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin mateship tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		INSERT INTO user_mates (user_id, mate_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, mate_id) DO NOTHING`

	now := time.Now().UTC()

	ct, err := tx.Exec(ctx, query, userID, mateID, now)
	if err != nil {
		return false, fmt.Errorf("insert mateship: %w", err)
	}
	created := ct.RowsAffected() > 0

	if _, err := tx.Exec(ctx, query, mateID, userID, now); err != nil {
		return false, fmt.Errorf("insert reverse mateship: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit mateship tx: %w", err)
	}

	return created, nil
}

// AreMates reports whether a connection exists. Rows are symmetric, so one
// direction is enough.
func (r *SocialGraphRepository) AreMates(ctx context.Context, userID, otherID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM user_mates
			WHERE user_id = $1 AND mate_id = $2
		)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, userID, otherID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check mateship: %w", err)
	}

	return exists, nil
}

// ListMates returns the user's mates with their active listing counts,
// ordered by name for a stable mates view.
func (r *SocialGraphRepository) ListMates(ctx context.Context, userID string) ([]domain.MateSummary, error) {
	query := `
		SELECT u.id, u.email, u.name, u.avatar_url, u.created_at, u.updated_at,
		       count(l.id) FILTER (WHERE l.status = 'active') AS active_listings
		FROM user_mates um
		JOIN users u ON u.id = um.mate_id
		LEFT JOIN listings l ON l.owner_id = u.id
		WHERE um.user_id = $1
		GROUP BY u.id, u.email, u.name, u.avatar_url, u.created_at, u.updated_at
		ORDER BY u.name, u.id`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list mates: %w", err)
	}
	defer rows.Close()

	mates := []domain.MateSummary{}
	for rows.Next() {
		var m domain.MateSummary
		if err := rows.Scan(
			&m.ID,
			&m.Email,
			&m.Name,
			&m.AvatarURL,
			&m.CreatedAt,
			&m.UpdatedAt,
			&m.ActiveListings,
		); err != nil {
			return nil, fmt.Errorf("scan mate: %w", err)
		}
		mates = append(mates, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mates: %w", err)
	}

	return mates, nil
}
